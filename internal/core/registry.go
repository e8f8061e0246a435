package core

import (
	"sync"

	"github.com/fitlive/classroom/internal/domain"
)

// Registry is the process-wide table of live rooms, keyed by class id.
// It holds no persistence: a restart means every class in it has ended.
// Only the lifecycle controller inserts and removes entries.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.ClassID]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.ClassID]*Room)}
}

func (r *Registry) Get(classID domain.ClassID) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[classID]
	return room, ok
}

// Insert stores room unless an entry already exists, in which case the
// existing one wins and is returned. Keeps "at most one room per class"
// safe against concurrent starts.
func (r *Registry) Insert(room *Room) (*Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rooms[room.ClassID]; ok {
		return existing, false
	}
	r.rooms[room.ClassID] = room
	return room, true
}

// Remove deletes the entry only if it still maps to room, so a teardown
// racing a fresh start cannot evict the newer room.
func (r *Registry) Remove(room *Room) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.rooms[room.ClassID]; ok && existing == room {
		delete(r.rooms, room.ClassID)
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
