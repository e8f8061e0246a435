package core

import (
	"sync"
	"time"

	"github.com/fitlive/classroom/internal/domain"
)

// Participant is one admitted non-host member of a room.
type Participant struct {
	UserID    domain.UserID
	Name      string
	BookingID domain.BookingID
	Conn      SignalConnection
}

// RoomInfo is a read-only room snapshot for APIs.
type RoomInfo struct {
	HostName         string    `json:"hostName"`
	ParticipantCount int       `json:"participantCount"`
	MaxParticipants  int       `json:"maxParticipants"`
	ParticipantNames []string  `json:"participantNames"`
	StartedAt        time.Time `json:"startedAt"`
}

// Room is the live, in-memory aggregate for one ongoing class. All
// mutation happens under its mutex; the lock-held step never touches
// the network beyond non-blocking TrySend.
type Room struct {
	ClassID   domain.ClassID
	Host      domain.Identity
	Capacity  int
	StartedAt time.Time

	mu           sync.Mutex
	closed       bool
	hostConnID   ConnID
	hostConn     SignalConnection
	participants map[ConnID]*Participant

	// At most one grace timer, keyed by the host connection it was
	// scheduled for.
	graceTimer  *time.Timer
	graceConnID ConnID
}

func NewRoom(classID domain.ClassID, host domain.Identity, hostConnID ConnID, hostConn SignalConnection, capacity int) *Room {
	return &Room{
		ClassID:      classID,
		Host:         host,
		Capacity:     capacity,
		StartedAt:    time.Now(),
		hostConnID:   hostConnID,
		hostConn:     hostConn,
		participants: make(map[ConnID]*Participant),
	}
}

func (r *Room) HostConnID() ConnID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostConnID
}

func (r *Room) ParticipantCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// Admit adds a participant, atomically enforcing the capacity invariant.
// A stale entry of the same user under another connection (reconnect) is
// dropped first and reported so the caller can announce it. The returned
// roster excludes the newcomer.
func (r *Room) Admit(id ConnID, p *Participant) (stale ConnID, peers []PeerInfo, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", nil, Errf(CodeNotFound, "join", "class has ended")
	}
	for cid, existing := range r.participants {
		if existing.UserID == p.UserID {
			delete(r.participants, cid)
			stale = cid
			break
		}
	}
	if len(r.participants) >= r.Capacity {
		return stale, nil, Errf(CodeResourceExhausted, "join", "class is full")
	}
	r.participants[id] = p
	return stale, r.peersLocked(id), nil
}

// RemoveParticipant is idempotent: removing an absent connection is a
// no-op and reports false.
func (r *Room) RemoveParticipant(id ConnID) (*Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.participants[id]
	if !ok {
		return nil, false
	}
	delete(r.participants, id)
	return p, true
}

// SwapHost rebinds the host to a new connection, cancelling any pending
// grace timer. Reports the replaced connection id and the current roster.
func (r *Room) SwapHost(id ConnID, conn SignalConnection) (old ConnID, peers []PeerInfo, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return "", nil, false
	}
	r.cancelGraceLocked()
	old = r.hostConnID
	r.hostConnID = id
	r.hostConn = conn
	return old, r.peersLocked(id), true
}

// HostLost marks the host connection as gone and arms the grace timer.
// Reports false when the disconnect is stale (another connection already
// took over) or the room is closed.
func (r *Room) HostLost(id ConnID, grace time.Duration, fire func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.hostConnID != id {
		return false
	}
	r.hostConn = nil
	r.cancelGraceLocked()
	r.graceConnID = id
	r.graceTimer = time.AfterFunc(grace, fire)
	return true
}

// CloseIfHostStillLost finishes a grace expiry. The world may have moved
// on since scheduling, so the room re-checks that the timer's host
// connection is still the absent one before tearing down.
func (r *Room) CloseIfHostStillLost(id ConnID) ([]SignalConnection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.hostConnID != id || r.graceConnID != id || r.hostConn != nil {
		return nil, false
	}
	return r.closeLocked(), true
}

// CloseByHost finishes an explicit end. Only the current host connection
// may trigger it.
func (r *Room) CloseByHost(id ConnID) ([]SignalConnection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, Errf(CodeNotFound, "end", "class has ended")
	}
	if r.hostConnID != id {
		return nil, Errf(CodeForbidden, "end", "only the trainer may end the class")
	}
	return r.closeLocked(), nil
}

func (r *Room) closeLocked() []SignalConnection {
	r.closed = true
	r.cancelGraceLocked()
	conns := make([]SignalConnection, 0, len(r.participants)+1)
	if r.hostConn != nil {
		conns = append(conns, r.hostConn)
	}
	for _, p := range r.participants {
		conns = append(conns, p.Conn)
	}
	r.participants = make(map[ConnID]*Participant)
	return conns
}

func (r *Room) cancelGraceLocked() {
	if r.graceTimer != nil {
		r.graceTimer.Stop()
		r.graceTimer = nil
		r.graceConnID = ""
	}
}

// Member resolves a connection id to its transport if it currently
// belongs to the room (host included).
func (r *Room) Member(id ConnID) (SignalConnection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, false
	}
	if id == r.hostConnID && r.hostConn != nil {
		return r.hostConn, true
	}
	if p, ok := r.participants[id]; ok {
		return p.Conn, true
	}
	return nil, false
}

// IsHostConn reports whether id is the current, attached host connection.
func (r *Room) IsHostConn(id ConnID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && r.hostConnID == id && r.hostConn != nil
}

// Peers returns the roster (host first when attached), excluding one
// connection, typically the asker.
func (r *Room) Peers(exclude ConnID) []PeerInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peersLocked(exclude)
}

func (r *Room) peersLocked(exclude ConnID) []PeerInfo {
	peers := make([]PeerInfo, 0, len(r.participants)+1)
	if r.hostConn != nil && r.hostConnID != exclude {
		peers = append(peers, PeerInfo{
			ConnectionID: r.hostConnID,
			UserID:       r.Host.UserID,
			Name:         r.Host.Name,
			IsTrainer:    true,
		})
	}
	for id, p := range r.participants {
		if id == exclude {
			continue
		}
		peers = append(peers, PeerInfo{ConnectionID: id, UserID: p.UserID, Name: p.Name})
	}
	return peers
}

// Conns snapshots all member transports except one, for broadcasts.
func (r *Room) Conns(exclude ConnID) []SignalConnection {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]SignalConnection, 0, len(r.participants)+1)
	if r.hostConn != nil && r.hostConnID != exclude {
		conns = append(conns, r.hostConn)
	}
	for id, p := range r.participants {
		if id == exclude {
			continue
		}
		conns = append(conns, p.Conn)
	}
	return conns
}

func (r *Room) Info() RoomInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.participants))
	for _, p := range r.participants {
		names = append(names, p.Name)
	}
	return RoomInfo{
		HostName:         r.Host.Name,
		ParticipantCount: len(r.participants),
		MaxParticipants:  r.Capacity,
		ParticipantNames: names,
		StartedAt:        r.StartedAt,
	}
}
