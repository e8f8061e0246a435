package domain

type ClassID string

type ClassStatus string

const (
	ClassScheduled ClassStatus = "scheduled"
	ClassOngoing   ClassStatus = "ongoing"
	ClassCompleted ClassStatus = "completed"
	ClassCancelled ClassStatus = "cancelled"
)

// Class is the persisted class record slice this subsystem reads.
type Class struct {
	ID              ClassID
	TrainerID       UserID
	MaxParticipants int
	Status          ClassStatus
}

// Startable reports whether a live room may be opened for this class.
// Ongoing counts: a trainer reconnecting after a crash re-issues start.
func (c *Class) Startable() bool {
	return c.Status == ClassScheduled || c.Status == ClassOngoing
}
