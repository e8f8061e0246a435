package domain

type BookingID string

type BookingStatus string

const (
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
)

// Booking is a paid reservation for one user in one class.
type Booking struct {
	ID      BookingID
	ClassID ClassID
	UserID  UserID
	Status  BookingStatus
}
