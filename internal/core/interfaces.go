package core

import (
	"context"
	"time"

	"github.com/fitlive/classroom/internal/domain"
)

// Frame is a serialized wire message.
type Frame []byte

// ConnID identifies one live client connection.
type ConnID string

// SignalConnection abstracts the messaging transport of one connection.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// BookingGateway is the persistent attendance collaborator.
type BookingGateway interface {
	FindActiveBooking(ctx context.Context, classID domain.ClassID, userID domain.UserID) (*domain.Booking, error)
	MarkJoined(ctx context.Context, bookingID domain.BookingID, at time.Time) error
	MarkLeft(ctx context.Context, bookingID domain.BookingID, at time.Time) error
	MarkAllCompletedForClass(ctx context.Context, classID domain.ClassID, at time.Time) error
}

// ClassStore is the persistent class record collaborator.
type ClassStore interface {
	GetClass(ctx context.Context, classID domain.ClassID) (*domain.Class, error)
	SetStatus(ctx context.Context, classID domain.ClassID, status domain.ClassStatus) error
}

// UserDirectory resolves user ids to identities.
type UserDirectory interface {
	FindUser(ctx context.Context, userID domain.UserID) (domain.Identity, error)
}

// TokenVerifier authenticates a connection credential.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (domain.Identity, error)
}
