package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

// BookingStore is the pgx-backed BookingGateway.
type BookingStore struct {
	pool *pgxpool.Pool
}

func NewBookingStore(pool *pgxpool.Pool) *BookingStore {
	return &BookingStore{pool: pool}
}

func (s *BookingStore) FindActiveBooking(ctx context.Context, classID domain.ClassID, userID domain.UserID) (*domain.Booking, error) {
	b := domain.Booking{ClassID: classID, UserID: userID, Status: domain.BookingActive}
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM bookings WHERE class_id = $1 AND user_id = $2 AND status = 'active'`,
		classID, userID,
	).Scan(&b.ID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.Errf(core.CodeNotFound, "bookings", "no active booking")
	}
	if err != nil {
		return nil, fmt.Errorf("find active booking: %w", err)
	}
	return &b, nil
}

func (s *BookingStore) MarkJoined(ctx context.Context, bookingID domain.BookingID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE bookings SET joined_at = $2 WHERE id = $1`,
		bookingID, at,
	)
	if err != nil {
		return fmt.Errorf("mark joined: %w", err)
	}
	return nil
}

func (s *BookingStore) MarkLeft(ctx context.Context, bookingID domain.BookingID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE bookings SET left_at = $2 WHERE id = $1`,
		bookingID, at,
	)
	if err != nil {
		return fmt.Errorf("mark left: %w", err)
	}
	return nil
}

func (s *BookingStore) MarkAllCompletedForClass(ctx context.Context, classID domain.ClassID, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE bookings SET status = 'completed', left_at = $2 WHERE class_id = $1 AND status = 'active'`,
		classID, at,
	)
	if err != nil {
		return fmt.Errorf("complete bookings: %w", err)
	}
	return nil
}
