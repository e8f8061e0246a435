package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitlive/classroom/internal/core"
	"github.com/fitlive/classroom/internal/domain"
)

// ClassRecords is the pgx-backed ClassStore.
type ClassRecords struct {
	pool *pgxpool.Pool
}

func NewClassRecords(pool *pgxpool.Pool) *ClassRecords {
	return &ClassRecords{pool: pool}
}

func (s *ClassRecords) GetClass(ctx context.Context, classID domain.ClassID) (*domain.Class, error) {
	c := domain.Class{ID: classID}
	err := s.pool.QueryRow(ctx,
		`SELECT trainer_id, max_participants, status FROM classes WHERE id = $1`,
		classID,
	).Scan(&c.TrainerID, &c.MaxParticipants, &c.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.Errf(core.CodeNotFound, "classes", "class not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get class: %w", err)
	}
	return &c, nil
}

func (s *ClassRecords) SetStatus(ctx context.Context, classID domain.ClassID, status domain.ClassStatus) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE classes SET status = $2 WHERE id = $1`,
		classID, status,
	)
	if err != nil {
		return fmt.Errorf("set class status: %w", err)
	}
	return nil
}
