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

// Users is the pgx-backed UserDirectory.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

func (s *Users) FindUser(ctx context.Context, userID domain.UserID) (domain.Identity, error) {
	id := domain.Identity{UserID: userID}
	err := s.pool.QueryRow(ctx,
		`SELECT display_name, role, active FROM users WHERE id = $1`,
		userID,
	).Scan(&id.Name, &id.Role, &id.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Identity{}, core.Errf(core.CodeNotFound, "users", "user not found")
	}
	if err != nil {
		return domain.Identity{}, fmt.Errorf("find user: %w", err)
	}
	return id, nil
}
