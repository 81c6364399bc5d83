package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aurum-collective/atelier-backend/internal/models"
)

// PostgresUserStore reads and scrubs identity rows in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

// NewPostgresUserStore wraps an open connection pool.
func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, avatar_url, erased_at, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.ErasedAt, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user: %w", models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Scrub blanks the personal fields in place as one UPDATE, preserving the id
// so existing resource links stay valid.
func (s *PostgresUserStore) Scrub(ctx context.Context, id string, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET name = '', email = '', avatar_url = '', erased_at = $2 WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("user: %w", models.ErrNotFound)
	}
	return nil
}
