package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLStore keeps the token in a Postgres table:
//
//	CREATE TABLE client_credentials (
//	    slot       TEXT PRIMARY KEY,
//	    token      TEXT NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type SQLStore struct {
	db   *sqlx.DB
	slot string
}

// NewSQLStore builds a store bound to slot.
func NewSQLStore(db *sqlx.DB, slot string) *SQLStore {
	if slot == "" {
		slot = "token"
	}
	return &SQLStore{db: db, slot: slot}
}

func (s *SQLStore) Token(ctx context.Context) (string, error) {
	var token string
	err := s.db.GetContext(ctx, &token, `SELECT token FROM client_credentials WHERE slot = $1`, s.slot)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoCredential
	}
	if err != nil {
		return "", fmt.Errorf("load credential: %w", err)
	}
	return token, nil
}

func (s *SQLStore) SetToken(ctx context.Context, token string) error {
	const query = `INSERT INTO client_credentials (slot, token, updated_at) VALUES ($1, $2, $3)
        ON CONFLICT (slot) DO UPDATE SET token = EXCLUDED.token, updated_at = EXCLUDED.updated_at`
	if _, err := s.db.ExecContext(ctx, query, s.slot, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (s *SQLStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM client_credentials WHERE slot = $1`, s.slot); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}
