// Package store is the SQLite system of record for users, soil tests,
// crops, recommendations, listings, alerts and subsidies.
package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"farmeasy/apperr"
	"farmeasy/database"

	"github.com/rs/zerolog"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store runs queries against the pool, or against one transaction when
// obtained through WithTx.
type Store struct {
	db  *sql.DB
	q   DBTX
	log zerolog.Logger
}

func New(db *sql.DB, log zerolog.Logger) *Store {
	return &Store{db: db, q: db, log: log.With().Str("repo", "store").Logger()}
}

// WithTx runs fn with a Store bound to a single transaction. Everything fn
// writes is committed together or rolled back together.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	if _, nested := s.q.(*sql.Tx); nested {
		return fn(s)
	}
	err := database.WithTransaction(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&Store{db: s.db, q: tx, log: s.log})
	})
	if err != nil && !isTyped(err) {
		return apperr.Persistence("transaction", err)
	}
	return err
}

// Ping checks the underlying pool.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// mapErr converts driver errors to the application's error kinds.
func mapErr(op, entity string, key any, err error) error {
	switch {
	case err == nil:
		return nil
	case isTyped(err):
		return err
	case errors.Is(err, sql.ErrNoRows):
		return apperr.NotFound(entity, key)
	case isUniqueViolation(err):
		return apperr.Conflict(entity+" already exists", err)
	default:
		return apperr.Persistence(op, err)
	}
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isTyped(err error) bool {
	var (
		v *apperr.ValidationError
		n *apperr.NotFoundError
		c *apperr.ConflictError
		m *apperr.ModelUnavailableError
		p *apperr.PersistenceError
	)
	return errors.As(err, &v) || errors.As(err, &n) || errors.As(err, &c) || errors.As(err, &m) || errors.As(err, &p)
}
