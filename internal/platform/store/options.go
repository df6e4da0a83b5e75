package store

import (
	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option configures Store during Open
type Option func(*Store) error

// WithLogger sets the logger handed to the postgres tracer
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log
		return nil
	}
}

// WithPoolConfig adjusts the pgx pool config before the pool is created,
// for example MinConns in integration tests
func WithPoolConfig(fn func(*pgxpool.Config)) Option {
	return func(s *Store) error {
		if fn == nil {
			return perr.InvalidArgf("store: nil pool config func")
		}
		s.poolMut = fn
		return nil
	}
}
