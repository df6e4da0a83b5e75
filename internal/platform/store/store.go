// Package store provides a unified handle on the optional database backends
package store

import (
	"context"
	"errors"

	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	chx "brickdump/internal/platform/store/ch"
	"brickdump/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the facade for optional backends
// zero value is safe but does nothing
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// PG is the postgres client, nil when disabled
	PG *pg.PG

	// CH is the clickhouse client, nil when disabled
	CH *chx.CH

	poolMut func(*pgxpool.Config)
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the requested backends
// backends not enabled in cfg remain nil on the Store
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	if cfg.PG.Enabled {
		p, err := openPG(ctx, cfg, s.Log, s.poolMut)
		if err != nil {
			return nil, err
		}
		s.PG = p
	}

	if cfg.CH.Enabled {
		c, err := openCH(ctx, cfg)
		if err != nil {
			s.closePG()
			return nil, err
		}
		s.CH = c
	}

	return s, nil
}

// Guard pings every configured backend
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return perr.Newf(perr.ErrorCodeUnavailable, "nil store")
	}
	var errs []error
	if s.PG != nil {
		if err := s.PG.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrapf(err, perr.ErrorCodeUnavailable, "pg"))
		}
	}
	if s.CH != nil {
		if err := s.CH.Ping(ctx); err != nil {
			errs = append(errs, perr.Wrapf(err, perr.ErrorCodeUnavailable, "ch"))
		}
	}
	return errors.Join(errs...)
}

// Close closes all initialized backends gracefully
// nil backends are ignored
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.CH != nil {
		if e := s.CH.Close(); e != nil {
			errs = append(errs, e)
		}
	}
	s.closePG()
	return errors.Join(errs...)
}

func (s *Store) closePG() {
	if s.PG != nil {
		s.PG.Close()
	}
}
