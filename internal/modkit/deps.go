// Package modkit provides module wiring and core deps
package modkit

import (
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/logger"
	"brickdump/internal/platform/store"
	chx "brickdump/internal/platform/store/ch"
	"brickdump/internal/platform/store/pg"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  *pg.PG
	CH  *chx.CH
}

// FromStore copies the opened backends of s into a Deps value
func FromStore(log logger.Logger, cfg config.Conf, s *store.Store) Deps {
	d := Deps{Log: log, Cfg: cfg}
	if s != nil {
		d.PG = s.PG
		d.CH = s.CH
	}
	return d
}

// ZeroOK returns true when deps are safe to use with zero values in tests
// consumers should still nil check for optional stores
func (d Deps) ZeroOK() bool { return true }
