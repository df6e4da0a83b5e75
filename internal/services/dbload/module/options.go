package module

import (
	"strings"

	"brickdump/internal/adapters/ingest/rebrickable"
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/validate"
	"brickdump/internal/services/dbload/domain"
	"brickdump/internal/services/dbload/repo"
)

// Options holds configuration options for the loader
type Options struct {
	Sink      string   `env:"BRICKDUMP_LOAD_SINK" validate:"required,oneof=pg ch"`
	Schema    string   `env:"BRICKDUMP_LOAD_SCHEMA" validate:"omitempty,max=63"`
	Replace   bool     `env:"BRICKDUMP_LOAD_REPLACE"`
	BatchSize int      `env:"BRICKDUMP_LOAD_BATCH_SIZE" validate:"min=1,max=1000000"`
	Tables    []string `env:"BRICKDUMP_LOAD_TABLES" validate:"required,min=1,dive,required"`
}

// DefaultTables lists every catalog file stem in download order
func DefaultTables() []string {
	srcs := rebrickable.Sources()
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = strings.TrimSuffix(s.Name, ".csv")
	}
	return out
}

// FromConfig reads the loader options from config with the BRICKDUMP_LOAD_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("BRICKDUMP_LOAD_")
	return Options{
		Sink:      c.MayEnum("SINK", domain.SinkPG, domain.SinkPG, domain.SinkCH),
		Schema:    c.MayString("SCHEMA", ""),
		Replace:   c.MayBool("REPLACE", false),
		BatchSize: c.MayInt("BATCH_SIZE", repo.DefaultBatchSize),
		Tables:    c.MayCSV("TABLES", DefaultTables()),
	}
}

// Validate checks the options
func (o Options) Validate() error { return validate.Struct(o) }
