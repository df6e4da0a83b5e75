package module

import (
	"time"

	"brickdump/internal/platform/config"
	"brickdump/internal/platform/validate"
)

// Options holds configuration options for the fetch run
type Options struct {
	BaseDir      string        `env:"BRICKDUMP_FETCH_BASE_DIR" validate:"required"`
	Timeout      time.Duration `env:"BRICKDUMP_FETCH_TIMEOUT" validate:"gt=0"`
	Mirror       string        `env:"BRICKDUMP_FETCH_MIRROR" validate:"omitempty,url"`
	MaxPartMB    int           `env:"BRICKDUMP_SPLIT_MAX_PART_MB" validate:"min=1,max=4096"`
	ExactBytes   bool          `env:"BRICKDUMP_SPLIT_EXACT_BYTES"`
	KeepOriginal bool          `env:"BRICKDUMP_SPLIT_KEEP_ORIGINAL"`
}

// FromConfig reads the fetch options from config with BRICKDUMP_FETCH_ and BRICKDUMP_SPLIT_ prefixes
func FromConfig(cfg config.Conf) Options {
	fetch := cfg.Prefix("BRICKDUMP_FETCH_")
	split := cfg.Prefix("BRICKDUMP_SPLIT_")
	return Options{
		BaseDir:      fetch.MayString("BASE_DIR", "Downloads"),
		Timeout:      fetch.MayDuration("TIMEOUT", 60*time.Second),
		Mirror:       fetch.MayString("MIRROR", ""),
		MaxPartMB:    split.MayInt("MAX_PART_MB", 20),
		ExactBytes:   split.MayBool("EXACT_BYTES", false),
		KeepOriginal: split.MayBool("KEEP_ORIGINAL", false),
	}
}

// Validate checks the options
func (o Options) Validate() error { return validate.Struct(o) }
