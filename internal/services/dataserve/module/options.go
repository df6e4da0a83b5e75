package module

import (
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/validate"
)

// Options holds configuration options for the data server
type Options struct {
	Addr           string   `env:"BRICKDUMP_SERVE_ADDR" validate:"required,hostname_port"`
	BaseDir        string   `env:"BRICKDUMP_SERVE_BASE_DIR" validate:"required"`
	AllowedOrigins []string `env:"BRICKDUMP_SERVE_ALLOWED_ORIGINS" validate:"dive,required"`
	Swagger        bool     `env:"BRICKDUMP_SERVE_SWAGGER"`
	Profiler       bool     `env:"BRICKDUMP_SERVE_PROFILER"`
}

// FromConfig reads the data server options from config with the BRICKDUMP_SERVE_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("BRICKDUMP_SERVE_")
	return Options{
		Addr:           c.MayString("ADDR", "127.0.0.1:4000"),
		BaseDir:        c.MayString("BASE_DIR", "Downloads"),
		AllowedOrigins: c.MayCSV("ALLOWED_ORIGINS", []string{"*"}),
		Swagger:        c.MayBool("SWAGGER", true),
		Profiler:       c.MayBool("PROFILER", false),
	}
}

// Validate checks the options
func (o Options) Validate() error { return validate.Struct(o) }
