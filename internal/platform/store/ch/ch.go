// Package ch provides a clickhouse client over the native protocol
package ch

import (
	"context"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// Config configures clickhouse client
type Config struct {
	URL         string
	Role        string
	Tag         string
	DialTimeout time.Duration
	MaxOpen     int
}

// Batch is the narrow slice of driver.Batch the sinks use
type Batch interface {
	Append(v ...any) error
	Send() error
	Abort() error
}

// CH wraps a native clickhouse connection
type CH struct {
	Conn driver.Conn
}

var openConn = clickhouse.Open

// Options parses the DSN and applies the config on top of it
func Options(cfg Config) (*clickhouse.Options, error) {
	opts, err := clickhouse.ParseDSN(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.MaxOpen > 0 {
		opts.MaxOpenConns = cfg.MaxOpen
	}
	opts.ClientInfo = BuildClientInfo(cfg.Role, cfg.Tag)
	return opts, nil
}

// Open dials clickhouse; connectivity is checked lazily, call Ping to verify
func Open(_ context.Context, cfg Config) (*CH, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := openConn(opts)
	if err != nil {
		return nil, err
	}
	return &CH{Conn: conn}, nil
}

// Ping checks connectivity
func (c *CH) Ping(ctx context.Context) error { return c.Conn.Ping(ctx) }

// Exec runs a statement without results
func (c *CH) Exec(ctx context.Context, query string, args ...any) error {
	return c.Conn.Exec(ctx, query, args...)
}

// PrepareBatch starts an INSERT batch for query
func (c *CH) PrepareBatch(ctx context.Context, query string) (Batch, error) {
	return c.Conn.PrepareBatch(ctx, query)
}

// Close closes resources
func (c *CH) Close() error {
	if c == nil || c.Conn == nil {
		return nil
	}
	return c.Conn.Close()
}
