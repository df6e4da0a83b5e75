package store

import (
	"context"
	"time"

	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	chx "brickdump/internal/platform/store/ch"
	"brickdump/internal/platform/store/pg"

	"github.com/jackc/pgx/v5/pgxpool"
)

// backoff bounds for connection guardrails
var (
	backoffStart   = 150 * time.Millisecond
	backoffCeiling = 2 * time.Second
	sleep          = func(ctx context.Context, d time.Duration) error {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	}
)

// pingWithRetry pings p until it answers, attempts run out, or ctx ends
func pingWithRetry(ctx context.Context, name string, p Pinger, attempts int, timeout time.Duration) error {
	if attempts <= 0 {
		attempts = 6
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, timeout)
		lastErr = p.Ping(toCtx)
		cancel()
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, backoff); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s ping cancelled", name)
		}
		backoff = min(backoff*2, backoffCeiling)
	}
	return perr.Wrapf(lastErr, perr.ErrorCodeUnavailable, "%s ping failed after %d attempts", name, attempts)
}

// openPG opens the pool, installs the tracer when asked, and waits for the server
func openPG(ctx context.Context, cfg Config, log logger.Logger, poolMut func(*pgxpool.Config)) (*pg.PG, error) {
	var tracer *pg.Tracer
	if cfg.PG.LogSQL {
		tracer = pg.NewTracer(log, time.Duration(cfg.PG.SlowQueryMs)*time.Millisecond)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
	}, tracer, poolMut)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "postgres config")
	}
	if err := pingWithRetry(ctx, "postgres", p, cfg.PG.ConnectRetries, cfg.PG.PingTimeout); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func openCH(ctx context.Context, cfg Config) (*chx.CH, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.Role, Tag: cfg.AppName})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "clickhouse config")
	}
	if err := pingWithRetry(ctx, "clickhouse", c, cfg.CH.ConnectRetries, cfg.CH.PingTimeout); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}
