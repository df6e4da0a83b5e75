//go:build integration_pg
// +build integration_pg

package pg

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"brickdump/internal/platform/testkit/containers"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

func TestOpen_CopyAndQuery_Integration(t *testing.T) {
	dsn := containers.StartPostgres(t)

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	var logs bytes.Buffer
	tr := NewTracer(zerolog.New(&logs), 0)

	p, err := Open(ctx, Config{URL: dsn, AppName: "brickdump-pg-integration"}, tr, func(pc *pgxpool.Config) {
		pc.MinConns = 1
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)

	if err := p.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	// Keep TEMP table on a single session
	conn := AcquireConn(t, p, ctx)
	if _, err := conn.Exec(ctx, `create temporary table colors (id text, name text, rgb text, is_trans text)`); err != nil {
		t.Fatalf("create temp table failed: %v", err)
	}

	rows := [][]any{
		{"-1", "[Unknown]", "0033B2", "f"},
		{"0", "Black", "05131D", "f"},
		{"1", "Blue", "0055BF", "f"},
	}
	n, err := conn.CopyFrom(ctx, pgx.Identifier{"colors"}, []string{"id", "name", "rgb", "is_trans"}, pgx.CopyFromRows(rows))
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if n != 3 {
		t.Fatalf("copied %d rows", n)
	}

	type color struct {
		ID   string
		Name string
	}
	qr, err := conn.Query(ctx, `select id, name from colors order by name`)
	if err != nil {
		t.Fatalf("query rows: %v", err)
	}
	got, err := pgx.CollectRows(qr, pgx.RowToStructByPos[color])
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(got) != 3 || got[0].Name != "Black" {
		t.Fatalf("unexpected rows: %#v", got)
	}

	var gotApp string
	if err := conn.QueryRow(ctx, `select current_setting('application_name')`).Scan(&gotApp); err != nil {
		t.Fatalf("check app name: %v", err)
	}
	if gotApp != "brickdump-pg-integration" {
		t.Fatalf("application_name mismatch: got %q", gotApp)
	}

	if !strings.Contains(logs.String(), `"message":"pg copy"`) {
		t.Fatalf("expected a traced COPY, logs:\n%s", logs.String())
	}
}
