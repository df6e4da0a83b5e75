// Package repo holds the database sinks of the loader
package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	perr "brickdump/internal/platform/errors"
	pstrings "brickdump/internal/platform/strings"
	"brickdump/internal/services/dbload/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PGConn is the slice of pgxpool.Pool the postgres sink uses
type PGConn interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PG loads tables with COPY and keeps a ledger of loads
type PG struct {
	conn PGConn

	ledgerOnce sync.Once
	ledgerErr  error
}

var _ domain.Sink = (*PG)(nil)

// NewPG returns a postgres sink over conn
func NewPG(conn PGConn) *PG {
	if conn == nil {
		panic("repo.NewPG requires a non nil connection")
	}
	return &PG{conn: conn}
}

// Kind satisfies domain.Sink
func (p *PG) Kind() string { return domain.SinkPG }

func pgTable(spec domain.TableSpec) pgx.Identifier {
	if spec.Schema == "" {
		return pgx.Identifier{spec.Name}
	}
	return pgx.Identifier{spec.Schema, spec.Name}
}

// pgCreateTable builds the DDL for spec with every column as text
func pgCreateTable(spec domain.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = pgx.Identifier{c}.Sanitize() + " text"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", pgTable(spec).Sanitize(), strings.Join(cols, ", "))
}

const pgCreateLedger = `CREATE TABLE IF NOT EXISTS ` + domain.LedgerTable + ` (
	run_id     uuid        NOT NULL,
	run_dir    text        NOT NULL,
	table_name text        NOT NULL,
	rows       bigint      NOT NULL,
	skipped    bigint      NOT NULL,
	loaded_at  timestamptz NOT NULL,
	PRIMARY KEY (run_id, table_name)
)`

const pgInsertLedger = `INSERT INTO ` + domain.LedgerTable + ` (run_id, run_dir, table_name, rows, skipped, loaded_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (run_id, table_name) DO UPDATE
SET rows = EXCLUDED.rows, skipped = EXCLUDED.skipped, loaded_at = EXCLUDED.loaded_at`

// pgRow maps a CSV record to COPY values, blank fields become NULL
func pgRow(rec []string) []any {
	vals := make([]any, len(rec))
	for i, v := range rec {
		vals[i] = pstrings.SQLNull(v)
	}
	return vals
}

// LoadTable creates the table (dropping it first on Replace) and copies rows in one transaction
func (p *PG) LoadTable(ctx context.Context, spec domain.TableSpec, rows domain.RowSource) (int64, error) {
	if len(spec.Columns) == 0 {
		return 0, perr.InvalidArgf("pg: table %s has no columns", spec.Name)
	}
	tx, err := p.conn.Begin(ctx)
	if err != nil {
		return 0, perr.FromPostgresf(err, "pg: begin")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var stmts []string
	if spec.Schema != "" {
		stmts = append(stmts, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{spec.Schema}.Sanitize())
	}
	if spec.Replace {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+pgTable(spec).Sanitize())
	}
	stmts = append(stmts, pgCreateTable(spec))
	for _, q := range stmts {
		if _, err := tx.Exec(ctx, q); err != nil {
			return 0, perr.FromPostgresf(err, "pg: prepare %s", spec.Name)
		}
	}

	var readErr error
	src := pgx.CopyFromFunc(func() ([]any, error) {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			readErr = err
			return nil, err
		}
		return pgRow(rec), nil
	})
	n, err := tx.CopyFrom(ctx, pgTable(spec), spec.Columns, src)
	if readErr != nil {
		return 0, readErr
	}
	if err != nil {
		return 0, perr.FromPostgresf(err, "pg: copy into %s", spec.Name)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, perr.FromPostgresf(err, "pg: commit %s", spec.Name)
	}
	return n, nil
}

// RecordLoad inserts a ledger row, creating the ledger table on first use
func (p *PG) RecordLoad(ctx context.Context, e domain.LedgerEntry) error {
	p.ledgerOnce.Do(func() {
		if _, err := p.conn.Exec(ctx, pgCreateLedger); err != nil {
			p.ledgerErr = perr.FromPostgresf(err, "pg: create %s", domain.LedgerTable)
		}
	})
	if p.ledgerErr != nil {
		return p.ledgerErr
	}
	tag, err := p.conn.Exec(ctx, pgInsertLedger, e.RunID, e.RunDir, e.Table, e.Rows, e.Skipped, e.LoadedAt)
	if err != nil {
		return perr.FromPostgresf(err, "pg: record load of %s", e.Table)
	}
	if tag.RowsAffected() != 1 {
		return perr.DBf("pg: record load of %s affected %d rows", e.Table, tag.RowsAffected())
	}
	return nil
}
