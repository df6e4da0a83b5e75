package repo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	perr "brickdump/internal/platform/errors"
	chx "brickdump/internal/platform/store/ch"
	"brickdump/internal/services/dbload/domain"
)

// DefaultBatchSize is the number of rows per clickhouse INSERT batch
const DefaultBatchSize = 50_000

// CHConn is the slice of the clickhouse client the sink uses
type CHConn interface {
	Exec(ctx context.Context, query string, args ...any) error
	PrepareBatch(ctx context.Context, query string) (chx.Batch, error)
}

// CH loads tables into MergeTree tables with batched inserts
type CH struct {
	conn      CHConn
	batchSize int
}

var _ domain.Sink = (*CH)(nil)

// NewCH returns a clickhouse sink; batchSize <= 0 uses DefaultBatchSize
func NewCH(conn CHConn, batchSize int) *CH {
	if conn == nil {
		panic("repo.NewCH requires a non nil connection")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CH{conn: conn, batchSize: batchSize}
}

// Kind satisfies domain.Sink
func (c *CH) Kind() string { return domain.SinkCH }

func chIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "\\`") + "`"
}

func chTable(spec domain.TableSpec) string {
	if spec.Schema == "" {
		return chIdent(spec.Name)
	}
	return chIdent(spec.Schema) + "." + chIdent(spec.Name)
}

// chCreateTable builds the DDL for spec with every column as String
func chCreateTable(spec domain.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = chIdent(col) + " String"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s) ENGINE = MergeTree ORDER BY tuple()",
		chTable(spec), strings.Join(cols, ", "))
}

func chInsert(spec domain.TableSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, col := range spec.Columns {
		cols[i] = chIdent(col)
	}
	return fmt.Sprintf("INSERT INTO %s (%s)", chTable(spec), strings.Join(cols, ", "))
}

// LoadTable creates the table (dropping it first on Replace) and inserts rows in batches.
// Batches already sent stay in the table when a later batch fails
func (c *CH) LoadTable(ctx context.Context, spec domain.TableSpec, rows domain.RowSource) (int64, error) {
	if len(spec.Columns) == 0 {
		return 0, perr.InvalidArgf("ch: table %s has no columns", spec.Name)
	}
	var stmts []string
	if spec.Schema != "" {
		stmts = append(stmts, "CREATE DATABASE IF NOT EXISTS "+chIdent(spec.Schema))
	}
	if spec.Replace {
		stmts = append(stmts, "DROP TABLE IF EXISTS "+chTable(spec))
	}
	stmts = append(stmts, chCreateTable(spec))
	for _, q := range stmts {
		if err := c.conn.Exec(ctx, q); err != nil {
			return 0, perr.Wrapf(err, perr.ErrorCodeDB, "ch: prepare %s", spec.Name)
		}
	}

	insert := chInsert(spec)
	var total int64
	for {
		n, done, err := c.sendBatch(ctx, insert, rows)
		total += n
		if err != nil {
			return total, err
		}
		if done {
			return total, nil
		}
	}
}

// sendBatch appends up to batchSize rows and sends them; done reports the source is drained
func (c *CH) sendBatch(ctx context.Context, insert string, rows domain.RowSource) (int64, bool, error) {
	batch, err := c.conn.PrepareBatch(ctx, insert)
	if err != nil {
		return 0, false, perr.Wrapf(err, perr.ErrorCodeDB, "ch: prepare batch")
	}
	var n int64
	done := false
	for n < int64(c.batchSize) {
		rec, err := rows.Next()
		if errors.Is(err, io.EOF) {
			done = true
			break
		}
		if err != nil {
			_ = batch.Abort()
			return 0, false, err
		}
		vals := make([]any, len(rec))
		for i, v := range rec {
			vals[i] = v
		}
		if err := batch.Append(vals...); err != nil {
			_ = batch.Abort()
			return 0, false, perr.Wrapf(err, perr.ErrorCodeDB, "ch: append row")
		}
		n++
	}
	if n == 0 {
		_ = batch.Abort()
		return 0, done, nil
	}
	if err := batch.Send(); err != nil {
		return 0, false, perr.Wrapf(err, perr.ErrorCodeDB, "ch: send batch")
	}
	return n, done, nil
}

// RecordLoad is a no-op; the load ledger lives in postgres
func (c *CH) RecordLoad(context.Context, domain.LedgerEntry) error { return nil }
