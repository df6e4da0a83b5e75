package repo

import (
	"context"
	"errors"
	"io"
	"strings"

	chx "brickdump/internal/platform/store/ch"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// sliceRows is a RowSource over fixed records
type sliceRows struct {
	recs [][]string
	err  error // returned after recs are drained when set
}

func (s *sliceRows) Next() ([]string, error) {
	if len(s.recs) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	r := s.recs[0]
	s.recs = s.recs[1:]
	return r, nil
}

// fakeTx records statements and drains COPY sources; unused pgx.Tx methods panic via the nil embed
type fakeTx struct {
	pgx.Tx
	execs      []string
	copyTable  pgx.Identifier
	copyCols   []string
	copied     [][]any
	committed  bool
	rolledBack bool
	execErr    error
}

func (f *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakeTx) CopyFrom(_ context.Context, t pgx.Identifier, cols []string, src pgx.CopyFromSource) (int64, error) {
	f.copyTable, f.copyCols = t, cols
	for src.Next() {
		v, err := src.Values()
		if err != nil {
			return 0, err
		}
		f.copied = append(f.copied, v)
	}
	if err := src.Err(); err != nil {
		return 0, err
	}
	return int64(len(f.copied)), nil
}

func (f *fakeTx) Commit(context.Context) error { f.committed = true; return nil }

func (f *fakeTx) Rollback(context.Context) error {
	if !f.committed {
		f.rolledBack = true
	}
	return nil
}

type fakePG struct {
	tx       *fakeTx
	beginErr error
	execs    []string
	args     [][]any
	// insertTag overrides the command tag of INSERT statements
	insertTag string
}

func (f *fakePG) Begin(context.Context) (pgx.Tx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return f.tx, nil
}

func (f *fakePG) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	f.args = append(f.args, args)
	if strings.HasPrefix(sql, "INSERT") {
		if f.insertTag != "" {
			return pgconn.NewCommandTag(f.insertTag), nil
		}
		return pgconn.NewCommandTag("INSERT 0 1"), nil
	}
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

// fakeBatch collects appended rows
type fakeBatch struct {
	rows    [][]any
	sent    bool
	aborted bool
	sendErr error
}

func (b *fakeBatch) Append(v ...any) error { b.rows = append(b.rows, v); return nil }
func (b *fakeBatch) Send() error           { b.sent = true; return b.sendErr }
func (b *fakeBatch) Abort() error          { b.aborted = true; return nil }

type fakeCH struct {
	execs   []string
	inserts []string
	batches []*fakeBatch
	sendErr error
}

func (f *fakeCH) Exec(_ context.Context, q string, _ ...any) error {
	f.execs = append(f.execs, q)
	return nil
}

func (f *fakeCH) PrepareBatch(_ context.Context, q string) (chx.Batch, error) {
	if q == "" {
		return nil, errors.New("empty insert")
	}
	f.inserts = append(f.inserts, q)
	b := &fakeBatch{sendErr: f.sendErr}
	f.batches = append(f.batches, b)
	return b, nil
}
