package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "brickdump/internal/platform/errors"
	kit "brickdump/internal/platform/testkit"
	"brickdump/internal/services/dbload/domain"

	"github.com/google/uuid"
)

var colorsSpec = domain.TableSpec{Schema: "lego", Name: "colors", Columns: []string{"id", "name", "rgb", "is_trans"}}

func TestPGCreateTable(t *testing.T) {
	got := pgCreateTable(colorsSpec)
	want := `CREATE TABLE IF NOT EXISTS "lego"."colors" ("id" text, "name" text, "rgb" text, "is_trans" text)`
	if got != want {
		t.Fatalf("ddl =\n%s\nwant\n%s", got, want)
	}
	noSchema := colorsSpec
	noSchema.Schema = ""
	kit.MustContain(t, pgCreateTable(noSchema), `EXISTS "colors" (`)
}

func TestPG_LoadTable_CopiesWithNulls(t *testing.T) {
	tx := &fakeTx{}
	sink := NewPG(&fakePG{tx: tx})
	spec := colorsSpec
	spec.Replace = true

	n, err := sink.LoadTable(context.Background(), spec, &sliceRows{recs: [][]string{
		{"0", "Black", "05131D", "f"},
		{"9999", "[No Color]", "", "f"},
	}})
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}
	if n != 2 || !tx.committed || tx.rolledBack {
		t.Fatalf("n=%d committed=%v rolledBack=%v", n, tx.committed, tx.rolledBack)
	}
	if len(tx.execs) != 3 {
		t.Fatalf("execs = %v", tx.execs)
	}
	kit.MustContain(t, tx.execs[0], `CREATE SCHEMA IF NOT EXISTS "lego"`)
	kit.MustContain(t, tx.execs[1], `DROP TABLE IF EXISTS "lego"."colors"`)
	if tx.copyTable.Sanitize() != `"lego"."colors"` || len(tx.copyCols) != 4 {
		t.Fatalf("copy target = %v %v", tx.copyTable, tx.copyCols)
	}
	if tx.copied[1][2] != nil || tx.copied[1][1] != "[No Color]" {
		t.Fatalf("blank field should be NULL: %#v", tx.copied[1])
	}
}

func TestPG_LoadTable_Failures(t *testing.T) {
	ctx := context.Background()

	_, err := NewPG(&fakePG{beginErr: errors.New("conn refused")}).LoadTable(ctx, colorsSpec, &sliceRows{})
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("begin failure code = %v", perr.CodeOf(err))
	}

	tx := &fakeTx{execErr: errors.New("permission denied")}
	if _, err := NewPG(&fakePG{tx: tx}).LoadTable(ctx, colorsSpec, &sliceRows{}); err == nil || !tx.rolledBack {
		t.Fatalf("ddl failure should roll back: err=%v", err)
	}

	tx = &fakeTx{}
	readErr := perr.Decodef("bad quote")
	_, err = NewPG(&fakePG{tx: tx}).LoadTable(ctx, colorsSpec, &sliceRows{recs: [][]string{{"1", "Blue", "0055BF", "f"}}, err: readErr})
	if !perr.IsCode(err, perr.ErrorCodeDecode) || tx.committed {
		t.Fatalf("read failure = %v committed=%v", err, tx.committed)
	}

	if _, err := NewPG(&fakePG{tx: &fakeTx{}}).LoadTable(ctx, domain.TableSpec{Name: "x"}, &sliceRows{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("no columns = %v", err)
	}
}

func TestPG_RecordLoad_CreatesLedgerOnce(t *testing.T) {
	conn := &fakePG{}
	sink := NewPG(conn)
	e := domain.LedgerEntry{RunID: uuid.New(), RunDir: "Downloads/rebrickable_2025-08-24_10-11-12", Table: "themes", Rows: 10, LoadedAt: time.Now()}

	for i := 0; i < 2; i++ {
		if err := sink.RecordLoad(context.Background(), e); err != nil {
			t.Fatalf("RecordLoad: %v", err)
		}
	}
	if len(conn.execs) != 3 {
		t.Fatalf("execs = %d, want create + 2 inserts", len(conn.execs))
	}
	kit.MustContain(t, conn.execs[0], "CREATE TABLE IF NOT EXISTS brickdump_loads")
	if conn.args[1][0] != e.RunID || conn.args[1][2] != "themes" {
		t.Fatalf("insert args = %v", conn.args[1])
	}
}

func TestPG_RecordLoad_NoRowAffected(t *testing.T) {
	sink := NewPG(&fakePG{insertTag: "INSERT 0 0"})
	e := domain.LedgerEntry{RunID: uuid.New(), RunDir: "Downloads/rebrickable_2025-08-24_10-11-12", Table: "sets", LoadedAt: time.Now()}
	err := sink.RecordLoad(context.Background(), e)
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("code = %v, err = %v", perr.CodeOf(err), err)
	}
	kit.MustContain(t, err.Error(), "sets")
}

func TestNewPG_NilPanics(t *testing.T) {
	kit.MustPanic(t, func() { _ = NewPG(nil) })
}
