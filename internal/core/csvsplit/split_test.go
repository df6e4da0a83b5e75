package csvsplit

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	perr "brickdump/internal/platform/errors"
	kit "brickdump/internal/platform/testkit"
)

func TestLayout_NameAndIndex(t *testing.T) {
	t.Parallel()

	if got := DefaultLayout.Name(7); got != "inventory_parts_part_007.csv" {
		t.Fatalf("Name(7) = %q", got)
	}
	if got := (Layout{}).Name(12); got != "inventory_parts_part_012.csv" {
		t.Fatalf("zero Layout should use defaults, got %q", got)
	}
	if got := (Layout{Prefix: "p_", Width: 2, Ext: ".txt"}).Name(1234); got != "p_1234.txt" {
		t.Fatalf("wide index = %q", got)
	}

	cases := []struct {
		name string
		idx  int
		ok   bool
	}{
		{"inventory_parts_part_001.csv", 1, true},
		{"inventory_parts_part_120.csv", 120, true},
		{"inventory_parts_part_1.csv", 0, false},
		{"inventory_parts_part_0009.csv", 0, false},
		{"inventory_parts_part_+12.csv", 0, false},
		{"inventory_parts_part_1234.csv", 1234, true},
		{"inventory_parts_part_000.csv", 0, false},
		{"inventory_parts_part_abc.csv", 0, false},
		{"parts_info.txt", 0, false},
	}
	for _, c := range cases {
		idx, ok := DefaultLayout.Index(c.name)
		if idx != c.idx || ok != c.ok {
			t.Fatalf("Index(%q) = %d,%v want %d,%v", c.name, idx, ok, c.idx, c.ok)
		}
	}
}

func TestRowCost(t *testing.T) {
	t.Parallel()

	if got := RowCost([]string{"1", "3001", "é"}); got != int64(len("1,3001,é\n")) {
		t.Fatalf("RowCost = %d", got)
	}
	if got := RowCost(nil); got != 1 {
		t.Fatalf("RowCost(nil) = %d, want 1", got)
	}
}

// bigRows returns n rows of roughly width bytes each under header id,name,size
func bigRows(n, width int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i + 1), strings.Repeat("x", width), "42"}
	}
	return rows
}

func TestSplit_KilobyteRowsAtTenKilobytes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "inventory_parts.csv")
	kit.WriteCSV(t, src, []string{"id", "name", "size"}, bigRows(25, 1000))

	res, err := Split(src, filepath.Join(dir, "split"), 10*1024)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Parts < 2 || res.Parts > 3 {
		t.Fatalf("parts = %d, want 2..3", res.Parts)
	}
	if res.Rows != 25 || res.Columns != 3 {
		t.Fatalf("rows/columns = %d/%d", res.Rows, res.Columns)
	}

	var total int
	for i := 1; i <= res.Parts; i++ {
		recs := kit.ReadCSV(t, DefaultLayout.Path(filepath.Join(dir, "split"), i))
		if strings.Join(recs[0], ",") != "id,name,size" {
			t.Fatalf("part %d header = %v", i, recs[0])
		}
		total += len(recs) - 1
	}
	if total != 25 {
		t.Fatalf("data rows across parts = %d, want 25", total)
	}
}

func TestSplit_RotationAtRowGranularity(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	rows := kit.InventoryRows(500)
	kit.WriteCSV(t, src, kit.InventoryHeader, rows)

	const limit = 4096
	res, err := Split(src, dir, limit)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Parts < 2 {
		t.Fatalf("expected several parts, got %d", res.Parts)
	}

	for i, path := range res.PartPaths {
		recs := kit.ReadCSV(t, path)
		data := recs[1:]
		var before int64
		for _, r := range data[:len(data)-1] {
			before += RowCost(r)
		}
		if before >= limit {
			t.Fatalf("part %d crossed the limit before its last row (%d)", i+1, before)
		}
		last := before + RowCost(data[len(data)-1])
		if i < len(res.PartPaths)-1 && last < limit {
			t.Fatalf("part %d rotated early at %d bytes", i+1, last)
		}
	}
}

func TestSplit_HeaderOnlyAndEmptySources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	headerOnly := filepath.Join(dir, "h.csv")
	kit.WriteCSV(t, headerOnly, kit.InventoryHeader, nil)
	empty := filepath.Join(dir, "e.csv")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	for _, src := range []string{headerOnly, empty} {
		target := filepath.Join(dir, "out_"+filepath.Base(src))
		res, err := Split(src, target, 1024)
		if err != nil {
			t.Fatalf("Split(%s): %v", src, err)
		}
		if res.Parts != 0 || res.Rows != 0 {
			t.Fatalf("Split(%s) = %+v, want zero parts", src, res)
		}
		entries, err := os.ReadDir(target)
		if err != nil {
			t.Fatalf("target dir should exist: %v", err)
		}
		if len(entries) != 0 {
			t.Fatalf("expected no part files, got %d", len(entries))
		}
	}
}

func TestSplit_ExactBytes(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	// quoted fields make the written row longer than the estimate
	rows := make([][]string, 200)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i), `say "hi", twice`, "x"}
	}
	kit.WriteCSV(t, src, []string{"a", "b", "c"}, rows)

	const limit = 1000
	res, err := Split(src, filepath.Join(dir, "parts"), limit, WithExactBytes(true))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Rows != 200 {
		t.Fatalf("rows = %d", res.Rows)
	}
	headerBytes := int64(len("a,b,c\n"))
	for i, path := range res.PartPaths[:len(res.PartPaths)-1] {
		fi, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if fi.Size()-headerBytes < limit {
			t.Fatalf("part %d has %d data bytes, want >= %d", i+1, fi.Size()-headerBytes, limit)
		}
	}
}

func TestSplit_KeepsLoneEmptyFieldRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.csv")
	if err := os.WriteFile(src, []byte("h\n\"\"\nx\n\"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name  string
		limit int64
		opts  []SplitOption
		parts int
	}{
		{"one part", MB, nil, 1},
		{"part per row", 1, nil, 3},
		{"part per row exact", 1, []SplitOption{WithExactBytes(true)}, 3},
	}
	for _, c := range cases {
		partsDir := filepath.Join(dir, strings.ReplaceAll(c.name, " ", "_"))
		res, err := Split(src, partsDir, c.limit, c.opts...)
		if err != nil {
			t.Fatalf("%s: Split: %v", c.name, err)
		}
		if res.Rows != 3 || res.Parts != c.parts {
			t.Fatalf("%s: rows = %d parts = %d", c.name, res.Rows, res.Parts)
		}
		var readable int64
		for _, path := range res.PartPaths {
			recs := kit.ReadCSV(t, path)
			if len(recs) == 0 || recs[0][0] != "h" {
				t.Fatalf("%s: %s lost its header: %v", c.name, path, recs)
			}
			readable += int64(len(recs) - 1)
		}
		if readable != res.Rows {
			t.Fatalf("%s: readable rows = %d, want %d", c.name, readable, res.Rows)
		}

		out := filepath.Join(dir, c.name+".csv")
		rr, err := Reconstruct(ReconstructOptions{PartsDir: partsDir, Output: out, MinFields: -1})
		if err != nil {
			t.Fatalf("%s: Reconstruct: %v", c.name, err)
		}
		got := kit.ReadCSV(t, out)
		if rr.Rows != 3 || len(got) != 4 || got[1][0] != "" || got[2][0] != "x" || got[3][0] != "" {
			t.Fatalf("%s: rebuilt rows = %d records = %v", c.name, rr.Rows, got)
		}
	}
}

func TestSplit_CustomLayout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "sets.csv")
	kit.WriteCSV(t, src, []string{"set_num"}, [][]string{{"1"}, {"2"}})
	l := Layout{Prefix: "sets_", Width: 2, Ext: ".csv"}
	res, err := Split(src, dir, 1, WithLayout(l))
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if res.Parts != 2 {
		t.Fatalf("parts = %d", res.Parts)
	}
	if _, err := os.Stat(filepath.Join(dir, "sets_02.csv")); err != nil {
		t.Fatalf("custom part missing: %v", err)
	}
}

func TestSplit_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Split(filepath.Join(dir, "missing.csv"), dir, 10)
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing source code = %v", perr.CodeOf(err))
	}

	src := filepath.Join(dir, "ok.csv")
	kit.WriteCSV(t, src, []string{"a"}, [][]string{{"1"}})
	_, err = Split(src, dir, 0)
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("zero threshold code = %v", perr.CodeOf(err))
	}
}
