package csvsplit

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	perr "brickdump/internal/platform/errors"
	kit "brickdump/internal/platform/testkit"
)

func TestSplitReconstruct_RoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "inventory_parts.csv")
	rows := kit.InventoryRows(1000)
	// quoting and ragged rows must survive the trip
	rows[10] = []string{"11", "3001", "4", "1", "f", `url with "quotes", and comma`}
	rows[20] = []string{"21", "short"}
	kit.WriteCSV(t, src, kit.InventoryHeader, rows)

	partsDir := filepath.Join(dir, "split")
	res, err := Split(src, partsDir, 8*1024)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}

	out := filepath.Join(dir, "rebuilt.csv")
	rr, err := Reconstruct(ReconstructOptions{PartsDir: partsDir, Output: out, MinFields: -1})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if rr.PartsRead != res.Parts || rr.Rows != res.Rows || rr.Dropped != 0 {
		t.Fatalf("result = %+v, split = %+v", rr, res)
	}

	want := kit.ReadCSV(t, src)
	got := kit.ReadCSV(t, out)
	if len(got) != len(want) {
		t.Fatalf("records = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if !slices.Equal(got[i], want[i]) {
			t.Fatalf("record %d = %v, want %v", i, got[i], want[i])
		}
	}
	fi, _ := os.Stat(out)
	if rr.OutputBytes != fi.Size() {
		t.Fatalf("output bytes = %d, want %d", rr.OutputBytes, fi.Size())
	}
	if len(rr.Sample) != 5 || rr.Sample[0][0] != "1" {
		t.Fatalf("sample = %v", rr.Sample)
	}
}

func TestReconstruct_MissingMiddlePart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kit.WriteCSV(t, DefaultLayout.Path(dir, 1), kit.InventoryHeader, kit.InventoryRows(2))
	kit.WriteCSV(t, DefaultLayout.Path(dir, 3), kit.InventoryHeader, [][]string{
		{"30", "3002", "1", "1", "f", ""},
	})

	var seen []PartStat
	out := filepath.Join(dir, "out", "rebuilt.csv")
	rr, err := Reconstruct(ReconstructOptions{
		PartsDir:      dir,
		Output:        out,
		ExpectedParts: 3,
		OnPart:        func(st PartStat) { seen = append(seen, st) },
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !slices.Equal(rr.Missing, []int{2}) {
		t.Fatalf("missing = %v, want [2]", rr.Missing)
	}
	if rr.Rows != 3 || rr.PartsRead != 2 {
		t.Fatalf("rows/parts = %d/%d", rr.Rows, rr.PartsRead)
	}
	if len(seen) != 3 || !seen[1].Missing || seen[1].Index != 2 {
		t.Fatalf("part callbacks = %+v", seen)
	}
	got := kit.ReadCSV(t, out)
	if len(got) != 4 || got[3][0] != "30" {
		t.Fatalf("output = %v", got)
	}
}

func TestReconstruct_DropsShortRowsAndSkipsLaterHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kit.WriteCSV(t, DefaultLayout.Path(dir, 1), kit.InventoryHeader, [][]string{
		{"1", "3001", "4", "1", "f", "u"},
		{"2", "3001"},
	})
	if err := os.WriteFile(DefaultLayout.Path(dir, 2), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	kit.WriteCSV(t, DefaultLayout.Path(dir, 3), []string{"other", "header"}, [][]string{
		{"3", "3003", "5", "2", "t", "u"},
	})

	var mismatch bool
	out := filepath.Join(dir, "rebuilt.csv")
	rr, err := Reconstruct(ReconstructOptions{
		PartsDir: dir,
		Output:   out,
		OnPart: func(st PartStat) {
			if st.HeaderMismatch {
				mismatch = true
			}
		},
	})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if rr.Rows != 2 || rr.Dropped != 1 {
		t.Fatalf("rows/dropped = %d/%d", rr.Rows, rr.Dropped)
	}
	if !slices.Equal(rr.Empty, []int{2}) {
		t.Fatalf("empty = %v", rr.Empty)
	}
	if !mismatch {
		t.Fatalf("expected a header mismatch report for part 3")
	}
	got := kit.ReadCSV(t, out)
	if !slices.Equal(got[0], kit.InventoryHeader) || len(got) != 3 {
		t.Fatalf("output = %v", got)
	}
}

func TestReconstruct_AllMissingWritesEmptyOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "rebuilt.csv")
	rr, err := Reconstruct(ReconstructOptions{PartsDir: dir, Output: out, ExpectedParts: 7})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if len(rr.Missing) != 7 || rr.Rows != 0 || rr.OutputBytes != 0 {
		t.Fatalf("result = %+v", rr)
	}
}

func TestReconstruct_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Reconstruct(ReconstructOptions{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("empty options code = %v", perr.CodeOf(err))
	}
	dir := t.TempDir()
	_, err := Reconstruct(ReconstructOptions{PartsDir: dir, Output: filepath.Join(dir, "o.csv")})
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("discovery in empty dir code = %v", perr.CodeOf(err))
	}
}

func TestPartStream_DiscoverAndFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	kit.WriteCSV(t, DefaultLayout.Path(dir, 1), []string{"a", "b"}, [][]string{{"1", "2"}, {"bad"}})
	kit.WriteCSV(t, DefaultLayout.Path(dir, 4), []string{"a", "b"}, [][]string{{"3", "4"}})
	if err := os.WriteFile(filepath.Join(dir, ManifestFile), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	// over-padded names do not round-trip through Layout.Name and are ignored
	kit.WriteCSV(t, filepath.Join(dir, "inventory_parts_part_0009.csv"), []string{"a", "b"}, [][]string{{"9", "9"}})

	n, err := DiscoverParts(dir, DefaultLayout)
	if err != nil || n != 4 {
		t.Fatalf("DiscoverParts = %d, %v", n, err)
	}

	s, err := OpenParts(dir, Layout{}, 0)
	if err != nil {
		t.Fatalf("OpenParts: %v", err)
	}
	defer func() { _ = s.Close() }()
	h, err := s.Header()
	if err != nil || !slices.Equal(h, []string{"a", "b"}) {
		t.Fatalf("Header = %v, %v", h, err)
	}
	s.Filter = func(r []string) bool { return len(r) == len(h) }

	var got [][]string
	for {
		r, err := s.Next()
		if err != nil {
			break
		}
		got = append(got, r)
	}
	if len(got) != 2 || got[1][0] != "3" {
		t.Fatalf("rows = %v", got)
	}
	if !slices.Equal(s.Missing(), []int{2, 3}) {
		t.Fatalf("missing = %v", s.Missing())
	}
	stats := s.Stats()
	if stats[0].Dropped != 1 || stats[0].Rows != 1 {
		t.Fatalf("part 1 stats = %+v", stats[0])
	}
}
