package testkit

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestPanicHelpers(t *testing.T) {
	t.Parallel()

	if v := MustPanic(t, func() { panic("boom") }); v != "boom" {
		t.Fatalf("recovered = %v", v)
	}
	MustPanicWith(t, func() { panic("dbload.Service requires a non nil Sink") }, "non nil Sink")
	MustNotPanic(t, func() {})
}

func TestContainHelpers(t *testing.T) {
	t.Parallel()

	MustContain(t, "Done. Output: Downloads/rebrickable_2025-08-24_10-11-12", "rebrickable_")
	MustContain(t, strings.Repeat("x", 1024)+"needle", "needle")
	MustNotContain(t, "parts=3", "parts=4")
}

func TestWriteReadCSV_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "inv.csv")
	WriteCSV(t, path, InventoryHeader, InventoryRows(3))
	recs := ReadCSV(t, path)
	if len(recs) != 4 {
		t.Fatalf("records = %d, want 4", len(recs))
	}
	if recs[0][0] != "inventory_id" || recs[3][0] != "3" {
		t.Fatalf("unexpected records: %v", recs)
	}
	MustContain(t, MustReadFile(t, path), "part_num")
}
