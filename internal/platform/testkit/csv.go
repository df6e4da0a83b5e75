package testkit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// WriteCSV writes header and rows to path, creating parent dirs
func WriteCSV(t *testing.T, path string, header []string, rows [][]string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	w := csv.NewWriter(f)
	if header != nil {
		if err := w.Write(header); err != nil {
			t.Fatalf("write header: %v", err)
		}
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write rows: %v", err)
	}
}

// ReadCSV reads every record in path, tolerating ragged rows
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer func() { _ = f.Close() }()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return recs
}

// InventoryRows returns n inventory_parts style rows with six fields each
func InventoryRows(n int) [][]string {
	rows := make([][]string, n)
	for i := range rows {
		id := strconv.Itoa(i + 1)
		rows[i] = []string{id, "3001", strconv.Itoa(i % 16), strconv.Itoa(i%9 + 1), "f", "https://cdn.rebrickable.com/media/parts/" + id + ".jpg"}
	}
	return rows
}

// InventoryHeader is the inventory_parts.csv header
var InventoryHeader = []string{"inventory_id", "part_num", "color_id", "quantity", "is_spare", "img_url"}

// MustReadFile returns the file contents as a string
func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}
