// Package csvsplit splits a large CSV into header-prefixed part files and joins them back.
//
// Notes:
//   - The first record of a source is its header; every part starts with that header.
//   - Rotation happens between rows, never inside one.
//   - Part indices are 1-based and formatted with a fixed width (001, 002, ...).
package csvsplit

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Layout names part files as Prefix + zero padded index + Ext
type Layout struct {
	Prefix string
	Width  int
	Ext    string
}

// DefaultLayout is the inventory_parts naming used by the fetch run
var DefaultLayout = Layout{Prefix: "inventory_parts_part_", Width: 3, Ext: ".csv"}

// orDefault fills zero fields from DefaultLayout
func (l Layout) orDefault() Layout {
	if l.Prefix == "" {
		l.Prefix = DefaultLayout.Prefix
	}
	if l.Width <= 0 {
		l.Width = DefaultLayout.Width
	}
	if l.Ext == "" {
		l.Ext = DefaultLayout.Ext
	}
	return l
}

// Name returns the file name for part i
func (l Layout) Name(i int) string {
	l = l.orDefault()
	return fmt.Sprintf("%s%0*d%s", l.Prefix, l.Width, i, l.Ext)
}

// Path returns dir joined with Name(i)
func (l Layout) Path(dir string, i int) string { return filepath.Join(dir, l.Name(i)) }

// Index parses a part file name back to its index
func (l Layout) Index(name string) (int, bool) {
	l = l.orDefault()
	if !strings.HasPrefix(name, l.Prefix) || !strings.HasSuffix(name, l.Ext) {
		return 0, false
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(name, l.Prefix), l.Ext)
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || l.Name(n) != name {
		return 0, false
	}
	return n, true
}
