package csvsplit

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"slices"

	perr "brickdump/internal/platform/errors"
)

// PartStat describes one part after it was read
type PartStat struct {
	Index   int
	Path    string
	Rows    int64
	Dropped int64
	Missing bool
	Empty   bool
	// HeaderMismatch is set when the part header differs from the first part's header
	HeaderMismatch bool
}

// PartStream reads the data rows of parts 1..N in order as one stream.
// The header comes from the first part that has one; later headers are skipped
type PartStream struct {
	dir     string
	layout  Layout
	indices []int
	pos     int

	header []string
	f      *os.File
	r      *csv.Reader
	cur    PartStat

	// OnPart is called when a part is finished, missing or empty
	OnPart func(PartStat)
	// Filter drops data rows it returns false for; they are counted in PartStat.Dropped
	Filter func(row []string) bool

	stats []PartStat
}

// OpenParts prepares a stream over dir. expected > 0 reads parts 1..expected;
// expected == 0 reads 1..highest index found in dir
func OpenParts(dir string, layout Layout, expected int) (*PartStream, error) {
	layout = layout.orDefault()
	if expected < 0 {
		return nil, perr.InvalidArgf("csvsplit: expected parts must not be negative, got %d", expected)
	}
	if expected == 0 {
		n, err := DiscoverParts(dir, layout)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, perr.NotFoundf("csvsplit: no parts named %s* in %s", layout.Prefix, dir)
		}
		expected = n
	}
	indices := make([]int, expected)
	for i := range indices {
		indices[i] = i + 1
	}
	return &PartStream{dir: dir, layout: layout, indices: indices}, nil
}

// DiscoverParts returns the highest part index present in dir
func DiscoverParts(dir string, layout Layout) (int, error) {
	layout = layout.orDefault()
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, perr.FromFS(err, "csvsplit: list %s", dir)
	}
	highest := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if i, ok := layout.Index(e.Name()); ok && i > highest {
			highest = i
		}
	}
	return highest, nil
}

// Header returns the header of the first readable part, opening parts as needed.
// It returns io.EOF when no part has a header
func (s *PartStream) Header() ([]string, error) {
	for s.header == nil {
		if err := s.advance(); err != nil {
			return nil, err
		}
	}
	return s.header, nil
}

// Next returns the next data row, or io.EOF after the last part
func (s *PartStream) Next() ([]string, error) {
	for {
		if s.r == nil {
			if err := s.advance(); err != nil {
				return nil, err
			}
			continue
		}
		row, err := s.r.Read()
		if errors.Is(err, io.EOF) {
			if cerr := s.finish(); cerr != nil {
				return nil, cerr
			}
			continue
		}
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "csvsplit: read %s", s.cur.Path)
		}
		if s.Filter != nil && !s.Filter(row) {
			s.cur.Dropped++
			continue
		}
		s.cur.Rows++
		return row, nil
	}
}

// Stats returns what happened to every part visited so far
func (s *PartStream) Stats() []PartStat { return slices.Clone(s.stats) }

// Missing lists the indices of parts that were not on disk
func (s *PartStream) Missing() []int {
	var out []int
	for _, st := range s.stats {
		if st.Missing {
			out = append(out, st.Index)
		}
	}
	return out
}

// Close releases the open part, if any
func (s *PartStream) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f, s.r = nil, nil
	return err
}

// advance opens the next existing part and consumes its header
func (s *PartStream) advance() error {
	for s.pos < len(s.indices) {
		idx := s.indices[s.pos]
		s.pos++
		path := s.layout.Path(s.dir, idx)
		st := PartStat{Index: idx, Path: path}

		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			st.Missing = true
			s.record(st)
			continue
		}
		if err != nil {
			return perr.FromFS(err, "csvsplit: open part %s", path)
		}

		r := newReader(f, false)
		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			_ = f.Close()
			st.Empty = true
			s.record(st)
			continue
		}
		if err != nil {
			_ = f.Close()
			return perr.Wrapf(err, perr.ErrorCodeDecode, "csvsplit: read header of %s", path)
		}
		if s.header == nil {
			s.header = header
		} else if !slices.Equal(s.header, header) {
			st.HeaderMismatch = true
		}
		s.f, s.r, s.cur = f, r, st
		return nil
	}
	return io.EOF
}

// finish closes the current part and records its stats
func (s *PartStream) finish() error {
	st := s.cur
	err := s.Close()
	s.record(st)
	if err != nil {
		return perr.FromFS(err, "csvsplit: close part %s", st.Path)
	}
	return nil
}

func (s *PartStream) record(st PartStat) {
	s.stats = append(s.stats, st)
	if s.OnPart != nil {
		s.OnPart(st)
	}
}
