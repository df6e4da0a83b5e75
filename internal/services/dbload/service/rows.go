package service

import (
	"encoding/csv"
	"errors"
	"io"
	"os"

	"brickdump/internal/core/csvsplit"
	perr "brickdump/internal/platform/errors"
)

// shapeFilter skips records whose width differs from the header and counts them
type shapeFilter struct {
	width   int
	skipped int64
}

func (f *shapeFilter) keep(rec []string) bool {
	if len(rec) == f.width {
		return true
	}
	f.skipped++
	return false
}

// csvSource streams one CSV file after its header
type csvSource struct {
	f      *os.File
	r      *csv.Reader
	header []string
	filter *shapeFilter
}

func openCSV(path string) (*csvSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perr.FromFS(err, "dbload: open %s", path)
	}
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	header, err := r.Read()
	if err != nil {
		_ = f.Close()
		if errors.Is(err, io.EOF) {
			return nil, perr.Decodef("dbload: %s has no header", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "dbload: header of %s", path)
	}
	return &csvSource{f: f, r: r, header: header, filter: &shapeFilter{width: len(header)}}, nil
}

func (s *csvSource) Next() ([]string, error) {
	for {
		rec, err := s.r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, io.EOF
			}
			return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "dbload: read %s", s.f.Name())
		}
		if s.filter.keep(rec) {
			return rec, nil
		}
	}
}

func (s *csvSource) Close() error { return s.f.Close() }

// partsSource streams split parts through the shared part reader
type partsSource struct {
	stream *csvsplit.PartStream
	header []string
	filter *shapeFilter
}

func openParts(dir string, layout csvsplit.Layout) (*partsSource, error) {
	stream, err := csvsplit.OpenParts(dir, layout, 0)
	if err != nil {
		return nil, err
	}
	header, err := stream.Header()
	if err != nil {
		_ = stream.Close()
		if errors.Is(err, io.EOF) {
			return nil, perr.Decodef("dbload: no readable part in %s", dir)
		}
		return nil, err
	}
	src := &partsSource{stream: stream, header: header, filter: &shapeFilter{width: len(header)}}
	stream.Filter = src.filter.keep
	return src, nil
}

func (s *partsSource) Next() ([]string, error) { return s.stream.Next() }

func (s *partsSource) Close() error { return s.stream.Close() }
