package csvsplit

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"

	perr "brickdump/internal/platform/errors"
)

// MB is the byte size of one megabyte in part thresholds and manifests
const MB = 1024 * 1024

// Result summarizes a split
type Result struct {
	Parts     int
	Rows      int64
	Columns   int
	PartPaths []string
}

// SplitOption configures Split
type SplitOption func(*splitCfg)

type splitCfg struct {
	layout Layout
	exact  bool
}

// WithLayout sets the part naming
func WithLayout(l Layout) SplitOption {
	return func(c *splitCfg) { c.layout = l }
}

// WithExactBytes counts the bytes the CSV writer emits for a row instead of the joined-row estimate
func WithExactBytes(on bool) SplitOption {
	return func(c *splitCfg) { c.exact = on }
}

// RowCost is the estimated byte cost of a row: fields joined by "," plus a newline
func RowCost(row []string) int64 {
	n := 1
	if len(row) > 0 {
		n += len(row) - 1
	}
	for _, f := range row {
		n += len(f)
	}
	return int64(n)
}

// Split copies the data rows of source into parts under targetDir.
// A part is closed once its byte counter reaches maxPartBytes; the next part opens on the next row,
// so a header-only or empty source produces no parts
func Split(source, targetDir string, maxPartBytes int64, opts ...SplitOption) (Result, error) {
	cfg := splitCfg{layout: DefaultLayout}
	for _, o := range opts {
		o(&cfg)
	}
	cfg.layout = cfg.layout.orDefault()
	if maxPartBytes <= 0 {
		return Result{}, perr.InvalidArgf("csvsplit: max part bytes must be positive, got %d", maxPartBytes)
	}

	in, err := os.Open(source)
	if err != nil {
		return Result{}, perr.FromFS(err, "csvsplit: open source %s", source)
	}
	defer func() { _ = in.Close() }()

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return Result{}, perr.FromFS(err, "csvsplit: create %s", targetDir)
	}

	r := newReader(in, true)
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, perr.Wrapf(err, perr.ErrorCodeDecode, "csvsplit: read header of %s", source)
	}
	header = append([]string(nil), header...)

	res := Result{Columns: len(header)}
	var cur *partWriter
	defer func() {
		if cur != nil {
			_ = cur.abort()
		}
	}()

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, perr.Wrapf(err, perr.ErrorCodeDecode, "csvsplit: read %s", source)
		}

		if cur == nil {
			res.Parts++
			path := cfg.layout.Path(targetDir, res.Parts)
			cur, err = createPart(path, header)
			if err != nil {
				return res, err
			}
			res.PartPaths = append(res.PartPaths, path)
		}

		n, err := cur.write(row, cfg.exact)
		if err != nil {
			return res, err
		}
		res.Rows++

		if n >= maxPartBytes {
			err := cur.close()
			cur = nil
			if err != nil {
				return res, err
			}
		}
	}

	if cur != nil {
		err := cur.close()
		cur = nil
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// newReader returns a csv reader that accepts ragged rows and stray quotes
func newReader(r io.Reader, reuse bool) *csv.Reader {
	cr := csv.NewReader(bufio.NewReaderSize(r, 256*1024))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = reuse
	return cr
}

// writeRecord writes row through w. A record of one empty field is written as "" because
// encoding/csv would emit a blank line, which readers skip
func writeRecord(w *csv.Writer, dst io.Writer, row []string) error {
	if len(row) != 1 || row[0] != "" {
		return w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	_, err := io.WriteString(dst, "\"\"\n")
	return err
}

// countingWriter tracks bytes passed through to w
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// partWriter owns one open part file
type partWriter struct {
	path  string
	f     *os.File
	buf   *bufio.Writer
	cnt   *countingWriter
	w     *csv.Writer
	bytes int64 // data row bytes counted toward rotation
}

func createPart(path string, header []string) (*partWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, perr.FromFS(err, "csvsplit: create part %s", path)
	}
	buf := bufio.NewWriterSize(f, 256*1024)
	cnt := &countingWriter{w: buf}
	p := &partWriter{path: path, f: f, buf: buf, cnt: cnt, w: csv.NewWriter(cnt)}
	if err := writeRecord(p.w, cnt, header); err != nil {
		_ = p.abort()
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write header to %s", path)
	}
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		_ = p.abort()
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write header to %s", path)
	}
	return p, nil
}

// write appends row and returns the part's running byte counter
func (p *partWriter) write(row []string, exact bool) (int64, error) {
	before := p.cnt.n
	if err := writeRecord(p.w, p.cnt, row); err != nil {
		return p.bytes, perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write %s", p.path)
	}
	if exact {
		p.w.Flush()
		if err := p.w.Error(); err != nil {
			return p.bytes, perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write %s", p.path)
		}
		p.bytes += p.cnt.n - before
		return p.bytes, nil
	}
	p.bytes += RowCost(row)
	return p.bytes, nil
}

func (p *partWriter) close() error {
	p.w.Flush()
	if err := p.w.Error(); err != nil {
		_ = p.f.Close()
		return perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: flush %s", p.path)
	}
	if err := p.buf.Flush(); err != nil {
		_ = p.f.Close()
		return perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: flush %s", p.path)
	}
	if err := p.f.Close(); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: close %s", p.path)
	}
	return nil
}

// abort flushes what it can and closes the file on an error path
func (p *partWriter) abort() error {
	p.w.Flush()
	_ = p.buf.Flush()
	return p.f.Close()
}
