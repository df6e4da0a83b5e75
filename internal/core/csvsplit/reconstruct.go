package csvsplit

import (
	"bufio"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	perr "brickdump/internal/platform/errors"
)

// Reconstruct defaults
const (
	DefaultExpectedParts = 7
	DefaultMinFields     = 6
	sampleRows           = 5
)

// ReconstructOptions configures Reconstruct
type ReconstructOptions struct {
	PartsDir string
	Output   string
	// ExpectedParts is the number of parts to read; zero discovers them from PartsDir
	ExpectedParts int
	// MinFields drops rows with fewer fields; zero uses DefaultMinFields, negative keeps every row
	MinFields int
	Layout    Layout
	// OnPart is called as each part is finished, missing or empty
	OnPart func(PartStat)
}

// ReconstructResult reports what was written
type ReconstructResult struct {
	Output      string
	Header      []string
	Rows        int64
	Dropped     int64
	PartsRead   int
	Missing     []int
	Empty       []int
	OutputBytes int64
	// Sample holds the first few written rows for diagnostics
	Sample [][]string
}

// Reconstruct concatenates parts into one CSV with a single header.
// Missing and empty parts are reported, not fatal
func Reconstruct(opts ReconstructOptions) (ReconstructResult, error) {
	res := ReconstructResult{Output: opts.Output}
	if opts.PartsDir == "" || opts.Output == "" {
		return res, perr.InvalidArgf("csvsplit: parts dir and output are required")
	}
	minFields := opts.MinFields
	if minFields == 0 {
		minFields = DefaultMinFields
	}

	stream, err := OpenParts(opts.PartsDir, opts.Layout, opts.ExpectedParts)
	if err != nil {
		return res, err
	}
	defer func() { _ = stream.Close() }()
	stream.Filter = func(row []string) bool { return len(row) >= minFields }
	stream.OnPart = func(st PartStat) {
		res.Dropped += st.Dropped
		switch {
		case st.Missing:
			res.Missing = append(res.Missing, st.Index)
		case st.Empty:
			res.Empty = append(res.Empty, st.Index)
		default:
			res.PartsRead++
		}
		if opts.OnPart != nil {
			opts.OnPart(st)
		}
	}

	if dir := filepath.Dir(opts.Output); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return res, perr.FromFS(err, "csvsplit: create %s", dir)
		}
	}
	out, err := os.Create(opts.Output)
	if err != nil {
		return res, perr.FromFS(err, "csvsplit: create output %s", opts.Output)
	}
	buf := bufio.NewWriterSize(out, 256*1024)
	w := csv.NewWriter(buf)

	werr := copyParts(stream, w, buf, &res)
	w.Flush()
	if werr == nil {
		werr = w.Error()
	}
	if ferr := buf.Flush(); werr == nil && ferr != nil {
		werr = perr.Wrapf(ferr, perr.ErrorCodeIO, "csvsplit: flush %s", opts.Output)
	}
	if cerr := out.Close(); werr == nil && cerr != nil {
		werr = perr.FromFS(cerr, "csvsplit: close %s", opts.Output)
	}
	if werr != nil {
		return res, werr
	}

	if fi, err := os.Stat(opts.Output); err == nil {
		res.OutputBytes = fi.Size()
	}
	return res, nil
}

func copyParts(stream *PartStream, w *csv.Writer, dst io.Writer, res *ReconstructResult) error {
	header, err := stream.Header()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return err
	}
	res.Header = header
	if err := writeRecord(w, dst, header); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write header to %s", res.Output)
	}

	for {
		row, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := writeRecord(w, dst, row); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeIO, "csvsplit: write %s", res.Output)
		}
		res.Rows++
		if len(res.Sample) < sampleRows {
			res.Sample = append(res.Sample, row)
		}
	}
}
