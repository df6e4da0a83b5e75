// Package fsout persists named buffers under a run directory
package fsout

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	perr "brickdump/internal/platform/errors"
)

// Writer writes files under Dir, replacing each target atomically.
// Bytes go to a temp file in the same directory which is then renamed over the target
type Writer struct {
	Dir      string
	FileMode os.FileMode
	DirMode  os.FileMode
}

// New returns a Writer rooted at dir with 0644 files and 0755 dirs
func New(dir string) *Writer {
	return &Writer{Dir: dir, FileMode: 0o644, DirMode: 0o755}
}

// Write stores data as name under Dir and returns the full path
func (w *Writer) Write(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dest, err := w.Resolve(name)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, w.dirMode()); err != nil {
		return "", perr.FromFS(err, "fsout: create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".part-*")
	if err != nil {
		return "", perr.FromFS(err, "fsout: temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	fail := func(err error, what string) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", perr.FromFS(err, "fsout: %s %s", what, dest)
	}

	if _, err := tmp.Write(data); err != nil {
		return fail(err, "write")
	}
	if err := tmp.Chmod(w.fileMode()); err != nil {
		return fail(err, "chmod")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", perr.FromFS(err, "fsout: close %s", dest)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return "", perr.FromFS(err, "fsout: rename into %s", dest)
	}
	return dest, nil
}

// Resolve maps a relative name to a path under Dir, rejecting escapes
func (w *Writer) Resolve(name string) (string, error) {
	rel := filepath.Clean(name)
	if rel == "." || rel == "" || filepath.IsAbs(rel) ||
		rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) ||
		filepath.VolumeName(rel) != "" {
		return "", perr.InvalidArgf("fsout: invalid file name %q", name)
	}
	return filepath.Join(w.Dir, rel), nil
}

func (w *Writer) fileMode() os.FileMode {
	if w.FileMode == 0 {
		return 0o644
	}
	return w.FileMode
}

func (w *Writer) dirMode() os.FileMode {
	if w.DirMode == 0 {
		return 0o755
	}
	return w.DirMode
}
