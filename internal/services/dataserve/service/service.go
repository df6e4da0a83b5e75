// Package service implements the run catalog over a base directory
package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"brickdump/internal/core/csvsplit"
	perr "brickdump/internal/platform/errors"
	"brickdump/internal/services/dataserve/domain"
	fetchdom "brickdump/internal/services/fetchrun/domain"
)

// Config holds configuration for the catalog
type Config struct {
	BaseDir string
	Layout  csvsplit.Layout
}

// Service implements domain.CatalogPort
type Service struct {
	Cfg Config
}

var _ domain.CatalogPort = (*Service)(nil)

// New constructs a catalog rooted at cfg.BaseDir
func New(cfg Config) *Service {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		panic("dataserve: base dir is required")
	}
	return &Service{Cfg: cfg}
}

// Runs lists run directories newest first; a missing base dir is an empty catalog
func (s *Service) Runs(ctx context.Context) ([]domain.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.Cfg.BaseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.Run{}, nil
		}
		return nil, perr.FromFS(err, "dataserve: list %s", s.Cfg.BaseDir)
	}
	runs := make([]domain.Run, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		at, ok := fetchdom.ParseRunDirName(e.Name())
		if !ok {
			continue
		}
		runs = append(runs, domain.Run{
			Name:        e.Name(),
			CreatedAt:   at,
			HasManifest: exists(filepath.Join(s.Cfg.BaseDir, e.Name(), fetchdom.SplitDir, csvsplit.ManifestFile)),
		})
	}
	// names sort by time since the stamp is fixed width
	slices.SortFunc(runs, func(a, b domain.Run) int { return strings.Compare(b.Name, a.Name) })
	return runs, nil
}

// resolve maps a run name or Latest to its directory
func (s *Service) resolve(ctx context.Context, name string) (domain.Run, string, error) {
	if name == domain.Latest {
		runs, err := s.Runs(ctx)
		if err != nil {
			return domain.Run{}, "", err
		}
		if len(runs) == 0 {
			return domain.Run{}, "", perr.WithField(perr.NotFoundf("no runs under %s", s.Cfg.BaseDir), "run")
		}
		return runs[0], filepath.Join(s.Cfg.BaseDir, runs[0].Name), nil
	}
	at, ok := fetchdom.ParseRunDirName(name)
	if !ok {
		return domain.Run{}, "", perr.WithField(perr.NotFoundf("unknown run %q", name), "run")
	}
	dir := filepath.Join(s.Cfg.BaseDir, name)
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return domain.Run{}, "", perr.WithField(perr.NotFoundf("unknown run %q", name), "run")
	}
	run := domain.Run{
		Name:        name,
		CreatedAt:   at,
		HasManifest: exists(filepath.Join(dir, fetchdom.SplitDir, csvsplit.ManifestFile)),
	}
	return run, dir, nil
}

// Run lists the CSV files and split parts of a run
func (s *Service) Run(ctx context.Context, name string) (domain.RunDetail, error) {
	run, dir, err := s.resolve(ctx, name)
	if err != nil {
		return domain.RunDetail{}, err
	}
	out := domain.RunDetail{Run: run, Files: []domain.File{}, Parts: []domain.Part{}}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return domain.RunDetail{}, perr.FromFS(err, "dataserve: list %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out.Files = append(out.Files, domain.File{Name: e.Name(), Bytes: fi.Size()})
	}

	partsDir := filepath.Join(dir, fetchdom.SplitDir)
	entries, err = os.ReadDir(partsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return domain.RunDetail{}, perr.FromFS(err, "dataserve: list %s", partsDir)
	}
	for _, e := range entries {
		i, ok := s.Cfg.Layout.Index(e.Name())
		if e.IsDir() || !ok {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		out.Parts = append(out.Parts, domain.Part{Index: i, Name: e.Name(), Bytes: fi.Size()})
	}
	slices.SortFunc(out.Parts, func(a, b domain.Part) int { return a.Index - b.Index })
	return out, nil
}

// Manifest returns parts_info.txt of a run
func (s *Service) Manifest(ctx context.Context, name string) ([]byte, error) {
	_, dir, err := s.resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(filepath.Join(dir, fetchdom.SplitDir, csvsplit.ManifestFile))
	if err != nil {
		return nil, perr.FromFS(err, "dataserve: manifest of %s", name)
	}
	return b, nil
}

// Files returns the run directory as an fs.FS, which rejects paths escaping it
func (s *Service) Files(ctx context.Context, name string) (fs.FS, error) {
	_, dir, err := s.resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	return os.DirFS(dir), nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
