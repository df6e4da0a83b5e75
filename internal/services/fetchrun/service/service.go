// Package service provides the fetch run implementation
package service

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"brickdump/internal/core/csvsplit"
	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	"brickdump/internal/services/fetchrun/domain"

	"github.com/google/uuid"
)

// Config holds configuration options for the fetch run
type Config struct {
	Sources    []domain.Source
	MaxPartMB  int // <=0 -> 20
	ExactBytes bool
	Layout     csvsplit.Layout
	// KeepOriginal leaves inventory_parts.csv next to its parts
	KeepOriginal bool
}

// Service implements the fetch run
type Service struct {
	Fetch domain.Fetcher
	Files domain.WriterFactory
	Cfg   Config

	// Now and NewID are seams for tests
	Now   func() time.Time
	NewID func() string
}

// New constructs the fetch run service
func New(f domain.Fetcher, files domain.WriterFactory, cfg Config) *Service {
	if f == nil {
		panic("fetchrun.Service requires a non nil Fetcher")
	}
	if files == nil {
		panic("fetchrun.Service requires a non nil WriterFactory")
	}
	if cfg.MaxPartMB <= 0 {
		cfg.MaxPartMB = 20
	}
	return &Service{
		Fetch: f,
		Files: files,
		Cfg:   cfg,
		Now:   time.Now,
		NewID: func() string { return uuid.NewString() },
	}
}

var _ domain.RunnerPort = (*Service)(nil)

// Run downloads every source into a new timestamped dir under baseDir, then splits the inventory table.
// The first failing source aborts the run; files already written stay on disk
func (s *Service) Run(ctx context.Context, baseDir string) (domain.Report, error) {
	if baseDir == "" {
		return domain.Report{}, perr.InvalidArgf("fetchrun: base dir is required")
	}
	started := s.Now()
	rep := domain.Report{
		RunID:     s.NewID(),
		OutDir:    filepath.Join(baseDir, domain.RunDirName(started)),
		StartedAt: started,
	}
	ctx = logger.WithRun(ctx, rep.RunID)
	log := logger.C(ctx).With().Str("component", "fetchrun").Logger()

	if err := os.MkdirAll(rep.OutDir, 0o755); err != nil {
		return rep, perr.FromFS(err, "fetchrun: create %s", rep.OutDir)
	}
	log.Info().Str("out_dir", rep.OutDir).Int("sources", len(s.Cfg.Sources)).Msg("fetchrun: start")

	w := s.Files(rep.OutDir)
	for _, src := range s.Cfg.Sources {
		t0 := time.Now()
		data, err := s.Fetch.Fetch(ctx, src.URL)
		if err != nil {
			log.Error().Err(err).Str("file", src.Name).Str("url", src.URL).Msg("fetchrun: fetch failed")
			return rep, perr.Wrapf(err, perr.CodeOf(err), "fetchrun: %s", src.Name)
		}
		path, err := w.Write(ctx, src.Name, data)
		if err != nil {
			return rep, perr.Wrapf(err, perr.CodeOf(err), "fetchrun: store %s", src.Name)
		}
		rep.Files = append(rep.Files, domain.FileResult{Name: src.Name, URL: src.URL, Path: path, Bytes: len(data)})
		log.Info().
			Str("file", src.Name).
			Int("bytes", len(data)).
			Dur("elapsed", time.Since(t0)).
			Msg("fetchrun: stored")
	}

	split, err := s.SplitInventory(ctx, rep.OutDir, rep.RunID)
	if err != nil {
		return rep, err
	}
	rep.Split = split

	log.Info().Str("out_dir", rep.OutDir).Msg("fetchrun: done")
	return rep, nil
}

// SplitInventory splits outDir/inventory_parts.csv into parts with a manifest.
// A missing file is not an error and returns nil
func (s *Service) SplitInventory(ctx context.Context, outDir, runID string) (*domain.SplitReport, error) {
	log := logger.C(ctx).With().Str("component", "fetchrun").Logger()
	src := filepath.Join(outDir, domain.SplitFile)
	if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("dir", outDir).Msg("fetchrun: inventory_parts.csv not found, skipping split")
		return nil, nil
	} else if err != nil {
		return nil, perr.FromFS(err, "fetchrun: stat %s", src)
	}

	partsDir := filepath.Join(outDir, domain.SplitDir)
	res, err := csvsplit.Split(src, partsDir, int64(s.Cfg.MaxPartMB)*csvsplit.MB,
		csvsplit.WithLayout(s.Cfg.Layout),
		csvsplit.WithExactBytes(s.Cfg.ExactBytes),
	)
	if err != nil {
		return nil, err
	}

	info := filepath.Join(partsDir, csvsplit.ManifestFile)
	if _, err := csvsplit.WriteManifest(csvsplit.ManifestInput{
		InfoPath:     info,
		OriginalPath: src,
		Parts:        res.Parts,
		TotalRows:    res.Rows,
		MaxPartMB:    s.Cfg.MaxPartMB,
		PartsDir:     partsDir,
		Layout:       s.Cfg.Layout,
		RunID:        runID,
	}); err != nil {
		return nil, err
	}

	rep := &domain.SplitReport{
		Source:   src,
		PartsDir: partsDir,
		Manifest: info,
		Parts:    res.Parts,
		Rows:     res.Rows,
		Columns:  res.Columns,
	}
	log.Info().Int("parts", res.Parts).Int64("rows", res.Rows).Str("parts_dir", partsDir).Msg("fetchrun: split done")

	if res.Parts > 0 && !s.Cfg.KeepOriginal {
		if err := os.Remove(src); err != nil {
			log.Warn().Err(err).Str("file", src).Msg("fetchrun: failed to remove original after split")
		} else {
			rep.OriginalRemoved = true
			log.Info().Str("file", domain.SplitFile).Msg("fetchrun: removed original file")
		}
	}
	return rep, nil
}
