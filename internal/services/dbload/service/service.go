// Package service provides the database loader implementation
package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"brickdump/internal/core/csvsplit"
	"brickdump/internal/core/normalize"
	perr "brickdump/internal/platform/errors"
	"brickdump/internal/platform/logger"
	"brickdump/internal/services/dbload/domain"
	fetchdom "brickdump/internal/services/fetchrun/domain"

	"github.com/google/uuid"
)

// Config holds configuration options for the loader
type Config struct {
	// Tables are CSV file stems in load order, e.g. "themes"
	Tables  []string
	Schema  string
	Replace bool
	Layout  csvsplit.Layout
}

// Service implements domain.LoaderPort
type Service struct {
	Sink domain.Sink
	Cfg  Config

	// Now and NewID are seams for tests
	Now   func() time.Time
	NewID func() uuid.UUID
}

var _ domain.LoaderPort = (*Service)(nil)

// New constructs the loader service
func New(sink domain.Sink, cfg Config) *Service {
	if sink == nil {
		panic("dbload.Service requires a non nil Sink")
	}
	if len(cfg.Tables) == 0 {
		panic("dbload.Service requires at least one table")
	}
	return &Service{Sink: sink, Cfg: cfg, Now: time.Now, NewID: uuid.New}
}

// source is an opened table input
type source struct {
	rows   domain.RowSource
	closer io.Closer
	header []string
	filter *shapeFilter
	from   string
	parts  func() int
}

// open finds the input of table in runDir: the CSV file, or the split parts for inventory_parts
func (s *Service) open(runDir, table string) (*source, error) {
	path := filepath.Join(runDir, table+".csv")
	c, err := openCSV(path)
	if err == nil {
		return &source{rows: c, closer: c, header: c.header, filter: c.filter, from: path, parts: func() int { return 0 }}, nil
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) || table+".csv" != fetchdom.SplitFile {
		return nil, err
	}
	dir := filepath.Join(runDir, fetchdom.SplitDir)
	p, err := openParts(dir, s.Cfg.Layout)
	if err != nil {
		return nil, err
	}
	parts := func() int {
		n := 0
		for _, st := range p.stream.Stats() {
			if !st.Missing && !st.Empty {
				n++
			}
		}
		return n
	}
	return &source{rows: p, closer: p, header: p.header, filter: p.filter, from: dir, parts: parts}, nil
}

// Load streams every configured table of runDir into the sink.
// Tables without input are skipped; the first sink failure aborts the load
func (s *Service) Load(ctx context.Context, runDir string) (domain.Report, error) {
	if strings.TrimSpace(runDir) == "" {
		return domain.Report{}, perr.InvalidArgf("dbload: run dir is required")
	}
	if fi, err := os.Stat(runDir); err != nil {
		return domain.Report{}, perr.FromFS(err, "dbload: run dir %s", runDir)
	} else if !fi.IsDir() {
		return domain.Report{}, perr.InvalidArgf("dbload: %s is not a directory", runDir)
	}

	rep := domain.Report{RunID: s.NewID(), RunDir: runDir, Sink: s.Sink.Kind()}
	ctx = logger.WithRun(ctx, rep.RunID.String())
	log := logger.C(ctx).With().Str("component", "dbload").Str("sink", rep.Sink).Logger()

	for _, table := range s.Cfg.Tables {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		src, err := s.open(runDir, table)
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			log.Info().Str("table", table).Msg("no input, skipping")
			continue
		}
		if err != nil {
			return rep, err
		}

		res, err := s.loadOne(ctx, table, src)
		if cerr := src.closer.Close(); cerr != nil && err == nil {
			err = perr.FromFS(cerr, "dbload: close %s", src.from)
		}
		if err != nil {
			return rep, err
		}

		err = s.Sink.RecordLoad(ctx, domain.LedgerEntry{
			RunID:    rep.RunID,
			RunDir:   runDir,
			Table:    res.Table,
			Rows:     res.Rows,
			Skipped:  res.Skipped,
			LoadedAt: s.Now().UTC(),
		})
		if err != nil {
			return rep, err
		}

		evt := log.Info()
		if res.Skipped > 0 {
			evt = log.Warn()
		}
		evt.Str("table", res.Table).
			Str("source", res.Source).
			Int("parts", res.Parts).
			Int64("rows", res.Rows).
			Int64("skipped", res.Skipped).
			Msg("table loaded")
		rep.Tables = append(rep.Tables, res)
	}

	if len(rep.Tables) == 0 {
		return rep, perr.NotFoundf("dbload: no catalog CSV files in %s", runDir)
	}
	return rep, nil
}

func (s *Service) loadOne(ctx context.Context, table string, src *source) (domain.TableResult, error) {
	spec := domain.TableSpec{
		Schema:  s.Cfg.Schema,
		Name:    normalize.Identifier(table),
		Columns: normalize.Columns(src.header),
		Replace: s.Cfg.Replace,
	}
	n, err := s.Sink.LoadTable(ctx, spec, src.rows)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return domain.TableResult{}, err
		}
		return domain.TableResult{}, perr.Wrapf(err, perr.CodeOf(err), "dbload: load %s", spec.Name)
	}
	return domain.TableResult{
		Table:   spec.Name,
		Source:  src.from,
		Parts:   src.parts(),
		Rows:    n,
		Skipped: src.filter.skipped,
	}, nil
}
