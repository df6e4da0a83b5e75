// Package module wires the database loader from config and opened stores
package module

import (
	"brickdump/internal/core/csvsplit"
	"brickdump/internal/core/normalize"
	"brickdump/internal/modkit"
	perr "brickdump/internal/platform/errors"
	phttp "brickdump/internal/platform/net/http"
	"brickdump/internal/services/dbload/domain"
	"brickdump/internal/services/dbload/repo"
	"brickdump/internal/services/dbload/service"
)

// Ports defines the loader module ports
type Ports struct {
	Loader domain.LoaderPort
}

// Module implements the loader module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// sinkFor picks the sink named by opts from the opened stores
func sinkFor(deps modkit.Deps, opts Options) (domain.Sink, error) {
	switch opts.Sink {
	case domain.SinkPG:
		if deps.PG == nil || deps.PG.Pool == nil {
			return nil, perr.WithField(perr.InvalidArgf("dbload: sink pg needs SERVICE_PGSQL_DBURL"), "sink")
		}
		return repo.NewPG(deps.PG.Pool), nil
	case domain.SinkCH:
		if deps.CH == nil {
			return nil, perr.WithField(perr.InvalidArgf("dbload: sink ch needs SERVICE_CLICKHOUSE_DBURL"), "sink")
		}
		return repo.NewCH(deps.CH, opts.BatchSize), nil
	}
	return nil, perr.WithField(perr.InvalidArgf("dbload: unknown sink %q", opts.Sink), "sink")
}

// New constructs the loader module; the store backing opts.Sink must be open in deps
func New(deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	sink, err := sinkFor(deps, opts)
	if err != nil {
		return nil, err
	}
	schema := ""
	if opts.Schema != "" {
		schema = normalize.Identifier(opts.Schema)
	}
	svc := service.New(sink, service.Config{
		Tables:  opts.Tables,
		Schema:  schema,
		Replace: opts.Replace,
		Layout:  csvsplit.DefaultLayout,
	})
	return &Module{deps: deps, opts: opts, ports: Ports{Loader: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "dbload" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// MountRoutes is a no-op as the loader has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}

var _ modkit.Module = (*Module)(nil)
