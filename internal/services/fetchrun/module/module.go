// Package module wires the fetch run service from config
package module

import (
	"brickdump/internal/adapters/fsout"
	"brickdump/internal/adapters/ingest/rebrickable"
	"brickdump/internal/core/csvsplit"
	"brickdump/internal/modkit"
	phttp "brickdump/internal/platform/net/http"
	"brickdump/internal/services/fetchrun/domain"
	"brickdump/internal/services/fetchrun/service"
)

// Ports defines the fetch run module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the fetch run module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the fetch run module from options.
// It does not mount any routes
func New(deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	srcs, err := rebrickable.SourcesAt(opts.Mirror)
	if err != nil {
		return nil, err
	}
	sources := make([]domain.Source, len(srcs))
	for i, s := range srcs {
		sources[i] = domain.Source{Name: s.Name, URL: s.URL}
	}

	svc := service.New(
		rebrickable.NewHTTPFetcherWithTimeout(opts.Timeout),
		func(dir string) domain.Writer { return fsout.New(dir) },
		service.Config{
			Sources:      sources,
			MaxPartMB:    opts.MaxPartMB,
			ExactBytes:   opts.ExactBytes,
			Layout:       csvsplit.DefaultLayout,
			KeepOriginal: opts.KeepOriginal,
		},
	)
	return &Module{deps: deps, opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "fetchrun" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// MountRoutes is a no-op as the fetch run has no routes
func (m *Module) MountRoutes(_ phttp.Router) {}

var (
	_ modkit.Module  = (*Module)(nil)
	_ domain.Fetcher = (*rebrickable.HTTPFetcher)(nil)
	_ domain.Writer  = (*fsout.Writer)(nil)
)
