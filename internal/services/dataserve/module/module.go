// Package module wires the data server routes using modkit
package module

import (
	stdhttp "net/http"

	"brickdump/internal/core/csvsplit"
	"brickdump/internal/core/version"
	"brickdump/internal/modkit"
	"brickdump/internal/modkit/swaggerkit"
	phttp "brickdump/internal/platform/net/http"
	"brickdump/internal/platform/net/middleware"
	"brickdump/internal/services/dataserve/domain"
	dhttp "brickdump/internal/services/dataserve/http"
	"brickdump/internal/services/dataserve/service"
)

// Ports exposed by the data server module
type Ports struct {
	Catalog domain.CatalogPort
}

// Module implements the data server module
type Module struct {
	deps  modkit.Deps
	opts  Options
	ports Ports
}

// New constructs the data server module from validated options
func New(deps modkit.Deps, opts Options) (*Module, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	svc := service.New(service.Config{BaseDir: opts.BaseDir, Layout: csvsplit.DefaultLayout})
	return &Module{deps: deps, opts: opts, ports: Ports{Catalog: svc}}, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "dataserve" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// Options returns the options the module was built with
func (m *Module) Options() Options { return m.opts }

// MountRoutes mounts health, version, API, static data, docs and profiler routes.
// It adds the heartbeat middleware, so call it before any other route is registered on r
func (m *Module) MountRoutes(r phttp.Router) {
	cors := middleware.CORS(middleware.CORSOptions{AllowedOrigins: m.opts.AllowedOrigins})

	r.Use(middleware.Heartbeat("/healthz"))
	r.Route("/api/v1", func(api phttp.Router) {
		api.Use(cors, middleware.NoCache(), middleware.StripSlashes())
		phttp.GetJSON(api, "/version", func(*stdhttp.Request) (any, error) {
			return version.Info("brickdump-serve"), nil
		})
		dhttp.Register(api, m.ports.Catalog)
	})
	r.Route("/data", func(data phttp.Router) {
		data.Use(cors)
		dhttp.RegisterFiles(data, m.ports.Catalog)
	})
	swaggerkit.Mount(r, "/api/docs", m.opts.Swagger)
	phttp.MountProfiler(r, "/debug", m.opts.Profiler)
}

var _ modkit.Module = (*Module)(nil)
