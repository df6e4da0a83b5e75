// Command brickdump-serve publishes run directories and their manifests over HTTP
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"brickdump/internal/modkit"
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/logger"
	phttp "brickdump/internal/platform/net/http"
	"brickdump/internal/platform/net/middleware"

	servemod "brickdump/internal/services/dataserve/module"

	"github.com/go-chi/chi/v5"
)

func main() {
	root := config.New()
	l := logger.Named("brickdump-serve")

	opts := servemod.FromConfig(root)
	m, err := servemod.New(modkit.Deps{Log: *l, Cfg: root}, opts)
	if err != nil {
		l.Fatal().Err(err).Msg("invalid serve options")
	}

	srv := phttp.NewServer(opts.Addr, func(mux *chi.Mux) {
		mux.Use(middleware.Defaults()...)
		mux.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{
			Slow: root.Prefix("BRICKDUMP_SERVE_").MayDuration("SLOW", 2*time.Second),
			Skip: func(p string) bool { return p == "/healthz" || strings.HasPrefix(p, "/api/docs") },
		}))
	})
	m.MountRoutes(srv.Router())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Info().Str("addr", srv.Addr()).Str("base_dir", opts.BaseDir).Bool("swagger", opts.Swagger).Msg("serving runs")
	if err := srv.Run(ctx); err != nil {
		stop()
		l.Fatal().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("http server stopped")
}
