// Command brickdump-load loads a run directory into postgres or clickhouse
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"brickdump/internal/modkit"
	"brickdump/internal/modkit/module"
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/logger"
	"brickdump/internal/platform/store"

	loadmod "brickdump/internal/services/dbload/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	var (
		fSink    = flag.String("sink", "", "pg or ch, overrides BRICKDUMP_LOAD_SINK")
		fSchema  = flag.String("schema", "", "target schema or database, overrides BRICKDUMP_LOAD_SCHEMA")
		fReplace = flag.Bool("replace", false, "drop existing tables before loading")
	)
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: brickdump-load [flags] <run-dir>\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	l := logger.Named("brickdump-load")
	if flag.NArg() != 1 {
		flag.Usage()
		l.Fatal().Msg("exactly one run directory is required")
	}
	runDir := flag.Arg(0)

	// Surface flags to FromConfig
	mustSetEnv("BRICKDUMP_LOAD_SINK", *fSink)
	mustSetEnv("BRICKDUMP_LOAD_SCHEMA", *fSchema)
	if *fReplace {
		mustSetEnv("BRICKDUMP_LOAD_REPLACE", "true")
	}

	root := config.New()
	opts := loadmod.FromConfig(root)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.FromEnv("brickdump-load", "load"), store.WithLogger(*l))
	if err != nil {
		stop()
		l.Fatal().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	m, err := loadmod.New(modkit.FromStore(*l, root, st), opts)
	if err != nil {
		_ = st.Close()
		stop()
		l.Fatal().Err(err).Msg("invalid load options")
	}

	rep, err := module.MustPortsOf[loadmod.Ports](m).Loader.Load(ctx, runDir)
	if err != nil {
		_ = st.Close()
		stop()
		l.Fatal().Err(err).Str("run_dir", runDir).Msg("load failed")
	}

	var rows, skipped int64
	for _, t := range rep.Tables {
		rows += t.Rows
		skipped += t.Skipped
	}
	l.Info().
		Str("run_dir", runDir).
		Str("run_id", rep.RunID.String()).
		Str("sink", rep.Sink).
		Int("tables", len(rep.Tables)).
		Int64("rows", rows).
		Int64("skipped", skipped).
		Msg("load complete")
}
