// Command brickdump-fetch downloads the Rebrickable catalog and splits inventory_parts.csv
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

	fetchmod "brickdump/internal/services/fetchrun/module"
)

func main() {
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: brickdump-fetch [base-dir]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	root := config.New()
	l := logger.Named("brickdump-fetch")

	opts := fetchmod.FromConfig(root)
	if flag.NArg() > 0 {
		opts.BaseDir = flag.Arg(0)
	}

	m, err := fetchmod.New(modkit.Deps{Log: *l, Cfg: root}, opts)
	if err != nil {
		l.Fatal().Err(err).Msg("invalid fetch options")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rep, err := module.MustPortsOf[fetchmod.Ports](m).Runner.Run(ctx, opts.BaseDir)
	if err != nil {
		stop()
		l.Fatal().Err(err).Str("out_dir", rep.OutDir).Msg("fetch run failed")
	}

	evt := l.Info().Str("run_id", rep.RunID).Str("out_dir", rep.OutDir).Int("files", len(rep.Files))
	if rep.Split != nil {
		evt = evt.Int("parts", rep.Split.Parts).Int64("rows", rep.Split.Rows)
	}
	evt.Msg("fetch run complete")
}
