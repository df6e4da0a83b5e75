// Command brickdump-reconstruct joins split inventory parts back into one CSV
package main

import (
	"flag"
	"strings"

	"brickdump/internal/core/csvsplit"
	"brickdump/internal/platform/config"
	"brickdump/internal/platform/logger"
)

func main() {
	c := config.New().Prefix("BRICKDUMP_RECONSTRUCT_")
	l := logger.Named("brickdump-reconstruct")

	var (
		fParts  = flag.String("parts-dir", c.MayString("PARTS_DIR", "Data/inventory_parts_split"), "directory holding inventory_parts_part_NNN.csv")
		fOut    = flag.String("output", c.MayString("OUTPUT", "Data/inventory_parts_reconstructed.csv"), "reconstructed CSV path")
		fExpect = flag.Int("parts", c.MayInt("EXPECTED_PARTS", csvsplit.DefaultExpectedParts), "number of parts to read, 0 discovers them")
		fMin    = flag.Int("min-fields", c.MayInt("MIN_FIELDS", csvsplit.DefaultMinFields), "drop rows with fewer fields, negative keeps all rows")
		fPrefix = flag.String("prefix", c.MayString("PART_PREFIX", csvsplit.DefaultLayout.Prefix), "part file name prefix")
	)
	flag.Parse()

	layout := csvsplit.DefaultLayout
	layout.Prefix = *fPrefix

	l.Info().Str("parts_dir", *fParts).Str("output", *fOut).Int("parts", *fExpect).Msg("reconstructing")

	res, err := csvsplit.Reconstruct(csvsplit.ReconstructOptions{
		PartsDir:      *fParts,
		Output:        *fOut,
		ExpectedParts: *fExpect,
		MinFields:     *fMin,
		Layout:        layout,
		OnPart: func(st csvsplit.PartStat) {
			switch {
			case st.Missing:
				l.Warn().Int("part", st.Index).Str("path", st.Path).Msg("part not found")
			case st.Empty:
				l.Warn().Int("part", st.Index).Str("path", st.Path).Msg("part is empty")
			default:
				l.Info().Int("part", st.Index).Int64("rows", st.Rows).Int64("dropped", st.Dropped).
					Bool("header_mismatch", st.HeaderMismatch).Msg("part read")
			}
		},
	})
	if err != nil {
		l.Fatal().Err(err).Msg("reconstruct failed")
	}

	l.Debug().Str("header", strings.Join(res.Header, ",")).Msg("sample")
	for i, row := range res.Sample {
		l.Debug().Int("row", i+1).Str("fields", strings.Join(row, ",")).Msg("sample")
	}

	evt := l.Info()
	if len(res.Missing) > 0 {
		evt = l.Warn().Ints("missing", res.Missing)
	}
	evt.Str("output", res.Output).
		Int("parts_read", res.PartsRead).
		Int64("rows", res.Rows).
		Int64("dropped", res.Dropped).
		Float64("size_mb", float64(res.OutputBytes)/(1024*1024)).
		Msg("reconstruction complete")
}
