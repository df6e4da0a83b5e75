package domain

import (
	"context"
	"io/fs"
)

// CatalogPort reads run directories from disk
type CatalogPort interface {
	// Runs lists runs newest first
	Runs(ctx context.Context) ([]Run, error)
	// Run describes one run; name may be Latest
	Run(ctx context.Context, name string) (RunDetail, error)
	// Manifest returns the raw parts_info.txt of a run
	Manifest(ctx context.Context, name string) ([]byte, error)
	// Files returns a read only view of a run directory for static serving
	Files(ctx context.Context, name string) (fs.FS, error)
}
