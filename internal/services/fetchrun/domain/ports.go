package domain

import "context"

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, baseDir string) (Report, error)
}

// Fetcher downloads one source and returns the decompressed bytes
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Writer stores a named buffer and returns its path
type Writer interface {
	Write(ctx context.Context, name string, data []byte) (string, error)
}

// WriterFactory returns a Writer rooted at dir
type WriterFactory func(dir string) Writer
