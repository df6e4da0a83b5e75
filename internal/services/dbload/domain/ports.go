package domain

import "context"

// LoaderPort loads a run directory into a database
type LoaderPort interface {
	Load(ctx context.Context, runDir string) (Report, error)
}

// RowSource yields CSV records until io.EOF
type RowSource interface {
	Next() ([]string, error)
}

// Sink writes tables into one database
type Sink interface {
	Kind() string
	// LoadTable creates the table when needed and streams rows into it
	LoadTable(ctx context.Context, spec TableSpec, rows RowSource) (int64, error)
	// RecordLoad notes a finished table load where the sink keeps a ledger
	RecordLoad(ctx context.Context, e LedgerEntry) error
}
