// Package domain holds the types shared by the loader service and its sinks
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Sink kinds
const (
	SinkPG = "pg"
	SinkCH = "ch"
)

// LedgerTable records every table load in postgres
const LedgerTable = "brickdump_loads"

// TableSpec describes the destination of one CSV file
type TableSpec struct {
	Schema  string
	Name    string
	Columns []string
	Replace bool
}

// LedgerEntry is one row of the load ledger
type LedgerEntry struct {
	RunID    uuid.UUID
	RunDir   string
	Table    string
	Rows     int64
	Skipped  int64
	LoadedAt time.Time
}

// TableResult records the load of one table
type TableResult struct {
	Table   string
	Source  string
	Parts   int
	Rows    int64
	Skipped int64
}

// Report summarizes a load
type Report struct {
	RunID  uuid.UUID
	RunDir string
	Sink   string
	Tables []TableResult
}
