// Package domain holds the types shared by the fetch run service and its adapters
package domain

import "time"

// Run layout names
const (
	RunDirPrefix = "rebrickable_"
	RunDirLayout = "2006-01-02_15-04-05"
	SplitFile    = "inventory_parts.csv"
	SplitDir     = "inventory_parts_split"
)

// Source is one catalog file to download
type Source struct {
	Name string
	URL  string
}

// FileResult records one downloaded file
type FileResult struct {
	Name  string
	URL   string
	Path  string
	Bytes int
}

// SplitReport records the inventory split, nil when the file was absent
type SplitReport struct {
	Source          string
	PartsDir        string
	Manifest        string
	Parts           int
	Rows            int64
	Columns         int
	OriginalRemoved bool
}

// Report summarizes a finished run
type Report struct {
	RunID     string
	OutDir    string
	StartedAt time.Time
	Files     []FileResult
	Split     *SplitReport
}

// RunDirName returns the output directory name for a run started at t
func RunDirName(t time.Time) string { return RunDirPrefix + t.Format(RunDirLayout) }

// ParseRunDirName returns the start time encoded in a run directory name
func ParseRunDirName(name string) (time.Time, bool) {
	if len(name) <= len(RunDirPrefix) || name[:len(RunDirPrefix)] != RunDirPrefix {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(RunDirLayout, name[len(RunDirPrefix):], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
