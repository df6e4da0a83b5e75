// Package domain holds the types served by the data server
package domain

import "time"

// Latest is the run alias that resolves to the newest run
const Latest = "latest"

// Run is one fetch run directory under the base dir
type Run struct {
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	HasManifest bool      `json:"has_manifest"`
}

// File is a CSV file at the top level of a run
type File struct {
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// Part is one split part of inventory_parts
type Part struct {
	Index int    `json:"index"`
	Name  string `json:"name"`
	Bytes int64  `json:"bytes"`
}

// RunDetail lists the contents of a run
type RunDetail struct {
	Run   Run    `json:"run"`
	Files []File `json:"files"`
	Parts []Part `json:"parts"`
}
