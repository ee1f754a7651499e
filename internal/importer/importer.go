// Package importer reads score sheets and snapshot files into game records.
//
// Tabular sources (CSV, XLSX) share one row parser. Malformed rows are skipped and
// reported, never fatal. A JSON snapshot is all or nothing.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"uno-score-bot/internal/model"
	"uno-score-bot/internal/scorebook"
)

// ErrUnsupportedFormat is returned for file extensions with no parser.
var ErrUnsupportedFormat = errors.New("unsupported file type")

// Format names an import source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file name's extension.
func FormatFor(filename string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Options controls tabular parsing.
type Options struct {
	// Year completes m/d date cells.
	Year int
	// Roster names the score columns of a sheet that has no header row.
	Roster []string
	// NewID mints record ids; defaults to scorebook.NewID.
	NewID func() string
}

func (o Options) newID() string {
	if o.NewID != nil {
		return o.NewID()
	}
	return scorebook.NewID()
}

// SkippedRow explains why one data row produced no record.
type SkippedRow struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Report summarises a tabular import.
type Report struct {
	Rows    int          `json:"rows"`
	Skipped []SkippedRow `json:"skipped,omitempty"`
}

// Result is the outcome of a tabular import.
type Result struct {
	Players []string
	Records []model.GameRecord
	Report  Report
}
