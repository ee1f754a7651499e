package importer

import (
	"encoding/csv"
	"fmt"
	"io"
)

// ParseCSV reads a score sheet exported as CSV.
func ParseCSV(r io.Reader, opts Options) (Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("failed to read CSV: %w", err)
	}
	return ParseRows(rows, opts), nil
}
