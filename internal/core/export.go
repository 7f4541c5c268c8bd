package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"
)

// ExportTimestampLayout is used in export filenames.
const ExportTimestampLayout = "20060102_150405"

// ExportFilename returns "<kind>_<timestamp>.csv".
func ExportFilename[T any](kind *Kind[T], now time.Time) string {
	return fmt.Sprintf("%s_%s.csv", kind.Key, now.Format(ExportTimestampLayout))
}

// WriteCSV writes a header row of field keys followed by one row per record,
// in the order given. Absent values are written as empty strings.
func WriteCSV[T any](w io.Writer, kind *Kind[T], records []T) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(kind.Fields))
	for i, f := range kind.Fields {
		header[i] = f.Key
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(kind.Fields))
	for n, rec := range records {
		for i, f := range kind.Fields {
			row[i] = f.TextOf(rec)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", n+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
