// Package export renders records for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"canvass/internal/model"
)

// CSVHeader is the first row of every export.
var CSVHeader = []string{"First Name", "Last Name", "Email", "Notes", "Created At", "Updated At"}

// ContentType is the media type of WriteCSV output.
const ContentType = "text/csv; charset=utf-8"

// WriteCSV writes records as CSV with a header row. Timestamps are RFC 3339 in UTC.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range records {
		email := ""
		if r.Email != nil {
			email = *r.Email
		}
		row := []string{
			r.FirstName,
			r.LastName,
			email,
			r.Notes,
			r.CreatedAt.UTC().Format(time.RFC3339),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename returns the attachment name for an export taken at t.
func Filename(t time.Time) string {
	return fmt.Sprintf("records-%s.csv", t.UTC().Format("20060102"))
}
