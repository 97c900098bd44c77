package domain

import "time"

// LogRow is a single failed query record from the input spreadsheet.
type LogRow struct {
	// Date is the parsed failure timestamp; zero when the cell could not
	// be parsed. RawDate keeps the original cell text for display.
	Date    time.Time `json:"date"`
	RawDate string    `json:"raw_date"`
	Dataset string    `json:"dataset"`
	// Reason is free text; empty means the cell was missing.
	Reason string `json:"reason"`
}

// HasDate reports whether the row carries a parseable timestamp.
func (r LogRow) HasDate() bool {
	return !r.Date.IsZero()
}

// HasReason reports whether the row carries a reason value.
func (r LogRow) HasReason() bool {
	return r.Reason != ""
}
