package ingestion

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/logreport/internal/domain"
	"github.com/xuri/excelize/v2"
)

// requiredColumns must all be present in the header row; order here decides
// which missing column gets reported first.
var requiredColumns = []string{"dataset", "reason", "date"}

var timeLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05.000000000",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
}

// MissingColumnError reports a required column absent from the header row.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("required column missing: %s", e.Column)
}

// Parse loads the payload as an xlsx workbook and extracts the log rows from
// the first sheet. The first non-empty row is the header. Dates that fail to
// parse keep their raw text and a zero time; values are otherwise taken as-is.
func Parse(payload []byte) ([]domain.LogRow, error) {
	if len(payload) == 0 {
		return nil, errors.New("file is empty")
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("excel file has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	header, dataRows, err := splitHeader(records)
	if err != nil {
		return nil, err
	}

	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.LogRow, 0, len(dataRows))
	for _, record := range dataRows {
		row := domain.LogRow{
			Dataset: cellAt(record, columns["dataset"]),
			Reason:  cellAt(record, columns["reason"]),
			RawDate: cellAt(record, columns["date"]),
		}
		if ts, parseErr := parseTimestamp(row.RawDate); parseErr == nil {
			row.Date = ts
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// splitHeader locates the first non-empty row as the header and returns the
// remaining non-empty rows in sheet order.
func splitHeader(records [][]string) ([]string, [][]string, error) {
	if len(records) == 0 {
		return nil, nil, errors.New("no rows found in file")
	}

	var header []string
	var dataRows [][]string
	for _, record := range records {
		if isEmptyRow(record) {
			continue
		}
		if header == nil {
			header = record
			continue
		}
		dataRows = append(dataRows, record)
	}
	if header == nil {
		return nil, nil, errors.New("header row could not be detected")
	}
	return header, dataRows, nil
}

// resolveColumns maps required column names onto header indices and fails on
// the first missing one.
func resolveColumns(header []string) (map[string]int, error) {
	indices := make(map[string]int, len(header))
	for idx, value := range header {
		name := strings.TrimSpace(value)
		if name == "" {
			continue
		}
		if _, seen := indices[name]; !seen {
			indices[name] = idx
		}
	}

	columns := make(map[string]int, len(requiredColumns))
	for _, required := range requiredColumns {
		idx, ok := indices[required]
		if !ok {
			return nil, &MissingColumnError{Column: required}
		}
		columns[required] = idx
	}
	return columns, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseTimestamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format")
}
