package model

import (
	"fmt"
	"strings"
	"time"
)

// Column names of the upload queue worksheet
const (
	ColumnCaption    = "Caption"
	ColumnHashtags   = "Hashtags"
	ColumnReelURL    = "Reel URL"
	ColumnPosted     = "Posted"
	ColumnUploadTime = "Upload Time"
)

// PostedValue is the canonical value of the Posted column for uploaded rows
const PostedValue = "TRUE"

// UploadTimeLayout is the layout written into the Upload Time column
const UploadTimeLayout = "2006-01-02 15:04:05"

// PostedMatch selects how the Posted flag is compared against PostedValue
type PostedMatch string

const (
	// PostedMatchNormalized trims whitespace and ignores case
	PostedMatchNormalized PostedMatch = "normalized"
	// PostedMatchExact requires the cell to equal "TRUE" byte for byte
	PostedMatchExact PostedMatch = "exact"
)

// QueueRow is one entry of the upload queue. Values holds every column of the
// worksheet, including ones this program does not know about.
type QueueRow struct {
	Values map[string]string `json:"values"`
}

// NewQueueRow builds a row from column/value pairs
func NewQueueRow(values map[string]string) QueueRow {
	row := QueueRow{Values: make(map[string]string, len(values))}
	for k, v := range values {
		row.Values[k] = v
	}
	return row
}

// Get returns the cell value for column, or "" when the column is missing
func (r QueueRow) Get(column string) string {
	if r.Values == nil {
		return ""
	}
	return r.Values[column]
}

func (r QueueRow) Caption() string    { return r.Get(ColumnCaption) }
func (r QueueRow) Hashtags() string   { return r.Get(ColumnHashtags) }
func (r QueueRow) ReelURL() string    { return r.Get(ColumnReelURL) }
func (r QueueRow) Posted() string     { return r.Get(ColumnPosted) }
func (r QueueRow) UploadTime() string { return r.Get(ColumnUploadTime) }

// IsPosted reports whether the Posted flag marks the row as uploaded
func (r QueueRow) IsPosted(match PostedMatch) bool {
	posted := r.Posted()
	if match == PostedMatchExact {
		return posted == PostedValue
	}
	return strings.EqualFold(strings.TrimSpace(posted), PostedValue)
}

// uploadTimeLayouts are the formats accepted when reading Upload Time back.
// Sheets may re-render the value depending on the locale of the document.
var uploadTimeLayouts = []string{
	UploadTimeLayout,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// UploadedAt parses the Upload Time column. The wall clock is interpreted in
// loc unless the value carries its own offset.
func (r QueueRow) UploadedAt(loc *time.Location) (time.Time, bool) {
	raw := strings.TrimSpace(r.UploadTime())
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range uploadTimeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// QueueTable is the in-memory copy of the worksheet. Columns keeps the header
// order of the sheet, Rows keeps the row order.
type QueueTable struct {
	Columns []string   `json:"columns"`
	Rows    []QueueRow `json:"rows"`
}

// HasColumn reports whether the header row contains column
func (t *QueueTable) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// Set writes a cell. A column that does not exist yet is appended to the
// header, the other rows get an empty value for it.
func (t *QueueTable) Set(index int, column, value string) {
	if !t.HasColumn(column) {
		t.Columns = append(t.Columns, column)
	}
	if t.Rows[index].Values == nil {
		t.Rows[index].Values = map[string]string{}
	}
	t.Rows[index].Values[column] = value
}

// MarkPosted flags the row as uploaded at the given moment
func (t *QueueTable) MarkPosted(index int, at time.Time) {
	t.Set(index, ColumnPosted, PostedValue)
	t.Set(index, ColumnUploadTime, at.Format(UploadTimeLayout))
}

// Record returns the row values in header order
func (t *QueueTable) Record(index int) []string {
	record := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		record[i] = t.Rows[index].Get(c)
	}
	return record
}

// Clone returns a deep copy of the table
func (t *QueueTable) Clone() *QueueTable {
	clone := &QueueTable{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]QueueRow, len(t.Rows)),
	}
	for i, row := range t.Rows {
		clone.Rows[i] = NewQueueRow(row.Values)
	}
	return clone
}

// NewQueueTable builds a table from a header row and raw records. Short
// records are padded, records with only empty cells are dropped.
func NewQueueTable(header []string, records [][]string) *QueueTable {
	table, _ := ParseQueueTable(header, records)
	return table
}

// ParseQueueTable is NewQueueTable that also returns, for every table row,
// the index of the record it was built from. The table is as wide as the
// widest record: cells without a header, or under a repeated header, get a
// positional column so they survive a Save.
func ParseQueueTable(header []string, records [][]string) (*QueueTable, []int) {
	width := len(header)
	for _, record := range records {
		if len(record) > width {
			width = len(record)
		}
	}

	table := &QueueTable{Columns: make([]string, 0, width)}
	seen := make(map[string]bool, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" || seen[name] {
			table.Columns = append(table.Columns, positionalColumn(i+1, name))
			continue
		}
		seen[name] = true
		table.Columns = append(table.Columns, name)
	}

	var kept []int
	for n, record := range records {
		empty := true
		values := make(map[string]string, len(table.Columns))
		for i, c := range table.Columns {
			v := ""
			if i < len(record) {
				v = record[i]
			}
			if v != "" {
				empty = false
			}
			values[c] = v
		}
		if empty {
			continue
		}
		table.Rows = append(table.Rows, QueueRow{Values: values})
		kept = append(kept, n)
	}
	return table, kept
}

// positional column keys start with a NUL byte, which a header cell never holds
const positionalPrefix = "\x00"

func positionalColumn(position int, label string) string {
	return fmt.Sprintf("%s%d:%s", positionalPrefix, position, label)
}

// Header returns the header row to write back: column names, with positional
// columns shown by their original label (empty when the sheet had none).
func (t *QueueTable) Header() []string {
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if strings.HasPrefix(c, positionalPrefix) {
			if _, label, ok := strings.Cut(c, ":"); ok {
				header[i] = label
			}
			continue
		}
		header[i] = c
	}
	return header
}

// QueueHandle identifies where a table was loaded from so it can be written back
type QueueHandle struct {
	DocumentID     string `json:"document_id"`
	DocumentName   string `json:"document_name"`
	WorksheetID    int64  `json:"worksheet_id"`
	WorksheetTitle string `json:"worksheet_title"`
	// SheetRows maps a table row index to its 1-based row number in the
	// worksheet. Needed for row-level writes because empty rows are skipped.
	SheetRows []int `json:"sheet_rows,omitempty"`
}

// SheetRow returns the worksheet row number holding the table row at index
func (h *QueueHandle) SheetRow(index int) int {
	if h != nil && index < len(h.SheetRows) {
		return h.SheetRows[index]
	}
	return index + 2
}
