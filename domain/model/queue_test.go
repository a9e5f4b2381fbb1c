package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRow_IsPosted(t *testing.T) {
	tests := []struct {
		posted     string
		normalized bool
		exact      bool
	}{
		{"TRUE", true, true},
		{"true", true, false},
		{" True ", true, false},
		{"", false, false},
		{"FALSE", false, false},
		{"yes", false, false},
	}
	for _, tt := range tests {
		row := NewQueueRow(map[string]string{ColumnPosted: tt.posted})
		assert.Equal(t, tt.normalized, row.IsPosted(PostedMatchNormalized), "normalized %q", tt.posted)
		assert.Equal(t, tt.exact, row.IsPosted(PostedMatchExact), "exact %q", tt.posted)
	}
}

func TestQueueRow_UploadedAt(t *testing.T) {
	ist := time.FixedZone("UTC+05:30", 5*3600+30*60)

	at, ok := NewQueueRow(map[string]string{ColumnUploadTime: "2026-10-17 09:15:00"}).UploadedAt(ist)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 10, 17, 9, 15, 0, 0, ist), at)

	at, ok = NewQueueRow(map[string]string{ColumnUploadTime: "2026-10-16T20:00:00Z"}).UploadedAt(ist)
	require.True(t, ok)
	assert.Equal(t, 17, at.Day(), "offset carried by the value wins")

	_, ok = NewQueueRow(map[string]string{ColumnUploadTime: "yesterday"}).UploadedAt(ist)
	assert.False(t, ok)

	_, ok = NewQueueRow(nil).UploadedAt(ist)
	assert.False(t, ok)
}

func TestParseQueueTable(t *testing.T) {
	header := []string{" Caption ", "Hashtags", "Reel URL", "Notes"}
	records := [][]string{
		{"First", "#a", "https://cdn.example.com/1.mp4", "keep me"},
		{"", "", ""},
		{"Second", "#b"},
	}

	table, kept := ParseQueueTable(header, records)

	assert.Equal(t, []string{"Caption", "Hashtags", "Reel URL", "Notes"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []int{0, 2}, kept)
	assert.Equal(t, "keep me", table.Rows[0].Get("Notes"))
	assert.Equal(t, "", table.Rows[1].ReelURL())
	assert.Equal(t, "Second", NewQueueTable(header, records).Rows[1].Caption())
}

func TestParseQueueTable_KeepsUnnamedAndRepeatedColumns(t *testing.T) {
	header := []string{"Caption", "", "Notes", "Notes"}
	records := [][]string{
		{"First", "x", "n1", "n2", "tail"},
		{"Second"},
	}

	table, _ := ParseQueueTable(header, records)

	require.Len(t, table.Columns, 5)
	assert.Equal(t, []string{"Caption", "", "Notes", "Notes", ""}, table.Header())
	assert.Equal(t, []string{"First", "x", "n1", "n2", "tail"}, table.Record(0))
	assert.Equal(t, []string{"Second", "", "", "", ""}, table.Record(1))
	assert.Equal(t, "n1", table.Rows[0].Get("Notes"))

	table.MarkPosted(1, time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC))
	assert.Equal(t, []string{"Caption", "", "Notes", "Notes", "", "Posted", "Upload Time"}, table.Header())
	assert.Equal(t, []string{"First", "x", "n1", "n2", "tail", "", ""}, table.Record(0))

	reparsed, _ := ParseQueueTable(table.Header(), [][]string{table.Record(0), table.Record(1)})
	assert.Equal(t, table.Header(), reparsed.Header())
	assert.Equal(t, table.Record(0), reparsed.Record(0))
	assert.Equal(t, "TRUE", reparsed.Rows[1].Posted())
}

func TestQueueTable_MarkPosted(t *testing.T) {
	table := NewQueueTable(
		[]string{"Caption", "Hashtags", "Reel URL"},
		[][]string{{"First", "#a", "u1"}, {"Second", "#b", "u2"}},
	)
	before := table.Clone()

	table.MarkPosted(1, time.Date(2026, 10, 17, 17, 30, 5, 0, time.UTC))

	assert.Equal(t, []string{"Caption", "Hashtags", "Reel URL", "Posted", "Upload Time"}, table.Columns)
	assert.Equal(t, []string{"Second", "#b", "u2", "TRUE", "2026-10-17 17:30:05"}, table.Record(1))
	assert.Equal(t, []string{"First", "#a", "u1", "", ""}, table.Record(0))
	assert.Equal(t, before.Rows[0], table.Rows[0])

	// the clone is independent
	assert.Len(t, before.Columns, 3)
	assert.Equal(t, "", before.Rows[1].Posted())
}

func TestQueueHandle_SheetRow(t *testing.T) {
	handle := &QueueHandle{SheetRows: []int{2, 4}}
	assert.Equal(t, 4, handle.SheetRow(1))
	assert.Equal(t, 4, handle.SheetRow(2))

	var none *QueueHandle
	assert.Equal(t, 2, none.SheetRow(0))
}

func TestRunContext_SameDay(t *testing.T) {
	ist := time.FixedZone("UTC+05:30", 5*3600+30*60)
	rc := RunContext{Now: time.Date(2026, 10, 17, 0, 10, 0, 0, ist)}

	assert.Equal(t, "2026-10-17", rc.Date())
	assert.True(t, rc.SameDay(time.Date(2026, 10, 16, 19, 0, 0, 0, time.UTC)))
	assert.False(t, rc.SameDay(time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC)))
}
