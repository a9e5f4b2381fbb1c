package repository

import (
	"context"

	"shorts-autopost/domain/model"
)

// IQueueStore reads and writes the upload queue
type IQueueStore interface {
	// Load materializes the worksheet into a table, first row as header.
	Load(ctx context.Context, sheetName, worksheetName string) (*model.QueueTable, *model.QueueHandle, error)
	// Save replaces the whole worksheet with table.
	Save(ctx context.Context, table *model.QueueTable, handle *model.QueueHandle) error
	// SaveRow writes back a single row at its original position.
	SaveRow(ctx context.Context, table *model.QueueTable, index int, handle *model.QueueHandle) error
}
