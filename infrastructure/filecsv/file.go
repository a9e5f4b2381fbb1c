package filecsv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"
)

// File is a queue store backed by a local CSV file with a header row. The
// spreadsheet and worksheet names are ignored, the path decides.
type File struct {
	path string
}

func NewFile(path string) repository.IQueueStore {
	return &File{path: path}
}

func (f *File) Load(ctx context.Context, sheetName, worksheetName string) (*model.QueueTable, *model.QueueHandle, error) {
	file, err := os.Open(f.path)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while open file")
		return nil, nil, model.NewQueueAccessError("open queue file", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, model.NewQueueAccessError("read queue file", err)
	}

	var header []string
	if len(records) > 0 {
		header, records = records[0], records[1:]
	}
	table, kept := model.ParseQueueTable(header, records)

	handle := &model.QueueHandle{
		DocumentID:     f.path,
		DocumentName:   filepath.Base(f.path),
		WorksheetTitle: worksheetName,
		SheetRows:      make([]int, len(kept)),
	}
	for i, n := range kept {
		handle.SheetRows[i] = n + 2
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"path": f.path,
		"rows": len(table.Rows),
	}).Info("Queue loaded")
	return table, handle, nil
}

// Save rewrites the whole file through a temporary file and a rename
func (f *File) Save(ctx context.Context, table *model.QueueTable, handle *model.QueueHandle) error {
	records := make([][]string, 0, len(table.Rows)+1)
	records = append(records, table.Header())
	for i := range table.Rows {
		records = append(records, table.Record(i))
	}
	if err := f.write(records); err != nil {
		return model.NewQueueAccessError("write queue file", err)
	}
	if handle != nil {
		handle.SheetRows = nil
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"path": f.path,
		"rows": len(table.Rows),
	}).Info("Queue saved")
	return nil
}

// SaveRow rewrites the header and the one row, keeping every other line of
// the file as it is on disk now.
func (f *File) SaveRow(ctx context.Context, table *model.QueueTable, index int, handle *model.QueueHandle) error {
	if index < 0 || index >= len(table.Rows) {
		return model.NewQueueAccessError("save row", fmt.Errorf("row index %d out of range", index))
	}
	current, err := f.read()
	if err != nil {
		return model.NewQueueAccessError("read queue file", err)
	}

	line := handle.SheetRow(index) - 1
	for len(current) <= line {
		current = append(current, nil)
	}
	if len(current) == 0 {
		current = append(current, nil)
	}
	current[0] = table.Header()
	current[line] = table.Record(index)

	if err := f.write(current); err != nil {
		return model.NewQueueAccessError("write queue file", err)
	}
	logger.GetLogger().WithFields(map[string]interface{}{
		"path": f.path,
		"row":  line + 1,
	}).Info("Queue row saved")
	return nil
}

func (f *File) read() ([][]string, error) {
	file, err := os.Open(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

func (f *File) write(records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
