package googlesheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"shorts-autopost/domain/model"
	"shorts-autopost/domain/repository"
	"shorts-autopost/infrastructure/logger"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const spreadsheetMimeType = "application/vnd.google-apps.spreadsheet"

// Written cells are parsed like typed input, so TRUE stays a boolean and
// timestamps stay dates.
const valueInputOption = "USER_ENTERED"

// Scopes requested by the service account
var Scopes = []string{sheets.SpreadsheetsScope, drive.DriveReadonlyScope}

// GoogleSheet is the queue store backed by a Google Sheets worksheet.
// Documents are opened by name, so Drive is used to resolve the id.
type GoogleSheet struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewGoogleSheet authenticates with a service account key
func NewGoogleSheet(ctx context.Context, serviceAccountJSON []byte, opts ...option.ClientOption) (repository.IQueueStore, error) {
	conf, err := google.JWTConfigFromJSON(serviceAccountJSON, Scopes...)
	if err != nil {
		return nil, model.NewQueueAccessError("parse service account", err)
	}
	opts = append([]option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx))}, opts...)

	sheetsService, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, model.NewQueueAccessError("create sheets service", err)
	}
	driveService, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, model.NewQueueAccessError("create drive service", err)
	}
	return NewGoogleSheetWithServices(sheetsService, driveService), nil
}

// NewGoogleSheetWithServices wraps already configured services
func NewGoogleSheetWithServices(sheetsService *sheets.Service, driveService *drive.Service) *GoogleSheet {
	return &GoogleSheet{sheets: sheetsService, drive: driveService}
}

// Load reads the whole worksheet. The first row is the header.
func (g *GoogleSheet) Load(ctx context.Context, sheetName, worksheetName string) (*model.QueueTable, *model.QueueHandle, error) {
	log := logger.GetLogger().WithFields(map[string]interface{}{
		"spreadsheet": sheetName,
		"worksheet":   worksheetName,
	})

	documentID, err := g.findSpreadsheet(ctx, sheetName)
	if err != nil {
		return nil, nil, err
	}

	doc, err := g.sheets.Spreadsheets.Get(documentID).
		Fields("spreadsheetId", "properties.title", "sheets.properties").
		Context(ctx).Do()
	if err != nil {
		return nil, nil, model.NewQueueAccessError("open spreadsheet", err)
	}
	var tab *sheets.SheetProperties
	for _, s := range doc.Sheets {
		if s.Properties != nil && s.Properties.Title == worksheetName {
			tab = s.Properties
			break
		}
	}
	if tab == nil {
		return nil, nil, model.NewQueueAccessError("open worksheet", fmt.Errorf("worksheet %q not found in %q", worksheetName, sheetName))
	}

	resp, err := g.sheets.Spreadsheets.Values.Get(documentID, quoteTitle(tab.Title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, nil, model.NewQueueAccessError("read worksheet", err)
	}

	grid := toStrings(resp.Values)
	var header []string
	var records [][]string
	if len(grid) > 0 {
		header, records = grid[0], grid[1:]
	}
	table, kept := model.ParseQueueTable(header, records)

	handle := &model.QueueHandle{
		DocumentID:     documentID,
		DocumentName:   sheetName,
		WorksheetID:    tab.SheetId,
		WorksheetTitle: tab.Title,
		SheetRows:      make([]int, len(kept)),
	}
	for i, n := range kept {
		// records start on the second worksheet row
		handle.SheetRows[i] = n + 2
	}

	log.WithField("rows", len(table.Rows)).Info("Queue loaded")
	return table, handle, nil
}

// Save clears the worksheet and writes the header plus every row from A1.
// Concurrent edits made to the worksheet since Load are lost.
func (g *GoogleSheet) Save(ctx context.Context, table *model.QueueTable, handle *model.QueueHandle) error {
	if handle == nil {
		return model.NewQueueAccessError("save worksheet", errors.New("missing queue handle"))
	}
	title := quoteTitle(handle.WorksheetTitle)

	if _, err := g.sheets.Spreadsheets.Values.Clear(handle.DocumentID, title, &sheets.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return model.NewQueueAccessError("clear worksheet", err)
	}

	values := make([][]interface{}, 0, len(table.Rows)+1)
	values = append(values, toInterfaces(table.Header()))
	for i := range table.Rows {
		values = append(values, toInterfaces(table.Record(i)))
	}
	_, err := g.sheets.Spreadsheets.Values.Update(handle.DocumentID, title+"!A1", &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         values,
	}).ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return model.NewQueueAccessError("write worksheet", err)
	}

	// rows are contiguous now
	handle.SheetRows = nil

	logger.GetLogger().WithFields(map[string]interface{}{
		"worksheet": handle.WorksheetTitle,
		"rows":      len(table.Rows),
	}).Info("Queue saved")
	return nil
}

// SaveRow writes the header and the row at index back to their original
// worksheet positions, leaving every other row untouched.
func (g *GoogleSheet) SaveRow(ctx context.Context, table *model.QueueTable, index int, handle *model.QueueHandle) error {
	if handle == nil {
		return model.NewQueueAccessError("save row", errors.New("missing queue handle"))
	}
	if index < 0 || index >= len(table.Rows) {
		return model.NewQueueAccessError("save row", fmt.Errorf("row index %d out of range", index))
	}
	title := quoteTitle(handle.WorksheetTitle)
	last := ColumnName(len(table.Columns))
	sheetRow := handle.SheetRow(index)

	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: valueInputOption,
		Data: []*sheets.ValueRange{
			{
				Range:          fmt.Sprintf("%s!A1:%s1", title, last),
				MajorDimension: "ROWS",
				Values:         [][]interface{}{toInterfaces(table.Header())},
			},
			{
				Range:          fmt.Sprintf("%s!A%d:%s%d", title, sheetRow, last, sheetRow),
				MajorDimension: "ROWS",
				Values:         [][]interface{}{toInterfaces(table.Record(index))},
			},
		},
	}
	if _, err := g.sheets.Spreadsheets.Values.BatchUpdate(handle.DocumentID, req).Context(ctx).Do(); err != nil {
		return model.NewQueueAccessError("write row", err)
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"worksheet": handle.WorksheetTitle,
		"row":       sheetRow,
	}).Info("Queue row saved")
	return nil
}

func (g *GoogleSheet) findSpreadsheet(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), spreadsheetMimeType)
	list, err := g.drive.Files.List().
		Q(q).
		Fields(googleapi.Field("files(id,name)")).
		PageSize(10).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return "", model.NewQueueAccessError("find spreadsheet", err)
	}
	if len(list.Files) == 0 {
		return "", model.NewQueueAccessError("find spreadsheet", fmt.Errorf("spreadsheet %q not found or not shared with the service account", name))
	}
	if len(list.Files) > 1 {
		logger.GetLogger().WithField("spreadsheet", name).Warn("Several spreadsheets share this name, using the first one")
	}
	return list.Files[0].Id, nil
}

// ColumnName converts a 1-based column number into its A1 letters
func ColumnName(n int) string {
	if n < 1 {
		n = 1
	}
	name := ""
	for n > 0 {
		n--
		name = string(rune('A'+n%26)) + name
		n /= 26
	}
	return name
}

func quoteTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", `\'`)
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				out[i][j] = fmt.Sprint(v)
			}
		}
	}
	return out
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
