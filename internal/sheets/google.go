package sheets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cardscan/internal/apperr"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

const spreadsheetMIME = "application/vnd.google-apps.spreadsheet"

// Google: Backend поверх Drive v3 и Sheets v4 с сервисным аккаунтом.
type Google struct {
	drive  *drive.Service
	sheets *gsheets.Service
}

var _ Backend = (*Google)(nil)

// NewGoogle: пустой путь означает, что экспорт выключен (nil, nil).
func NewGoogle(ctx context.Context, credentialsFile string) (*Google, error) {
	if strings.TrimSpace(credentialsFile) == "" {
		return nil, nil
	}
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, apperr.Configuration("sheets", "Google credentials file not found: "+credentialsFile, err)
	}
	opts := []option.ClientOption{
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope, gsheets.SpreadsheetsScope),
	}
	ds, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.Configuration("sheets", "Failed to create the Drive client.", err)
	}
	ss, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.Configuration("sheets", "Failed to create the Sheets client.", err)
	}
	return &Google{drive: ds, sheets: ss}, nil
}

func quoteQuery(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `'`, `\'`)
}

// a1Range: 'My Tab'!A1
func a1Range(tab string) string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(tab, "'", "''"))
}

func (g *Google) FindSpreadsheet(ctx context.Context, name string) (string, bool, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", quoteQuery(name), spreadsheetMIME)
	res, err := g.drive.Files.List().Q(q).Fields("files(id, name)").PageSize(1).Context(ctx).Do()
	if err != nil {
		return "", false, err
	}
	if len(res.Files) == 0 {
		return "", false, nil
	}
	return res.Files[0].Id, true, nil
}

func (g *Google) CreateSpreadsheet(ctx context.Context, name, tab string, headers []string) (string, error) {
	cells := make([]*gsheets.CellData, 0, len(headers))
	for _, h := range headers {
		h := h
		cells = append(cells, &gsheets.CellData{UserEnteredValue: &gsheets.ExtendedValue{StringValue: &h}})
	}
	ss := &gsheets.Spreadsheet{
		Properties: &gsheets.SpreadsheetProperties{Title: name},
		Sheets: []*gsheets.Sheet{{
			Properties: &gsheets.SheetProperties{Title: tab},
			Data:       []*gsheets.GridData{{RowData: []*gsheets.RowData{{Values: cells}}}},
		}},
	}
	out, err := g.sheets.Spreadsheets.Create(ss).Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return out.SpreadsheetId, nil
}

func (g *Google) AppendRow(ctx context.Context, id, tab string, row []string) error {
	vals := make([]interface{}, len(row))
	for i, v := range row {
		vals[i] = v
	}
	_, err := g.sheets.Spreadsheets.Values.
		Append(id, a1Range(tab), &gsheets.ValueRange{Values: [][]interface{}{vals}}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

// NewFromCredentials собирает Exporter; без файла ключей экспорт выключен.
func NewFromCredentials(ctx context.Context, credentialsFile, name, tab string, log *zap.Logger) (*Exporter, error) {
	g, err := NewGoogle(ctx, credentialsFile)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return NewExporter(nil, name, tab, log), nil
	}
	return NewExporter(g, name, tab, log), nil
}
