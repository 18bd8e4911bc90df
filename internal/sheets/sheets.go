// Package sheets дописывает сохранённые визитки в таблицу Google Sheets.
package sheets

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"cardscan/internal/apperr"
	"cardscan/internal/record"
	"cardscan/internal/schema"
	"cardscan/internal/view"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

const (
	DefaultName = "Visual Text Extractor Contacts"
	DefaultTab  = "Contacts"

	MsgNotConfigured = "Google Sheets export is not configured. Set the service account credentials file to enable it."
)

// Backend: Drive (поиск по имени) и Sheets (создание, дописывание строки).
type Backend interface {
	FindSpreadsheet(ctx context.Context, name string) (id string, found bool, err error)
	CreateSpreadsheet(ctx context.Context, name, tab string, headers []string) (id string, err error)
	AppendRow(ctx context.Context, id, tab string, row []string) error
}

type Exporter struct {
	backend Backend
	name    string
	tab     string
	log     *zap.Logger

	mu sync.Mutex
	id string // найденная/созданная таблица
}

func NewExporter(b Backend, name, tab string, log *zap.Logger) *Exporter {
	if name == "" {
		name = DefaultName
	}
	if tab == "" {
		tab = DefaultTab
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{backend: b, name: name, tab: tab, log: log}
}

func (e *Exporter) Enabled() bool { return e != nil && e.backend != nil }

// Append: найти таблицу или создать её со строкой заголовков, затем дописать запись.
// Колонки и порядок те же, что в таблице на экране.
func (e *Exporter) Append(ctx context.Context, rec record.Record, cfg schema.ColumnConfig) (string, error) {
	if !e.Enabled() {
		return "", apperr.Configuration("sheets.append", MsgNotConfigured, nil)
	}
	tbl := view.RenderTable([]record.Record{rec}, cfg, "")
	headers := make([]string, 0, len(tbl.Columns))
	for _, c := range tbl.Columns {
		headers = append(headers, c.Header)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	id, err := e.ensureLocked(ctx, headers)
	if err != nil {
		return "", err
	}
	if err := e.backend.AppendRow(ctx, id, e.tab, tbl.Rows[0].Cells); err != nil {
		// таблицу могли удалить; в следующий раз ищем заново
		e.id = ""
		return "", classify("sheets.append", err)
	}
	e.log.Info("record appended to sheet", zap.String("spreadsheet", id), zap.String("record", rec.ID))
	return id, nil
}

func (e *Exporter) ensureLocked(ctx context.Context, headers []string) (string, error) {
	if e.id != "" {
		return e.id, nil
	}
	id, found, err := e.backend.FindSpreadsheet(ctx, e.name)
	if err != nil {
		return "", classify("sheets.find", err)
	}
	if !found {
		id, err = e.backend.CreateSpreadsheet(ctx, e.name, e.tab, headers)
		if err != nil {
			return "", classify("sheets.create", err)
		}
		if id == "" {
			return "", apperr.Transport("sheets.create", "Could not create or find the spreadsheet.", nil)
		}
		e.log.Info("spreadsheet created", zap.String("name", e.name), zap.String("id", id))
	}
	e.id = id
	return id, nil
}

// classify: 401/403 значит ключи, остальное считаем ошибкой сервиса.
func classify(op string, err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		msg := "Google API Error: " + strings.TrimSpace(ge.Message)
		if ge.Code == http.StatusUnauthorized || ge.Code == http.StatusForbidden {
			return apperr.Configuration(op, msg, err)
		}
		return apperr.Transport(op, msg, err)
	}
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Transport(op, "An error occurred while saving to Google Sheets.", err)
}
