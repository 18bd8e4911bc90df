// Package view раскладывает записи по видимым колонкам ColumnConfig.
// Таблица, печать и PDF берут колонки из одного фильтра: что на экране, то и на бумаге.
package view

import (
	"fmt"

	"cardscan/internal/record"
	"cardscan/internal/schema"
)

// DefaultPlaceholder: пустая ячейка в таблице.
const DefaultPlaceholder = "N/A"

// Действия в хвосте каждой строки таблицы.
const (
	ActionEdit   = "edit"
	ActionDelete = "delete"
	ActionPrint  = "print"
)

var rowActions = []string{ActionEdit, ActionDelete, ActionPrint}

type Column struct {
	Key    string `json:"key"`
	Header string `json:"header"`
}

type Row struct {
	ID      string   `json:"id"`
	ShortID string   `json:"shortId,omitempty"`
	Cells   []string `json:"cells"`
}

type Table struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	Actions []string `json:"actions"`
}

func columns(cfg schema.ColumnConfig) []Column {
	vis := cfg.Visible()
	out := make([]Column, 0, len(vis))
	for _, f := range vis {
		out = append(out, Column{Key: f.Key, Header: f.Header})
	}
	return out
}

// cell: короткий id печатается дополненным до 6 знаков.
func cell(rec record.Record, key, placeholder string) string {
	if key == schema.KeyShortID {
		if s := PadShortID(rec.ShortID); s != "" {
			return s
		}
		return placeholder
	}
	v, ok := rec.Value(key)
	if !ok || v == "" {
		return placeholder
	}
	return v
}

func RenderTable(records []record.Record, cfg schema.ColumnConfig, placeholder string) Table {
	t := Table{Columns: columns(cfg), Rows: make([]Row, 0, len(records)), Actions: rowActions}
	for _, rec := range records {
		row := Row{ID: rec.ID, ShortID: PadShortID(rec.ShortID), Cells: make([]string, 0, len(t.Columns))}
		for _, c := range t.Columns {
			row.Cells = append(row.Cells, cell(rec, c.Key, placeholder))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// PadShortID: 4821 -> "004821"; неназначенный id -> "".
func PadShortID(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%06d", n)
}
