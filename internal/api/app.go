package api

import (
	"context"

	"cardscan/internal/capture"
	"cardscan/internal/extract"
	"cardscan/internal/form"
	"cardscan/internal/pg"
	"cardscan/internal/record"
	"cardscan/internal/schema"
	"cardscan/internal/settings"
	"cardscan/internal/sheets"
	"cardscan/internal/view"

	"go.uber.org/zap"
)

// ColumnsHook: хранилище, которому важна форма конфигурации (Postgres: колонки таблицы).
type ColumnsHook interface {
	Check(cfg schema.ColumnConfig) error
	Sync(ctx context.Context, cfg schema.ColumnConfig) error
}

// App: всё, что нужно обработчикам. Собирается в cmd/cardscan.
type App struct {
	Settings  *settings.Store
	Records   record.Repository
	Submitter *form.Submitter
	Extractor *extract.Client
	Sheets    *sheets.Exporter
	Captures  capture.Store
	Hook      ColumnsHook // nil для локального хранилища

	StoreKind   string // "local" | "pg"
	Brand       view.Branding
	Placeholder string
	Log         *zap.Logger
}

func (a *App) logger() *zap.Logger {
	if a.Log == nil {
		return zap.NewNop()
	}
	return a.Log
}

func (a *App) placeholder() string {
	if a.Placeholder == "" {
		return view.DefaultPlaceholder
	}
	return a.Placeholder
}

// ApplyColumns: мутация → проверка хранилищем → миграция → сохранение.
// Если что-то не прошло, конфигурация остаётся прежней.
func (a *App) ApplyColumns(ctx context.Context, mutate func(schema.ColumnConfig) (schema.ColumnConfig, error)) (schema.ColumnConfig, error) {
	return a.Settings.Apply(ctx, func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
		next, err := mutate(cur)
		if err != nil {
			return cur, err
		}
		// одни правила имён колонок для обоих хранилищ: конфигурацию можно
		// перенести с локального на Postgres без правок
		if err := pg.CheckConfig(next); err != nil {
			return cur, err
		}
		if a.Hook != nil {
			if err := a.Hook.Check(next); err != nil {
				return cur, err
			}
			if err := a.Hook.Sync(ctx, next); err != nil {
				return cur, err
			}
		}
		return next, nil
	})
}
