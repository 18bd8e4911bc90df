package main

import (
	"context"
	"database/sql"
	"fmt"

	"cardscan/internal/api"
	"cardscan/internal/capture"
	"cardscan/internal/config"
	"cardscan/internal/extract"
	"cardscan/internal/form"
	"cardscan/internal/kv"
	"cardscan/internal/pg"
	"cardscan/internal/record"
	"cardscan/internal/schema"
	"cardscan/internal/settings"
	"cardscan/internal/sheets"
	"cardscan/internal/shortid"
	"cardscan/internal/view"

	"go.uber.org/zap"
)

// buildApp собирает зависимости по конфигурации. closeFn закрывает базы.
func buildApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*api.App, func(), error) {
	var closers []func()
	closeFn := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*api.App, func(), error) {
		closeFn()
		return nil, func() {}, err
	}

	// настройки колонок всегда локальные
	store, err := kv.Open(cfg.LocalPath)
	if err != nil {
		return fail(err)
	}
	closers = append(closers, func() { _ = store.Close() })

	defaults := schema.Default()
	if cfg.ColumnsFile != "" {
		if defaults, err = schema.LoadSeed(cfg.ColumnsFile); err != nil {
			return fail(err)
		}
	}
	st := settings.New(store, defaults, log.Named("settings"))
	current := st.Load(ctx)

	app := &api.App{
		Settings:    st,
		StoreKind:   cfg.Store,
		Placeholder: cfg.Placeholder,
		Log:         log,
		Brand:       view.DefaultBranding(),
	}
	if lines := config.Lines(cfg.Letterhead); len(lines) > 0 {
		app.Brand.Letterhead = lines
	}
	if lines := config.Lines(cfg.Footer); len(lines) > 0 {
		app.Brand.Footer = lines
	}

	switch cfg.Store {
	case "pg":
		var db *sql.DB
		if db, err = pg.Open(ctx, cfg.DBURL, pg.DefaultPool()); err != nil {
			return fail(err)
		}
		closers = append(closers, func() { _ = db.Close() })
		repo := pg.NewRepo(db, st, cfg.AutoMigrate, log.Named("pg"))
		if cfg.AutoMigrate {
			if err := repo.Migrate(ctx, current); err != nil {
				return fail(err)
			}
		} else if err := repo.Check(current); err != nil {
			return fail(err)
		}
		app.Records = repo
		app.Hook = repo
	default:
		repo, err := record.NewLocal(ctx, store, log.Named("records"))
		if err != nil {
			return fail(err)
		}
		app.Records = repo
	}

	app.Submitter = form.NewSubmitter(app.Records, shortid.New(app.Records), log.Named("form"))

	if app.Extractor, err = extract.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, log.Named("extract")); err != nil {
		return fail(fmt.Errorf("gemini: %w", err))
	}
	if app.Sheets, err = sheets.NewFromCredentials(ctx, cfg.SheetsCredentialsFile, cfg.SheetsName, cfg.SheetsTab, log.Named("sheets")); err != nil {
		return fail(err)
	}
	app.Captures = capture.NewLocal(cfg.CapturesRoot)

	log.Info("app ready",
		zap.String("store", cfg.Store),
		zap.Int("columns", len(current)),
		zap.Bool("extraction", app.Extractor.Enabled()),
		zap.Bool("sheets", app.Sheets.Enabled()),
	)
	return app, closeFn, nil
}
