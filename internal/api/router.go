// api/router.go
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func NewRouter(app *App) *gin.Engine {
	log := app.logger()
	r := gin.New()
	r.Use(Recovery(log), AccessLog(log))

	r.GET("/healthz", HealthHandler())

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/meta", MetaHandler(app))
		apiGroup.GET("/print/branding", BrandingHandler(app))

		// настройки колонок, служебные маршруты СНАЧАЛА
		apiGroup.POST("/columns/_reset", ColumnsResetHandler(app))
		apiGroup.GET("/columns", ColumnsGetHandler(app))
		apiGroup.PUT("/columns", ColumnsReplaceHandler(app))
		apiGroup.POST("/columns", ColumnsAddHandler(app))
		apiGroup.PATCH("/columns/:key", ColumnsPatchHandler(app))
		apiGroup.DELETE("/columns/:key", ColumnsDeleteHandler(app))

		// снимки и распознавание
		apiGroup.POST("/captures", CaptureUploadHandler(app))
		apiGroup.POST("/captures/:key/extract", CaptureExtractHandler(app))

		// форма
		apiGroup.GET("/form", FormHandler(app))
		apiGroup.GET("/form/:id", FormHandler(app))

		// выгрузки
		apiGroup.GET("/export.pdf", ExportPDFHandler(app))
		apiGroup.GET("/records/:id/print", PrintHandler(app))
		apiGroup.POST("/records/:id/_sheet", SheetAppendHandler(app))

		// обычные CRUD
		apiGroup.GET("/records", RecordsTableHandler(app))
		apiGroup.POST("/records", RecordCreateHandler(app))
		apiGroup.DELETE("/records", RecordsClearHandler(app))
		apiGroup.GET("/records/:id", RecordGetHandler(app))
		apiGroup.PUT("/records/:id", RecordUpdateHandler(app))
		apiGroup.DELETE("/records/:id", RecordDeleteHandler(app))
	}
	return r
}

// Run поднимает HTTP-сервер и гасит его по отмене ctx.
func Run(ctx context.Context, addr string, app *App) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		app.logger().Info("listening", zap.String("addr", addr), zap.String("store", app.StoreKind))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app.logger().Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
