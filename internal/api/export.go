package api

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"cardscan/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"go.uber.org/zap"
)

// GET /api/records/:id/print: печатная страница одной записи.
func PrintHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := app.Records.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, app, err)
			return
		}
		p := view.RenderPrintable(rec, app.Settings.Current())
		c.Render(http.StatusOK, render.HTML{
			Template: view.PrintTemplate(),
			Name:     "print",
			Data: view.PrintData{
				Pages:     []view.Printable{p},
				Brand:     app.Brand,
				AutoPrint: c.Query("autoprint") != "",
			},
		})
	}
}

// GET /api/export.pdf: все записи, одна страница на запись.
func ExportPDFHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := app.Records.List(c.Request.Context())
		if err != nil {
			respondErr(c, app, err)
			return
		}
		var buf bytes.Buffer
		if err := view.WritePDF(&buf, view.RenderExportBatch(all, app.Settings.Current()), app.Brand); err != nil {
			respondErr(c, app, err)
			return
		}
		name := fmt.Sprintf("contacts-%s.pdf", time.Now().UTC().Format("20060102"))
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/pdf", buf.Bytes())
	}
}

// POST /api/records/:id/_sheet: дописать запись в Google Sheets.
func SheetAppendHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rec, err := app.Records.Get(ctx, c.Param("id"))
		if err != nil {
			respondErr(c, app, err)
			return
		}
		id, err := app.Sheets.Append(ctx, rec, app.Settings.Current())
		if err != nil {
			respondErr(c, app, err)
			return
		}
		app.logger().Debug("sheet append", zap.String("record", rec.ID))
		c.JSON(http.StatusOK, gin.H{"spreadsheetId": id, "message": "Saved!"})
	}
}
