package api

import (
	"net/http"

	"cardscan/internal/schema"
	"cardscan/internal/view"

	"github.com/gin-gonic/gin"
)

// ===== META =====

type metaResponse struct {
	Store       string   `json:"store"`
	Extraction  bool     `json:"extraction"`
	Sheets      bool     `json:"sheets"`
	Captures    bool     `json:"captures"`
	Reserved    []string `json:"reserved"`
	System      []string `json:"system"`
	Placeholder string   `json:"placeholder"`
	Columns     int      `json:"columns"`
	Visible     int      `json:"visible"`
}

// GET /api/meta: что включено в этой сборке (для клиента).
func MetaHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := app.Settings.Current()
		c.JSON(http.StatusOK, metaResponse{
			Store:       app.StoreKind,
			Extraction:  app.Extractor.Enabled(),
			Sheets:      app.Sheets.Enabled(),
			Captures:    app.Captures != nil,
			Reserved:    schema.Reserved,
			System:      []string{schema.KeyDateAdded, schema.KeyShortID},
			Placeholder: app.placeholder(),
			Columns:     len(cfg),
			Visible:     len(cfg.Visible()),
		})
	}
}

// GET /api/print/branding
func BrandingHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		b := app.Brand
		if len(b.Letterhead) == 0 && len(b.Footer) == 0 {
			b = view.DefaultBranding()
		}
		c.JSON(http.StatusOK, b)
	}
}

func HealthHandler() gin.HandlerFunc {
	return func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) }
}
