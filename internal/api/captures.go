package api

import (
	"net/http"

	"cardscan/internal/capture"
	"cardscan/internal/form"
	"cardscan/internal/record"

	"github.com/gin-gonic/gin"
)

// POST /api/captures (multipart, поле "file")
func CaptureUploadHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Captures == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"errors": []FieldError{ferr("configuration", "", "Capture store not configured")}})
			return
		}
		file, hdr, err := c.Request.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr("validation", "file", "multipart file not found (field name 'file')")}})
			return
		}
		defer file.Close()

		mt := hdr.Header.Get("Content-Type")
		if mt == "" || mt == "application/octet-stream" {
			mt = "image/jpeg"
		}
		if !capture.Allowed(mt) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr("validation", "file", "Unsupported image type")}})
			return
		}
		cp, err := app.Captures.Put(file, mt)
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusCreated, cp)
	}
}

type extractResponse struct {
	Capture string        `json:"capture"`
	Record  record.Record `json:"record"`
	Form    form.View     `json:"form"`
}

// POST /api/captures/:key/extract: распознать (или повторить) тот же снимок.
func CaptureExtractHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Captures == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"errors": []FieldError{ferr("configuration", "", "Capture store not configured")}})
			return
		}
		key := c.Param("key")
		img, mt, err := app.Captures.Open(key)
		if err != nil {
			respondErr(c, app, err)
			return
		}
		cfg := app.Settings.Current()
		rec, err := app.Extractor.Extract(c.Request.Context(), img, mt, cfg)
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, extractResponse{Capture: key, Record: rec, Form: form.Render(rec, cfg, false)})
	}
}
