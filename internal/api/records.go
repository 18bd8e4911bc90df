package api

import (
	"net/http"

	"cardscan/internal/form"
	"cardscan/internal/record"
	"cardscan/internal/view"

	"github.com/gin-gonic/gin"
)

type tableResponse struct {
	view.Table
	Total int `json:"total"`
}

// GET /api/records: табличное представление по видимым колонкам.
func RecordsTableHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := app.Records.List(c.Request.Context())
		if err != nil {
			respondErr(c, app, err)
			return
		}
		lp := parseListParams(c.Request.URL.Query())

		filtered := all[:0:0]
		for _, r := range all {
			if matchQ(r, lp.Q) {
				filtered = append(filtered, r)
			}
		}
		sortRecords(filtered, lp.Sort)

		ph := app.placeholder()
		if lp.Placeholder != nil {
			ph = *lp.Placeholder
		}
		tbl := view.RenderTable(page(filtered, lp.Offset, lp.Limit), app.Settings.Current(), ph)
		c.JSON(http.StatusOK, tableResponse{Table: tbl, Total: len(filtered)})
	}
}

// GET /api/records/:id: запись как есть (плоский JSON).
func RecordGetHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := app.Records.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

type saveReq struct {
	// Token: идентификатор открытой формы (защита от двойной отправки)
	Token string `json:"token"`
	// Original: запись, из которой открыта форма (результат распознавания)
	Original *record.Record   `json:"original"`
	Fields   map[string]string `json:"fields"`
}

// POST /api/records: сохранение формы в режиме создания.
func RecordCreateHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c)
			return
		}
		orig := record.New(nil)
		if req.Original != nil {
			orig = *req.Original
		}
		res, err := app.Submitter.Submit(c.Request.Context(), form.Submission{
			Token:    req.Token,
			Original: orig,
			Edited:   req.Fields,
			Config:   app.Settings.Current(),
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// PUT /api/records/:id: сохранение формы в режиме редактирования.
func RecordUpdateHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req saveReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c)
			return
		}
		ctx := c.Request.Context()
		orig, err := app.Records.Get(ctx, c.Param("id"))
		if err != nil {
			respondErr(c, app, err)
			return
		}
		res, err := app.Submitter.Submit(ctx, form.Submission{
			Token:    req.Token,
			Original: orig,
			Edited:   req.Fields,
			Editing:  true,
			Config:   app.Settings.Current(),
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// DELETE /api/records/:id
func RecordDeleteHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Records.Delete(c.Request.Context(), c.Param("id")); err != nil {
			respondErr(c, app, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// DELETE /api/records: очистить всё.
func RecordsClearHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Records.Clear(c.Request.Context()); err != nil {
			respondErr(c, app, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// GET /api/form, GET /api/form/:id
func FormHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := app.Settings.Current()
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusOK, form.Render(record.New(nil), cfg, false))
			return
		}
		rec, err := app.Records.Get(c.Request.Context(), id)
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, form.Render(rec, cfg, true))
	}
}
