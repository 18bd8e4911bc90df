package api

import (
	"net/http"

	"cardscan/internal/schema"

	"github.com/gin-gonic/gin"
)

// GET /api/columns
func ColumnsGetHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, app.Settings.Current())
	}
}

// PUT /api/columns: весь список целиком (экран настроек).
func ColumnsReplaceHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var next schema.ColumnConfig
		if err := c.ShouldBindJSON(&next); err != nil {
			badJSON(c)
			return
		}
		cfg, err := app.ApplyColumns(c.Request.Context(), func(schema.ColumnConfig) (schema.ColumnConfig, error) {
			if err := next.Validate(); err != nil {
				return nil, err
			}
			return next, nil
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

type addColumnReq struct {
	Header string `json:"header"`
}

// POST /api/columns {"header":"Job Title"}
func ColumnsAddHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addColumnReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c)
			return
		}
		var added schema.FieldDefinition
		cfg, err := app.ApplyColumns(c.Request.Context(), func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			next, f, err := cur.Add(req.Header)
			added = f
			return next, err
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"field": added, "columns": cfg})
	}
}

type patchColumnReq struct {
	Header  *string `json:"header"`
	Visible *bool   `json:"visible"`
}

// PATCH /api/columns/:key {"header":"...","visible":false}
func ColumnsPatchHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		var req patchColumnReq
		if err := c.ShouldBindJSON(&req); err != nil {
			badJSON(c)
			return
		}
		if req.Header == nil && req.Visible == nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr("validation", key, "Nothing to change")}})
			return
		}
		cfg, err := app.ApplyColumns(c.Request.Context(), func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			next := cur
			var err error
			if req.Header != nil {
				if next, err = next.Relabel(key, *req.Header); err != nil {
					return cur, err
				}
			}
			if req.Visible != nil {
				if next, err = next.SetVisible(key, *req.Visible); err != nil {
					return cur, err
				}
			}
			return next, nil
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

// DELETE /api/columns/:key: значения в записях остаются.
func ColumnsDeleteHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		cfg, err := app.ApplyColumns(c.Request.Context(), func(cur schema.ColumnConfig) (schema.ColumnConfig, error) {
			return cur.Remove(key)
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}

// POST /api/columns/_reset
func ColumnsResetHandler(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg, err := app.ApplyColumns(c.Request.Context(), func(schema.ColumnConfig) (schema.ColumnConfig, error) {
			return app.Settings.Defaults(), nil
		})
		if err != nil {
			respondErr(c, app, err)
			return
		}
		c.JSON(http.StatusOK, cfg)
	}
}
