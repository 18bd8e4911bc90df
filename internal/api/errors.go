package api

import (
	"errors"
	"net/http"

	"cardscan/internal/apperr"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FieldError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Коды ошибок сверх apperr.Kind
const (
	ErrInvalidJSON = "invalid_json"
	ErrInternal    = "internal"
)

func ferr(code, field, msg string) FieldError {
	return FieldError{Code: code, Field: field, Message: msg}
}

func badJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{ferr(ErrInvalidJSON, "", "Invalid JSON")}})
}

// respondErr: класс ошибки → HTTP-статус и {"errors":[...]}; внутренние детали не уходят клиенту.
func respondErr(c *gin.Context, app *App, err error) {
	status := apperr.HTTPStatus(err)
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		app.logger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"errors": []FieldError{ferr(ErrInternal, "", "Internal server error")}})
		return
	}
	if status >= http.StatusInternalServerError {
		app.logger().Warn("request failed", zap.String("path", c.FullPath()), zap.String("kind", string(ae.Kind)), zap.Error(err))
	}
	c.JSON(status, gin.H{"errors": []FieldError{ferr(string(ae.Kind), ae.Field, apperr.Message(err))}})
}
