package api

import (
	"time"

	"cardscan/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog: gin.Logger, только через zap.
func AccessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("size", c.Writer.Size()),
			zap.String("ip", c.ClientIP()),
			logging.Since(start),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch s := c.Writer.Status(); {
		case s >= 500:
			log.Error("http", fields...)
		case s >= 400:
			log.Warn("http", fields...)
		default:
			log.Info("http", fields...)
		}
	}
}

// Recovery: паника → 500 и запись в лог.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic", zap.Any("recovered", rec), zap.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(500, gin.H{"errors": []FieldError{ferr(ErrInternal, "", "Internal server error")}})
	})
}
