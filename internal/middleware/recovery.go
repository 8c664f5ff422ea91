package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/catalog/internal/pkg"
)

// Recovery returns a gin middleware that recovers from panics, logs the panic
// value with its stack, and answers 500 {"message": "internal server error"}.
// It replaces gin.Recovery() so the failure goes through the structured logger.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}

	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.ErrorContext(c.Request.Context(), "panic recovered",
					slog.Any("panic", err),
					slog.String("method", c.Request.Method),
					slog.String("path", c.Request.URL.Path),
					slog.String("stack", string(debug.Stack())),
				)

				c.Abort()
				if c.Writer.Written() {
					return
				}
				pkg.Message(c, http.StatusInternalServerError, "internal server error")
			}
		}()
		c.Next()
	}
}
