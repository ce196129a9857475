package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/stock-simulator/internal/domain/port/core"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/stock-simulator/internal/infrastructure/adapter/api/view"
)

// Recovery turns a panic into a 500 apology without leaking its detail
func Recovery(logger coreport.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				coreport.LoggerFromContext(c.Request.Context(), logger).Error("Panic recovered in request", map[string]any{
					"error":     fmt.Sprint(recovered),
					"client_ip": c.ClientIP(),
					"stack":     string(debug.Stack()),
				})

				c.Abort()
				c.HTML(http.StatusInternalServerError, view.Apology, dto.ApologyPage{
					Page:    dto.Page{Title: "Apology"},
					Code:    http.StatusInternalServerError,
					Message: "internal server error",
				})
			}
		}()

		c.Next()
	}
}
