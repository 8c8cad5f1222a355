// Package middleware provides the gin middleware stack for the API.
package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/macroquant/btcmacro/pkg/log"
)

// Recovery converts panics anywhere in a handler into an INTERNAL_ERROR
// response carrying the full diagnostic trace. The process keeps serving;
// no interaction can take it down.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.GetLoggerWithName("api").Error("Recovered from panic",
			"panic", fmt.Sprintf("%v", recovered),
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": fmt.Sprintf("an unexpected error occurred: %v", recovered),
				"trace":   string(debug.Stack()),
			},
		})
		c.Abort()
	})
}

// Logger logs one structured line per request.
func Logger() gin.HandlerFunc {
	logger := log.GetLoggerWithName("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
}

// CORS allows the page to be served from a different origin during
// development.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
