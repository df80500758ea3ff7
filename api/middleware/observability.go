package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
	"github.com/Annany2002/sql-sketcher-backend/internal/metrics"
)

var (
	customLog = logger.NewLogger()
)

// RequestLogger writes one access line per request through logrus.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := customLog.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		})
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request served")
		}
	}
}

// Metrics records request counts and latencies per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}

// Recovery turns panics into a 500 envelope.
func Recovery(exposeDetails bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		customLog.Errorf("Recovered from panic on %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		body := gin.H{"success": false, "error": MsgInternal}
		if exposeDetails {
			body["details"] = recovered
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// NoRoute answers unknown paths.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": MsgRouteNotFound})
}
