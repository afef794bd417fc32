package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"crime-dashboard/internal/metrics"
)

// Metrics records every request under its route template, so /records/*ro
// stays a single series.
func Metrics(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordAPIRequest(route, c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(started))
	}
}
