package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/metrics"
)

// Metrics records one counter increment per handled request, labelled by the
// route template rather than the raw path so ids don't explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequest(c.Request.Method, route, strconv.Itoa(c.Writer.Status()))
	}
}
