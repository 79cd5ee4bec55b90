package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/degree-audit-api/internal/service"
)

// unmatchedRoute labels requests that hit no registered route so raw URLs
// never become label values.
const unmatchedRoute = "unmatched"

// Metrics records request duration and status for every routed request except
// the paths listed in skip, typically the scrape endpoint itself.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := skipped[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
