package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/wellcheck/utils"
)

// RequestMetrics counts every request by route template and status class.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		utils.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}
