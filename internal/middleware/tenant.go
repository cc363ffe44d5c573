package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/tenant"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// Tenant requires a well-formed tenant identifier in header and stores it on the
// context for handlers and the access log.
func Tenant(header string) gin.HandlerFunc {
	if header == "" {
		header = tenant.DefaultHeader
	}
	return func(c *gin.Context) {
		tenantID, err := tenant.Parse(c.GetHeader(header))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		c.Set(logger.TenantContextKey, tenantID)
		c.Next()
	}
}
