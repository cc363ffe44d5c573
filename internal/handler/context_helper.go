package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

func tenantFromContext(c *gin.Context) string {
	return c.GetString(logger.TenantContextKey)
}

const defaultPageSize = 20

// pageParams reads page and limit; malformed values fall back to page 1 and fallbackSize.
func pageParams(c *gin.Context, fallbackSize int) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	size := fallbackSize
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			size = parsed
		}
	}
	return page, size
}
