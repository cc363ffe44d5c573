package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

// AuthHandler reports what the bearer token in front of the tenant header resolved to.
type AuthHandler struct{}

// NewAuthHandler creates a new handler.
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// Me godoc
// @Summary Current token claims
// @Description Returns the user, tenant and role carried by the bearer token.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Param X-Tenant-ID header string true "Tenant identifier"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	value, ok := c.Get(middleware.ContextUserKey)
	claims, _ := value.(*models.JWTClaims)
	if !ok || claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"user_id":   claims.UserID,
		"tenant_id": claims.TenantID,
		"role":      claims.Role,
	}, nil)
}
