package models

import "github.com/golang-jwt/jwt/v5"

// UserRole names a caller role carried in access tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleScheduler  UserRole = "SCHEDULER"
	RoleViewer     UserRole = "VIEWER"
)

// JWTClaims represents the access-token payload issued by the identity provider.
// TenantID must match the tenant header of every request the token is used on.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	TenantID string   `json:"tenant_id"`
	Role     UserRole `json:"role"`
	jwt.RegisteredClaims
}
