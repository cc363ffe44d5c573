// Package tenant validates the opaque tenant identifier that scopes every operation.
// It performs format validation only; proving the caller belongs to the tenant is
// the job of the authentication layer in front of the API.
package tenant

import (
	"regexp"
	"strings"

	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// DefaultHeader is the request header carrying the tenant identifier.
const DefaultHeader = "X-Tenant-ID"

const maxLength = 64

var pattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]*$`)

// Parse trims and validates a raw tenant identifier.
func Parse(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", appErrors.Clone(appErrors.ErrInvalidTenant, "tenant identifier is required")
	}
	if len(id) > maxLength || !pattern.MatchString(id) {
		return "", appErrors.Clone(appErrors.ErrInvalidTenant, "tenant identifier is malformed")
	}
	return id, nil
}

// Validate checks an identifier that has already been extracted, for use at service boundaries.
func Validate(id string) error {
	_, err := Parse(id)
	if err != nil {
		return err
	}
	if id != strings.TrimSpace(id) {
		return appErrors.Clone(appErrors.ErrInvalidTenant, "tenant identifier is malformed")
	}
	return nil
}
