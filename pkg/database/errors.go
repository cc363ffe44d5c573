package database

import (
	"errors"

	"github.com/lib/pq"
)

const (
	uniqueViolation           pq.ErrorCode = "23505"
	exclusionViolation        pq.ErrorCode = "23P01"
	foreignKeyViolation       pq.ErrorCode = "23503"
	invalidTextRepresentation pq.ErrorCode = "22P02"
)

// IsUniqueViolation reports whether err carries a PostgreSQL unique_violation.
func IsUniqueViolation(err error) bool {
	return hasCode(err, uniqueViolation)
}

// IsExclusionViolation reports whether err carries a PostgreSQL exclusion_violation.
func IsExclusionViolation(err error) bool {
	return hasCode(err, exclusionViolation)
}

// IsForeignKeyViolation reports whether err carries a PostgreSQL foreign_key_violation.
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, foreignKeyViolation)
}

// IsInvalidTextRepresentation reports whether PostgreSQL rejected a literal, such as
// a malformed uuid.
func IsInvalidTextRepresentation(err error) bool {
	return hasCode(err, invalidTextRepresentation)
}

// ConstraintName returns the violated constraint, if any.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func hasCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code
	}
	return false
}
