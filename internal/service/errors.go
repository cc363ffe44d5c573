package service

import (
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

// storageFailure wraps a repository error as the retryable storage kind, passing typed
// errors through untouched.
func storageFailure(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Storage(err, message)
}

// isMissing reports whether err means the row cannot exist: no match, or an id
// PostgreSQL refused to parse.
func isMissing(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || database.IsInvalidTextRepresentation(err)
}

// notFoundOr maps missing rows to NOT_FOUND and anything else to a storage failure.
func notFoundOr(err error, notFound, failure string) error {
	if isMissing(err) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return storageFailure(err, failure)
}

// validationFailure converts validator output into a VALIDATION_ERROR listing the
// offending fields.
func validationFailure(err error, message string) error {
	appErr := appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string]interface{}, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = fe.Tag()
		}
		appErr.Details = map[string]interface{}{"fields": fields}
	}
	return appErr
}

// pageMeta mirrors the repository's paging defaults for response metadata.
func pageMeta(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
