package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestViolationHelpers(t *testing.T) {
	unique := fmt.Errorf("create class: %w", &pq.Error{Code: "23505", Constraint: "classes_tenant_year_name_uq"})
	overlap := fmt.Errorf("create booking: %w", &pq.Error{Code: "23P01", Constraint: "bookings_teacher_no_overlap"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsExclusionViolation(unique))
	assert.True(t, IsExclusionViolation(overlap))
	assert.Equal(t, "bookings_teacher_no_overlap", ConstraintName(overlap))

	plain := errors.New("boom")
	assert.False(t, IsUniqueViolation(plain))
	assert.Equal(t, "", ConstraintName(plain))
}

func TestForeignKeyAndMalformedInputHelpers(t *testing.T) {
	fk := fmt.Errorf("delete academic year: %w", &pq.Error{Code: "23503", Constraint: "classes_academic_year_id_fkey"})
	malformed := fmt.Errorf("find booking: %w", &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "lesson-42"`})

	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsInvalidTextRepresentation(fk))
	assert.True(t, IsInvalidTextRepresentation(malformed))
	assert.False(t, IsForeignKeyViolation(malformed))
	assert.False(t, IsInvalidTextRepresentation(errors.New("boom")))
}
