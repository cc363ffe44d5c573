package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreOrderedGooseFiles(t *testing.T) {
	files, err := fs.Glob(FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, name := range files {
		raw, err := fs.ReadFile(FS, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), "-- +goose Up"), name)
		assert.Contains(t, string(raw), "-- +goose Down", name)
	}
}

func TestNameIndexesMatchCaseInsensitiveChecks(t *testing.T) {
	raw, err := fs.ReadFile(FS, "00003_case_insensitive_names.sql")
	require.NoError(t, err)
	up := strings.SplitN(string(raw), "-- +goose Down", 2)[0]

	for _, index := range []string{
		"academic_years_tenant_name_uq ON academic_years (tenant_id, LOWER(name))",
		"rooms_tenant_name_uq ON rooms (tenant_id, LOWER(name))",
		"subjects_tenant_code_uq ON subjects (tenant_id, LOWER(code))",
		"classes_tenant_year_name_uq ON classes (tenant_id, academic_year_id, LOWER(name))",
	} {
		assert.Contains(t, up, "CREATE UNIQUE INDEX "+index)
	}
}
