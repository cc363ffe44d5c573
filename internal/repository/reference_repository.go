package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type referenceTable struct {
	table string
	code  string
	label string
}

// Column names are fixed here and never taken from callers.
var referenceTables = map[models.ReferenceKind]referenceTable{
	models.ReferenceClass:        {table: "classes", code: "name", label: "name"},
	models.ReferenceTeacher:      {table: "teachers", code: "employee_id", label: "full_name"},
	models.ReferenceSubject:      {table: "subjects", code: "code", label: "name"},
	models.ReferenceRoom:         {table: "rooms", code: "name", label: "name"},
	models.ReferenceAcademicYear: {table: "academic_years", code: "name", label: "name"},
}

// ReferenceRepository resolves any referenceable entity by kind within a tenant.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository constructs a reference repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// Lookup loads the entity of the given kind. Rows owned by other tenants are
// indistinguishable from missing rows and yield sql.ErrNoRows.
func (r *ReferenceRepository) Lookup(ctx context.Context, kind models.ReferenceKind, tenantID, id string) (*models.ReferenceEntity, error) {
	desc, ok := referenceTables[kind]
	if !ok {
		return nil, fmt.Errorf("unknown reference kind %q", kind)
	}
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT id, tenant_id, %s AS code, %s AS label FROM %s WHERE id = $1 AND tenant_id = $2", desc.code, desc.label, desc.table)
	var row struct {
		ID       string `db:"id"`
		TenantID string `db:"tenant_id"`
		Code     string `db:"code"`
		Label    string `db:"label"`
	}
	if err := r.db.GetContext(ctx, &row, query, id, tenantID); err != nil {
		return nil, err
	}
	return &models.ReferenceEntity{Kind: kind, ID: row.ID, TenantID: row.TenantID, Code: row.Code, Label: row.Label}, nil
}

// validID reports whether id can name a stored row. Primary keys are UUIDs, so
// anything else is simply absent.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// validFilterIDs reports whether every non-empty id filter can match a row.
func validFilterIDs(ids ...string) bool {
	for _, id := range ids {
		if id != "" && !validID(id) {
			return false
		}
	}
	return true
}

func pageBounds(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return size, (page - 1) * size
}

func sortDirection(raw string) string {
	order := strings.ToUpper(raw)
	if order != "ASC" && order != "DESC" {
		return "ASC"
	}
	return order
}
