package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const classColumns = "id, tenant_id, name, level, capacity, academic_year_id, main_teacher_id, created_at, updated_at"

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns a tenant's classes matching filter criteria.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	if !validFilterIDs(filter.AcademicYearID) {
		return []models.Class{}, 0, nil
	}
	base := "FROM classes WHERE tenant_id = $1"
	args := []interface{}{filter.TenantID}
	var conditions []string

	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d)", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"level":      true,
		"created_at": true,
		"updated_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := sortDirection(filter.SortOrder)
	limit, offset := pageBounds(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", classColumns, base, sortBy, order, limit, offset)
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID returns a tenant's class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, tenantID, id string) (*models.Class, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM classes WHERE id = $1 AND tenant_id = $2", classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id, tenantID); err != nil {
		return nil, err
	}
	return &class, nil
}

// ExistsByName checks if the year already has a class with the same name.
func (r *ClassRepository) ExistsByName(ctx context.Context, tenantID, academicYearID, name string) (bool, error) {
	const query = `SELECT 1 FROM classes WHERE tenant_id = $1 AND academic_year_id = $2 AND LOWER(name) = LOWER($3) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tenantID, academicYearID, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check class name: %w", err)
	}
	return true, nil
}

// Create persists a class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, tenant_id, name, level, capacity, academic_year_id, main_teacher_id, created_at, updated_at) VALUES (:id, :tenant_id, :name, :level, :capacity, :academic_year_id, :main_teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}
