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

const academicYearColumns = "id, tenant_id, name, start_date, end_date, is_active, status, created_at, updated_at"

// AcademicYearRepository handles persistence for academic years and their periods.
type AcademicYearRepository struct {
	db *sqlx.DB
}

// NewAcademicYearRepository instantiates an academic year repository.
func NewAcademicYearRepository(db *sqlx.DB) *AcademicYearRepository {
	return &AcademicYearRepository{db: db}
}

// List returns a tenant's academic years matching provided filters.
func (r *AcademicYearRepository) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	base := "FROM academic_years WHERE tenant_id = $1"
	args := []interface{}{filter.TenantID}

	if filter.Status != "" {
		base += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.IsActive != nil {
		base += fmt.Sprintf(" AND is_active = $%d", len(args)+1)
		args = append(args, *filter.IsActive)
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY start_date %s LIMIT %d OFFSET %d", academicYearColumns, base, order, size, offset)
	var years []models.AcademicYear
	if err := r.db.SelectContext(ctx, &years, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list academic years: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count academic years: %w", err)
	}

	if err := r.attachPeriods(ctx, years); err != nil {
		return nil, 0, err
	}
	return years, total, nil
}

// FindByID loads a tenant's academic year with its periods.
func (r *AcademicYearRepository) FindByID(ctx context.Context, tenantID, id string) (*models.AcademicYear, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	query := fmt.Sprintf("SELECT %s FROM academic_years WHERE id = $1 AND tenant_id = $2", academicYearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, id, tenantID); err != nil {
		return nil, err
	}
	years := []models.AcademicYear{year}
	if err := r.attachPeriods(ctx, years); err != nil {
		return nil, err
	}
	return &years[0], nil
}

// FindActive returns the tenant's active academic year.
func (r *AcademicYearRepository) FindActive(ctx context.Context, tenantID string) (*models.AcademicYear, error) {
	query := fmt.Sprintf("SELECT %s FROM academic_years WHERE tenant_id = $1 AND is_active = TRUE LIMIT 1", academicYearColumns)
	var year models.AcademicYear
	if err := r.db.GetContext(ctx, &year, query, tenantID); err != nil {
		return nil, err
	}
	years := []models.AcademicYear{year}
	if err := r.attachPeriods(ctx, years); err != nil {
		return nil, err
	}
	return &years[0], nil
}

// ExistsByName checks whether the tenant already has a year with that name.
func (r *AcademicYearRepository) ExistsByName(ctx context.Context, tenantID, name string) (bool, error) {
	const query = `SELECT 1 FROM academic_years WHERE tenant_id = $1 AND LOWER(name) = LOWER($2) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, tenantID, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check academic year name: %w", err)
	}
	return true, nil
}

// Create inserts the year and its periods in one transaction. When activate is set the
// tenant's other years are deactivated inside the same transaction first.
func (r *AcademicYearRepository) Create(ctx context.Context, year *models.AcademicYear, activate bool) (err error) {
	if year.ID == "" {
		year.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if year.CreatedAt.IsZero() {
		year.CreatedAt = now
	}
	year.UpdatedAt = now
	year.IsActive = activate

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create academic year tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if activate {
		if err = deactivateOthers(ctx, tx, year.TenantID, year.ID, now); err != nil {
			return err
		}
	}

	const insertYear = `INSERT INTO academic_years (id, tenant_id, name, start_date, end_date, is_active, status, created_at, updated_at) VALUES (:id, :tenant_id, :name, :start_date, :end_date, :is_active, :status, :created_at, :updated_at)`
	if _, err = sqlx.NamedExecContext(ctx, tx, insertYear, year); err != nil {
		return fmt.Errorf("create academic year: %w", err)
	}

	const insertPeriod = `INSERT INTO academic_periods (id, academic_year_id, name, start_date, end_date, sort_order, is_active) VALUES (:id, :academic_year_id, :name, :start_date, :end_date, :sort_order, :is_active)`
	for i := range year.Periods {
		period := &year.Periods[i]
		if period.ID == "" {
			period.ID = uuid.NewString()
		}
		period.AcademicYearID = year.ID
		if _, err = sqlx.NamedExecContext(ctx, tx, insertPeriod, period); err != nil {
			return fmt.Errorf("create academic period: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create academic year tx: %w", err)
	}
	return nil
}

// SetActive marks the year active and deactivates the tenant's others atomically.
// It returns sql.ErrNoRows when the year does not exist for the tenant.
func (r *AcademicYearRepository) SetActive(ctx context.Context, tenantID, id string) (err error) {
	if !validID(id) {
		return sql.ErrNoRows
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin set active tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	if err = deactivateOthers(ctx, tx, tenantID, id, now); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_active = TRUE, updated_at = $3 WHERE id = $1 AND tenant_id = $2`, id, tenantID, now)
	if err != nil {
		return fmt.Errorf("activate academic year: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("activate academic year rows: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit set active tx: %w", err)
	}
	return nil
}

// deactivateOthers serialises activations per tenant, then clears the active flag on
// every other year of the tenant.
func deactivateOthers(ctx context.Context, tx *sqlx.Tx, tenantID, keepID string, now time.Time) error {
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "academic_year_active|"+tenantID); err != nil {
		return fmt.Errorf("lock tenant academic years: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE academic_years SET is_active = FALSE, updated_at = $3 WHERE tenant_id = $1 AND is_active = TRUE AND id <> $2`, tenantID, keepID, now); err != nil {
		return fmt.Errorf("deactivate other academic years: %w", err)
	}
	return nil
}

// Archive retires a year, clearing its active flag.
func (r *AcademicYearRepository) Archive(ctx context.Context, tenantID, id string) error {
	if !validID(id) {
		return sql.ErrNoRows
	}
	res, err := r.db.ExecContext(ctx, `UPDATE academic_years SET status = $3, is_active = FALSE, updated_at = $4 WHERE id = $1 AND tenant_id = $2`, id, tenantID, models.AcademicYearStatusArchived, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archive academic year: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountReferences returns how many classes and bookings point at the year.
func (r *AcademicYearRepository) CountReferences(ctx context.Context, tenantID, id string) (int, error) {
	if !validID(id) {
		return 0, nil
	}
	const query = `SELECT (SELECT COUNT(*) FROM classes WHERE tenant_id = $1 AND academic_year_id = $2) + (SELECT COUNT(*) FROM bookings WHERE tenant_id = $1 AND academic_year_id = $2)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, tenantID, id); err != nil {
		return 0, fmt.Errorf("count academic year references: %w", err)
	}
	return count, nil
}

// Delete removes a year and, by cascade, its periods.
func (r *AcademicYearRepository) Delete(ctx context.Context, tenantID, id string) error {
	if !validID(id) {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM academic_years WHERE id = $1 AND tenant_id = $2`, id, tenantID); err != nil {
		return fmt.Errorf("delete academic year: %w", err)
	}
	return nil
}

func (r *AcademicYearRepository) attachPeriods(ctx context.Context, years []models.AcademicYear) error {
	if len(years) == 0 {
		return nil
	}
	ids := make([]string, len(years))
	index := make(map[string]int, len(years))
	for i, y := range years {
		ids[i] = y.ID
		index[y.ID] = i
		years[i].Periods = []models.Period{}
	}

	query, args, err := sqlx.In(`SELECT id, academic_year_id, name, start_date, end_date, sort_order, is_active FROM academic_periods WHERE academic_year_id IN (?) ORDER BY academic_year_id, sort_order`, ids)
	if err != nil {
		return fmt.Errorf("build academic periods query: %w", err)
	}
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list academic periods: %w", err)
	}
	for _, p := range periods {
		if i, ok := index[p.AcademicYearID]; ok {
			years[i].Periods = append(years[i].Periods, p)
		}
	}
	return nil
}
