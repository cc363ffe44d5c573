package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestTeacherRepositoryListIsTenantScoped(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "employee_id", "full_name", "active", "created_at", "updated_at"}).
		AddRow("t1", "school-a", "EMP-1", "Siti Rahma", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, tenant_id, employee_id, full_name, active, created_at, updated_at FROM teachers WHERE tenant_id = $1 AND (LOWER(full_name) LIKE $2 OR LOWER(employee_id) LIKE $2) ORDER BY full_name ASC LIMIT 20 OFFSET 0")).
		WithArgs("school-a", "%siti%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM teachers WHERE tenant_id = $1")).
		WithArgs("school-a", "%siti%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ReferenceFilter{TenantID: "school-a", Search: "Siti"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "EMP-1", list[0].EmployeeID)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryCreateAndExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectExec("INSERT INTO teachers").
		WithArgs(sqlmock.AnyArg(), "school-a", "EMP-1", "Siti Rahma", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	teacher := &models.Teacher{TenantID: "school-a", EmployeeID: "EMP-1", FullName: "Siti Rahma", Active: true}
	require.NoError(t, repo.Create(context.Background(), teacher))
	assert.NotEmpty(t, teacher.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE tenant_id = $1 AND employee_id = $2 LIMIT 1")).
		WithArgs("school-a", "EMP-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	exists, err := repo.ExistsByEmployeeID(context.Background(), "school-a", "EMP-1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE tenant_id = $1 AND employee_id = $2 LIMIT 1")).
		WithArgs("school-b", "EMP-1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	exists, err = repo.ExistsByEmployeeID(context.Background(), "school-b", "EMP-1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryExistsByCodeIgnoresCase(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM subjects WHERE tenant_id = $1 AND LOWER(code) = LOWER($2) LIMIT 1")).
		WithArgs("school-a", "math").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "school-a", "math")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectExec("INSERT INTO rooms").
		WithArgs(sqlmock.AnyArg(), "school-a", "Lab 1", 30, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	room := &models.Room{TenantID: "school-a", Name: "Lab 1", Capacity: 30}
	require.NoError(t, repo.Create(context.Background(), room))
	assert.NotEmpty(t, room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
