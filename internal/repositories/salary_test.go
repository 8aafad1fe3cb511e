package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"alfredoptarigan/job-companion/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestSalaryRepository_FindAll(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "work_year", "job_title", "company_location", "experience_level", "salary_in_usd"}).
		AddRow(1, "2023", "DS", "US", "EN", 100000.0).
		AddRow(2, "2023", "DS", "UK", "EN", 90000.0)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "salary_records" ORDER BY id ASC`)).WillReturnRows(rows)

	records, err := NewSalaryRepository(db).FindAll(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "DS", records[0].JobTitle)
	assert.Equal(t, "US", records[0].CompanyLocation)
	assert.Equal(t, 100000.0, records[0].SalaryInUSD)
	assert.Equal(t, "UK", records[1].CompanyLocation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepository_FindAllError(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT \* FROM "salary_records"`).WillReturnError(errors.New("connection reset"))

	_, err := NewSalaryRepository(db).FindAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to find salary records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepository_ReplaceAll(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "salary_records"`).WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery(`INSERT INTO "salary_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	err := NewSalaryRepository(db).ReplaceAll(context.Background(), []models.SalaryRecord{
		{JobTitle: "DS", CompanyLocation: "US", ExperienceLevel: "EN", SalaryInUSD: 100000},
		{JobTitle: "DS", CompanyLocation: "UK", ExperienceLevel: "EN", SalaryInUSD: 90000},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepository_ReplaceAllRollsBack(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "salary_records"`).WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := NewSalaryRepository(db).ReplaceAll(context.Background(), []models.SalaryRecord{{JobTitle: "DS"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear salary records")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSalaryRepository_Count(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "salary_records"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := NewSalaryRepository(db).Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
