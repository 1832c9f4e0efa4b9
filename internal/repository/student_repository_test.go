package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "last_name", "first_mid_name", "enrollment_date"}).
		AddRow(1, "Alexander", "Carson", time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC)).
		AddRow(2, "Alonso", "Meredith", time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id, last_name, first_mid_name, enrollment_date FROM student ORDER BY student_id")).
		WillReturnRows(rows)

	students, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "Alexander", students[0].LastName)
	assert.Equal(t, 2, students[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM student WHERE student_id = $1")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "last_name", "first_mid_name", "enrollment_date"}))

	student, err := repo.FindByID(context.Background(), 42)
	assert.Nil(t, student)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByLastName(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "last_name", "first_mid_name", "enrollment_date"}).
		AddRow(5, "Li", "Yan", time.Date(2012, 9, 1, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE last_name = $1 ORDER BY student_id")).
		WithArgs("Li").
		WillReturnRows(rows)

	students, err := repo.FindByLastName(context.Background(), "Li")
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "Yan", students[0].FirstMidName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
