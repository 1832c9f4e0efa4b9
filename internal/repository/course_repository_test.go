package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCourseRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT course_id, title, credits FROM course WHERE course_id = $1")).
		WithArgs(1050).
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "title", "credits"}).AddRow(1050, "Chemistry", 3))

	course, err := repo.FindByID(context.Background(), 1050)
	require.NoError(t, err)
	assert.Equal(t, "Chemistry", course.Title)
	assert.Equal(t, 3, course.Credits)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListAllError(t *testing.T) {
	db, mock, cleanup := newSQLMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM course ORDER BY course_id")).
		WillReturnError(errors.New("connection refused"))

	courses, err := repo.ListAll(context.Background())
	assert.Nil(t, courses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list courses")
	assert.NoError(t, mock.ExpectationsWereMet())
}
