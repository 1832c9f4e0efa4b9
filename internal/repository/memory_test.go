package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

func seedMemory(t *testing.T) (*MemoryStore, *models.Student, *models.Course) {
	t.Helper()
	store := NewMemoryStore(nil)
	student := &models.Student{LastName: "Alexander", FirstMidName: "Carson", EnrollmentDate: time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC)}
	course := &models.Course{ID: 1050, Title: "Chemistry", Credits: 3}

	uow := store.Begin()
	defer uow.Discard()
	uow.AddStudent(student)
	uow.AddCourse(course)
	require.NoError(t, uow.SaveChanges(context.Background()))
	return store, student, course
}

func TestMemoryStoreAssignsIDs(t *testing.T) {
	store, student, _ := seedMemory(t)
	assert.Equal(t, 1, student.ID)

	found, err := store.Students().FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Alexander", found.LastName)

	_, err = store.Students().FindByID(context.Background(), 2)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestMemoryStoreBatchIsAtomic(t *testing.T) {
	store, student, course := seedMemory(t)
	ctx := context.Background()

	second := &models.Student{LastName: "Alonso", FirstMidName: "Meredith"}
	uow := store.Begin()
	defer uow.Discard()
	uow.AddStudent(second)
	// course id already taken
	uow.AddCourse(&models.Course{ID: course.ID, Title: "Duplicate", Credits: 1})
	err := uow.SaveChanges(ctx)

	var commitErr *CommitError
	require.True(t, errors.As(err, &commitErr))
	assert.Equal(t, "insert course", commitErr.Op)
	assert.Equal(t, 0, second.ID)

	students, err := store.Students().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, student.ID, students[0].ID)
}

func TestMemoryStoreEnrollmentConstraints(t *testing.T) {
	store, student, course := seedMemory(t)
	ctx := context.Background()

	grade := models.GradeA
	uow := store.Begin()
	uow.AddEnrollment(&models.Enrollment{StudentID: student.ID, CourseID: course.ID, Grade: &grade})
	require.NoError(t, uow.SaveChanges(ctx))

	uow.AddEnrollment(&models.Enrollment{StudentID: student.ID, CourseID: course.ID})
	var commitErr *CommitError
	assert.True(t, errors.As(uow.SaveChanges(ctx), &commitErr))

	uow.AddEnrollment(&models.Enrollment{StudentID: 99, CourseID: course.ID})
	assert.True(t, errors.As(uow.SaveChanges(ctx), &commitErr))
	uow.Discard()

	exists, err := store.Enrollments().ExistsPair(ctx, student.ID, course.ID, 0)
	require.NoError(t, err)
	assert.True(t, exists)

	details, err := store.Enrollments().List(ctx, models.EnrollmentFilter{CourseID: course.ID})
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "Chemistry", details[0].CourseTitle)
	assert.Equal(t, "Carson", details[0].StudentFirstMidName)
}

func TestMemoryStoreRemoveCourseCascades(t *testing.T) {
	store, student, course := seedMemory(t)
	ctx := context.Background()

	uow := store.Begin()
	defer uow.Discard()
	uow.AddEnrollment(&models.Enrollment{StudentID: student.ID, CourseID: course.ID})
	require.NoError(t, uow.SaveChanges(ctx))

	uow.RemoveCourse(course.ID)
	require.NoError(t, uow.SaveChanges(ctx))

	details, err := store.Enrollments().List(ctx, models.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestMemoryStoreUpdateMissingRow(t *testing.T) {
	store := NewMemoryStore(nil)
	uow := store.Begin()
	defer uow.Discard()

	uow.UpdateStudent(&models.Student{ID: 7, LastName: "Nobody"})
	assert.ErrorIs(t, uow.SaveChanges(context.Background()), ErrRowNotFound)

	uow.RemoveEnrollment(3)
	assert.ErrorIs(t, uow.SaveChanges(context.Background()), ErrRowNotFound)
}
