package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/repository"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

func TestDefaultData(t *testing.T) {
	data, err := Default()
	require.NoError(t, err)
	assert.Len(t, data.Students, 8)
	assert.Len(t, data.Courses, 7)
	assert.Len(t, data.Enrollments, 11)
	assert.Equal(t, "Olivetto", data.Students[7].LastName)
	assert.Equal(t, "2005-08-11", data.Students[7].EnrollmentDate)
	assert.Empty(t, data.Enrollments[6].Grade)
}

func TestLoaderIsIdempotent(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	loader := NewLoader(store, nil)
	ctx := context.Background()

	first, err := loader.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{StudentsInserted: 8, CoursesInserted: 7, EnrollmentsInserted: 11}, *first)

	second, err := loader.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{StudentsUpdated: 8, CoursesUpdated: 7, EnrollmentsSkipped: 11}, *second)

	students, err := store.Students().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 8)

	courses, err := store.Courses().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 7)

	enrollments, err := store.Enrollments().List(ctx, models.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Len(t, enrollments, 11)
}

func TestLoaderRefreshesExistingRows(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	ctx := context.Background()

	uow := store.Begin()
	uow.AddCourse(&models.Course{ID: 9000, Title: "Chemistry", Credits: 1})
	require.NoError(t, uow.SaveChanges(ctx))
	uow.Discard()

	_, err := NewLoader(store, nil).Run(ctx)
	require.NoError(t, err)

	chemistry, err := store.Courses().FindByTitle(ctx, "Chemistry")
	require.NoError(t, err)
	require.Len(t, chemistry, 1)
	assert.Equal(t, 9000, chemistry[0].ID)
	assert.Equal(t, 3, chemistry[0].Credits)

	enrollments, err := store.Enrollments().List(ctx, models.EnrollmentFilter{CourseID: 9000})
	require.NoError(t, err)
	assert.Len(t, enrollments, 3)
}

func TestLoaderDuplicateSeedKey(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	ctx := context.Background()

	uow := store.Begin()
	uow.AddStudent(&models.Student{LastName: "Li", FirstMidName: "Yan"})
	uow.AddStudent(&models.Student{LastName: "Li", FirstMidName: "Wei"})
	require.NoError(t, uow.SaveChanges(ctx))
	uow.Discard()

	_, err := NewLoader(store, nil).Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrDuplicateSeedKey))

	students, err := store.Students().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 2)
}

func TestLoaderSkipsRepeatedPairsInData(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	data := &Data{
		Students:    []StudentRow{{LastName: "Norman", FirstMidName: "Laura", EnrollmentDate: "2013-09-01"}},
		Courses:     []CourseRow{{CourseID: 2042, Title: "Literature", Credits: 4}},
		Enrollments: []EnrollmentRow{{Student: "Norman", Course: "Literature", Grade: "a"}, {Student: "Norman", Course: "Literature", Grade: "B"}},
	}

	report, err := NewLoader(store, nil).Load(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, report.EnrollmentsInserted)
	assert.Equal(t, 1, report.EnrollmentsSkipped)

	enrollments, err := store.Enrollments().List(context.Background(), models.EnrollmentFilter{})
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, models.GradeA, *enrollments[0].Grade)
}

func TestLoaderNotifiesStudentChanges(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	ctx := context.Background()
	calls := 0
	loader := NewLoader(store, nil).OnStudentsChanged(func(context.Context) { calls++ })

	_, err := loader.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = loader.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)

	_, err = loader.Load(ctx, &Data{Courses: []CourseRow{{CourseID: 5000, Title: "Astronomy", Credits: 2}}})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoaderDoesNotNotifyWhenStudentBatchFails(t *testing.T) {
	store := repository.NewMemoryStore(nil)
	ctx := context.Background()

	uow := store.Begin()
	uow.AddStudent(&models.Student{LastName: "Li", FirstMidName: "Yan"})
	uow.AddStudent(&models.Student{LastName: "Li", FirstMidName: "Wei"})
	require.NoError(t, uow.SaveChanges(ctx))
	uow.Discard()

	called := false
	_, err := NewLoader(store, nil).OnStudentsChanged(func(context.Context) { called = true }).Run(ctx)
	require.Error(t, err)
	assert.False(t, called)
}
