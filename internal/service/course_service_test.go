package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contoso-university-api/internal/models"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

func TestCourseServiceCreate(t *testing.T) {
	store := newSchool(t)
	svc := NewCourseService(store.Courses(), store, nil, nil, nil)
	ctx := context.Background()

	course, err := svc.Create(ctx, CreateCourseInput{CourseID: 1045, Title: "Calculus", Credits: 4})
	require.NoError(t, err)
	assert.Equal(t, 1045, course.ID)

	_, err = svc.Create(ctx, CreateCourseInput{CourseID: 1050, Title: "Chemistry II", Credits: 3})
	requireCode(t, err, appErrors.ErrConflict)

	_, err = svc.Create(ctx, CreateCourseInput{CourseID: 0, Title: "", Credits: 6})
	appErr := requireCode(t, err, appErrors.ErrValidation)
	assert.Len(t, appErr.Fields, 3)

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, courses, 3)
	assert.Equal(t, 1045, courses[0].ID)
}

func TestCourseServiceUpdate(t *testing.T) {
	store := newSchool(t)
	svc := NewCourseService(store.Courses(), store, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, 1050, EditCourseInput{Title: "General Chemistry", Credits: 4})
	require.NoError(t, err)
	course, err := svc.Get(ctx, 1050)
	require.NoError(t, err)
	assert.Equal(t, models.Course{ID: 1050, Title: "General Chemistry", Credits: 4}, *course)

	_, err = svc.Update(ctx, 9999, EditCourseInput{Title: "Nothing", Credits: 1})
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceDeleteRemovesEnrollments(t *testing.T) {
	store := newSchool(t)
	svc := NewCourseService(store.Courses(), store, nil, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, 1050))

	enrollments, err := store.Enrollments().List(ctx, models.EnrollmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	_, _, err = svc.DeleteConfirmation(ctx, 1050, false)
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestCourseServiceDeleteCommitFailure(t *testing.T) {
	store := newSchool(t)
	svc := NewCourseService(store.Courses(), failingStore{inner: store}, nil, nil, nil)

	requireCode(t, svc.Delete(context.Background(), 1050), appErrors.ErrDeleteFailed)
	_, err := svc.Get(context.Background(), 1050)
	assert.NoError(t, err)
}
