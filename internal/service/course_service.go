package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/models"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

type courseReader interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
}

// CreateCourseInput lists the fields a client may set when creating a course.
// The course number is chosen by the caller.
type CreateCourseInput struct {
	CourseID int    `json:"course_id" validate:"gt=0"`
	Title    string `json:"title" validate:"required,max=50"`
	Credits  int    `json:"credits" validate:"min=0,max=5"`
}

// EditCourseInput lists the fields a client may change on a course.
type EditCourseInput struct {
	Title   string `json:"title" validate:"required,max=50"`
	Credits int    `json:"credits" validate:"min=0,max=5"`
}

// CourseService handles course use-cases.
type CourseService struct {
	courses   courseReader
	store     unitOfWorkFactory
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs the course service.
func NewCourseService(courses courseReader, store unitOfWorkFactory, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, store: store, metrics: metrics, validator: newSchoolValidator(validate), logger: logger}
}

// List returns every course ordered by number.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by number.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a course under the caller supplied number.
func (s *CourseService) Create(ctx context.Context, input CreateCourseInput) (*models.Course, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(s.validator, input, "course"); err != nil {
		return nil, err
	}
	if _, err := s.courses.FindByID(ctx, input.CourseID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course number already used")
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate course number")
	}

	course := &models.Course{ID: input.CourseID, Title: input.Title, Credits: input.Credits}
	uow := s.store.Begin()
	defer uow.Discard()
	uow.AddCourse(course)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "course not found", appErrors.ErrSaveFailed, "create course")
	}
	return course, nil
}

// Update overwrites the title and credits of course id.
func (s *CourseService) Update(ctx context.Context, id int, input EditCourseInput) (*models.Course, error) {
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(s.validator, input, "course"); err != nil {
		return nil, err
	}
	course := &models.Course{ID: id, Title: input.Title, Credits: input.Credits}
	uow := s.store.Begin()
	defer uow.Discard()
	uow.UpdateCourse(course)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "course not found", appErrors.ErrSaveFailed, "update course")
	}
	return course, nil
}

// DeleteConfirmation loads the course shown before deletion.
func (s *CourseService) DeleteConfirmation(ctx context.Context, id int, saveChangesError bool) (*models.Course, string, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return course, DeleteErrorMessage(saveChangesError), nil
}

// Delete removes the course and its enrollments.
func (s *CourseService) Delete(ctx context.Context, id int) error {
	uow := s.store.Begin()
	defer uow.Discard()
	uow.RemoveCourse(id)
	if err := uow.SaveChanges(ctx); err != nil {
		return saveError(s.logger, s.metrics, err, "course not found", appErrors.ErrDeleteFailed, "delete course")
	}
	return nil
}
