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

type enrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id int) (*models.EnrollmentDetail, error)
	ExistsPair(ctx context.Context, studentID, courseID, excludeID int) (bool, error)
}

// CreateEnrollmentInput lists the fields a client may set on an enrollment. An
// empty grade means not yet graded.
type CreateEnrollmentInput struct {
	StudentID int    `json:"student_id" validate:"gt=0"`
	CourseID  int    `json:"course_id" validate:"gt=0"`
	Grade     string `json:"grade" validate:"omitempty,oneof=A B C D F"`
}

// EditEnrollmentInput lists the fields a client may change on an enrollment.
type EditEnrollmentInput struct {
	StudentID int    `json:"student_id" validate:"gt=0"`
	CourseID  int    `json:"course_id" validate:"gt=0"`
	Grade     string `json:"grade" validate:"omitempty,oneof=A B C D F"`
}

// EnrollmentService handles enrollment use-cases.
type EnrollmentService struct {
	enrollments enrollmentReader
	students    studentReader
	courses     courseReader
	store       unitOfWorkFactory
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentService constructs the enrollment service.
func NewEnrollmentService(enrollments enrollmentReader, students studentReader, courses courseReader, store unitOfWorkFactory, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		enrollments: enrollments,
		students:    students,
		courses:     courses,
		store:       store,
		metrics:     metrics,
		validator:   newSchoolValidator(validate),
		logger:      logger,
	}
}

// List returns enrollments matching filter.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	enrollments, err := s.enrollments.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}
	return enrollments, nil
}

// ListByStudent returns the enrollments of an existing student.
func (s *EnrollmentService) ListByStudent(ctx context.Context, studentID int) ([]models.EnrollmentDetail, error) {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	return s.List(ctx, models.EnrollmentFilter{StudentID: studentID})
}

// ListByCourse returns the enrollments of an existing course.
func (s *EnrollmentService) ListByCourse(ctx context.Context, courseID int) ([]models.EnrollmentDetail, error) {
	if err := s.requireCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.List(ctx, models.EnrollmentFilter{CourseID: courseID})
}

// Get returns an enrollment with its student and course.
func (s *EnrollmentService) Get(ctx context.Context, id int) (*models.EnrollmentDetail, error) {
	detail, err := s.enrollments.FindDetailByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return detail, nil
}

// Create enrolls a student in a course.
func (s *EnrollmentService) Create(ctx context.Context, input CreateEnrollmentInput) (*models.Enrollment, error) {
	input.Grade = strings.ToUpper(strings.TrimSpace(input.Grade))
	if err := validateInput(s.validator, input, "enrollment"); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input.StudentID, input.CourseID, 0); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{StudentID: input.StudentID, CourseID: input.CourseID, Grade: gradeOf(input.Grade)}
	uow := s.store.Begin()
	defer uow.Discard()
	uow.AddEnrollment(enrollment)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "enrollment not found", appErrors.ErrSaveFailed, "create enrollment")
	}
	return enrollment, nil
}

// Update overwrites the student, course and grade of enrollment id.
func (s *EnrollmentService) Update(ctx context.Context, id int, input EditEnrollmentInput) (*models.Enrollment, error) {
	input.Grade = strings.ToUpper(strings.TrimSpace(input.Grade))
	if err := validateInput(s.validator, input, "enrollment"); err != nil {
		return nil, err
	}
	if err := s.requireEnrollment(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, input.StudentID, input.CourseID, id); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{ID: id, StudentID: input.StudentID, CourseID: input.CourseID, Grade: gradeOf(input.Grade)}
	uow := s.store.Begin()
	defer uow.Discard()
	uow.UpdateEnrollment(enrollment)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "enrollment not found", appErrors.ErrSaveFailed, "update enrollment")
	}
	return enrollment, nil
}

// DeleteConfirmation loads the enrollment shown before deletion.
func (s *EnrollmentService) DeleteConfirmation(ctx context.Context, id int, saveChangesError bool) (*models.EnrollmentDetail, string, error) {
	detail, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return detail, DeleteErrorMessage(saveChangesError), nil
}

// Delete removes enrollment id.
func (s *EnrollmentService) Delete(ctx context.Context, id int) error {
	uow := s.store.Begin()
	defer uow.Discard()
	uow.RemoveEnrollment(id)
	if err := uow.SaveChanges(ctx); err != nil {
		return saveError(s.logger, s.metrics, err, "enrollment not found", appErrors.ErrDeleteFailed, "delete enrollment")
	}
	return nil
}

func (s *EnrollmentService) checkReferences(ctx context.Context, studentID, courseID, excludeID int) error {
	if err := s.requireStudent(ctx, studentID); err != nil {
		return err
	}
	if err := s.requireCourse(ctx, courseID); err != nil {
		return err
	}
	exists, err := s.enrollments.ExistsPair(ctx, studentID, courseID, excludeID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate enrollment")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrConflict, "student already enrolled in course")
	}
	return nil
}

func (s *EnrollmentService) requireEnrollment(ctx context.Context, id int) error {
	if _, err := s.enrollments.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	return nil
}

func (s *EnrollmentService) requireStudent(ctx context.Context, id int) error {
	if _, err := s.students.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return nil
}

func (s *EnrollmentService) requireCourse(ctx context.Context, id int) error {
	if _, err := s.courses.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return nil
}

func gradeOf(raw string) *models.Grade {
	if raw == "" {
		return nil
	}
	grade := models.Grade(raw)
	return &grade
}
