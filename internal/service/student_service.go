package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/contoso-university-api/internal/models"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
	"github.com/noah-isme/contoso-university-api/pkg/export"
)

type studentReader interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int) (*models.Student, error)
}

// CreateStudentInput lists the fields a client may set when creating a student.
type CreateStudentInput struct {
	LastName       string `json:"last_name" validate:"required,max=50"`
	FirstMidName   string `json:"first_mid_name" validate:"required,max=50"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
}

// EditStudentInput lists the fields a client may change on a student.
type EditStudentInput struct {
	LastName       string `json:"last_name" validate:"required,max=50"`
	FirstMidName   string `json:"first_mid_name" validate:"required,max=50"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
}

// StudentListResult is one page of the filtered, sorted student list.
type StudentListResult struct {
	Students   []models.Student
	Pagination *models.Pagination
	Sort       models.SortTokens
	CacheHit   bool
}

// StudentService handles student use-cases.
type StudentService struct {
	students  studentReader
	store     unitOfWorkFactory
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	pageSize  int
}

// NewStudentService constructs the student service. cache and metrics may be nil.
func NewStudentService(students studentReader, store unitOfWorkFactory, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, pageSize int) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &StudentService{
		students:  students,
		store:     store,
		cache:     cache,
		metrics:   metrics,
		validator: newSchoolValidator(validate),
		logger:    logger,
		pageSize:  pageSize,
	}
}

// List filters then sorts the student set. Paging applies only when
// filter.Page is set.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) (*StudentListResult, error) {
	all, hit, err := s.loadAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	students := SortStudents(FilterStudents(all, filter.Search), filter.SortOrder)
	result := &StudentListResult{
		Students: students,
		Sort:     NextSortTokens(filter.SortOrder, filter.Search),
		CacheHit: hit,
	}
	if filter.Page > 0 {
		size := filter.PageSize
		if size <= 0 {
			size = s.pageSize
		}
		result.Pagination = &models.Pagination{Page: filter.Page, PageSize: size, TotalCount: len(students)}
		result.Students = PageStudents(students, filter.Page, size)
	}
	return result, nil
}

func (s *StudentService) loadAll(ctx context.Context) ([]models.Student, bool, error) {
	var cached []models.Student
	if s.cache.Get(ctx, CacheKeyStudents, &cached) {
		return cached, true, nil
	}
	generation := s.cache.Generation()
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, false, err
	}
	s.cache.SetIfCurrent(ctx, CacheKeyStudents, students, 0, generation)
	return students, false, nil
}

// Get returns a student by id.
func (s *StudentService) Get(ctx context.Context, id int) (*models.Student, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// Create registers a new student.
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*models.Student, error) {
	input.LastName = strings.TrimSpace(input.LastName)
	input.FirstMidName = strings.TrimSpace(input.FirstMidName)
	if err := validateInput(s.validator, input, "student"); err != nil {
		return nil, err
	}
	date, _ := time.Parse(DateLayout, input.EnrollmentDate)
	student := &models.Student{
		LastName:       input.LastName,
		FirstMidName:   input.FirstMidName,
		EnrollmentDate: date,
	}

	uow := s.store.Begin()
	defer uow.Discard()
	uow.AddStudent(student)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "student not found", appErrors.ErrSaveFailed, "create student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents)
	return student, nil
}

// Update overwrites every editable field of student id.
func (s *StudentService) Update(ctx context.Context, id int, input EditStudentInput) (*models.Student, error) {
	input.LastName = strings.TrimSpace(input.LastName)
	input.FirstMidName = strings.TrimSpace(input.FirstMidName)
	if err := validateInput(s.validator, input, "student"); err != nil {
		return nil, err
	}
	date, _ := time.Parse(DateLayout, input.EnrollmentDate)
	student := &models.Student{
		ID:             id,
		LastName:       input.LastName,
		FirstMidName:   input.FirstMidName,
		EnrollmentDate: date,
	}

	uow := s.store.Begin()
	defer uow.Discard()
	uow.UpdateStudent(student)
	if err := uow.SaveChanges(ctx); err != nil {
		return nil, saveError(s.logger, s.metrics, err, "student not found", appErrors.ErrSaveFailed, "update student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents)
	return student, nil
}

// DeleteConfirmation loads the student shown before deletion together with the
// notice for a previously failed attempt.
func (s *StudentService) DeleteConfirmation(ctx context.Context, id int, saveChangesError bool) (*models.Student, string, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return student, DeleteErrorMessage(saveChangesError), nil
}

// Delete removes the student and its enrollments.
func (s *StudentService) Delete(ctx context.Context, id int) error {
	uow := s.store.Begin()
	defer uow.Discard()
	uow.RemoveStudent(id)
	if err := uow.SaveChanges(ctx); err != nil {
		return saveError(s.logger, s.metrics, err, "student not found", appErrors.ErrDeleteFailed, "delete student")
	}
	s.cache.Invalidate(ctx, CachePatternStudents)
	return nil
}

// StudentExport is a rendered roster document.
type StudentExport struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export renders the filtered, sorted roster as CSV or PDF.
func (s *StudentService) Export(ctx context.Context, format string, filter models.StudentFilter) (*StudentExport, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	filter.Page = 0
	result, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   "Student Roster",
		Headers: []string{"ID", "Last Name", "First Name", "Enrollment Date"},
		Rows:    make([]map[string]string, 0, len(result.Students)),
	}
	for _, student := range result.Students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":              fmt.Sprintf("%d", student.ID),
			"Last Name":       student.LastName,
			"First Name":      student.FirstMidName,
			"Enrollment Date": student.EnrollmentDate.Format(DateLayout),
		})
	}

	body, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render student export")
	}
	return &StudentExport{
		Filename:    "students." + renderer.Extension(),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
