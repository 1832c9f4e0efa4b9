package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/contoso-university-api/internal/models"
	"github.com/noah-isme/contoso-university-api/internal/repository"
	appErrors "github.com/noah-isme/contoso-university-api/pkg/errors"
)

//go:embed data.yaml
var defaultData []byte

// StudentRow is a seed student keyed by last name.
type StudentRow struct {
	LastName       string `yaml:"last_name"`
	FirstMidName   string `yaml:"first_mid_name"`
	EnrollmentDate string `yaml:"enrollment_date"`
}

// CourseRow is a seed course keyed by title.
type CourseRow struct {
	CourseID int    `yaml:"course_id"`
	Title    string `yaml:"title"`
	Credits  int    `yaml:"credits"`
}

// EnrollmentRow references its student by last name and its course by title.
type EnrollmentRow struct {
	Student string `yaml:"student"`
	Course  string `yaml:"course"`
	Grade   string `yaml:"grade"`
}

// Data is the sample dataset.
type Data struct {
	Students    []StudentRow    `yaml:"students"`
	Courses     []CourseRow     `yaml:"courses"`
	Enrollments []EnrollmentRow `yaml:"enrollments"`
}

// Report summarises a seed run.
type Report struct {
	StudentsInserted    int `json:"students_inserted"`
	StudentsUpdated     int `json:"students_updated"`
	CoursesInserted     int `json:"courses_inserted"`
	CoursesUpdated      int `json:"courses_updated"`
	EnrollmentsInserted int `json:"enrollments_inserted"`
	EnrollmentsSkipped  int `json:"enrollments_skipped"`
}

// Parse decodes a YAML seed document.
func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &data, nil
}

// Default returns the embedded sample dataset.
func Default() (*Data, error) {
	return Parse(defaultData)
}

// Loader upserts seed data into a store. Running it repeatedly converges on
// the same rows.
type Loader struct {
	store             repository.Store
	logger            *zap.Logger
	onStudentsChanged func(ctx context.Context)
}

// NewLoader constructs a Loader.
func NewLoader(store repository.Store, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: store, logger: logger}
}

// OnStudentsChanged registers fn to run after the student batch commits with
// at least one insert or update, typically to drop cached student lists.
func (l *Loader) OnStudentsChanged(fn func(ctx context.Context)) *Loader {
	l.onStudentsChanged = fn
	return l
}

// Run seeds the embedded dataset.
func (l *Loader) Run(ctx context.Context) (*Report, error) {
	data, err := Default()
	if err != nil {
		return nil, err
	}
	return l.Load(ctx, data)
}

// Load seeds data. Students, courses and enrollments are committed as three
// separate batches, in that order.
func (l *Loader) Load(ctx context.Context, data *Data) (*Report, error) {
	report := &Report{}

	if err := l.loadStudents(ctx, data.Students, report); err != nil {
		return report, err
	}
	if err := l.loadCourses(ctx, data.Courses, report); err != nil {
		return report, err
	}
	if err := l.loadEnrollments(ctx, data.Enrollments, report); err != nil {
		return report, err
	}

	l.logger.Info("seed completed",
		zap.Int("students_inserted", report.StudentsInserted),
		zap.Int("students_updated", report.StudentsUpdated),
		zap.Int("courses_inserted", report.CoursesInserted),
		zap.Int("courses_updated", report.CoursesUpdated),
		zap.Int("enrollments_inserted", report.EnrollmentsInserted),
		zap.Int("enrollments_skipped", report.EnrollmentsSkipped),
	)
	return report, nil
}

func (l *Loader) loadStudents(ctx context.Context, rows []StudentRow, report *Report) error {
	uow := l.store.Begin()
	defer uow.Discard()

	for _, row := range rows {
		date, err := time.Parse(models.DateLayout, row.EnrollmentDate)
		if err != nil {
			return fmt.Errorf("seed student %s: invalid enrollment date %q", row.LastName, row.EnrollmentDate)
		}
		matches, err := l.store.Students().FindByLastName(ctx, row.LastName)
		if err != nil {
			return fmt.Errorf("seed student %s: %w", row.LastName, err)
		}
		switch len(matches) {
		case 0:
			uow.AddStudent(&models.Student{LastName: row.LastName, FirstMidName: row.FirstMidName, EnrollmentDate: date})
			report.StudentsInserted++
		case 1:
			uow.UpdateStudent(&models.Student{ID: matches[0].ID, LastName: row.LastName, FirstMidName: row.FirstMidName, EnrollmentDate: date})
			report.StudentsUpdated++
		default:
			return appErrors.Clone(appErrors.ErrDuplicateSeedKey, fmt.Sprintf("student last name %q matches %d rows", row.LastName, len(matches)))
		}
	}

	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed students: %w", err)
	}
	if l.onStudentsChanged != nil && report.StudentsInserted+report.StudentsUpdated > 0 {
		l.onStudentsChanged(ctx)
	}
	return nil
}

func (l *Loader) loadCourses(ctx context.Context, rows []CourseRow, report *Report) error {
	uow := l.store.Begin()
	defer uow.Discard()

	for _, row := range rows {
		matches, err := l.store.Courses().FindByTitle(ctx, row.Title)
		if err != nil {
			return fmt.Errorf("seed course %s: %w", row.Title, err)
		}
		switch len(matches) {
		case 0:
			uow.AddCourse(&models.Course{ID: row.CourseID, Title: row.Title, Credits: row.Credits})
			report.CoursesInserted++
		case 1:
			// the stored course number is kept
			uow.UpdateCourse(&models.Course{ID: matches[0].ID, Title: row.Title, Credits: row.Credits})
			report.CoursesUpdated++
		default:
			return appErrors.Clone(appErrors.ErrDuplicateSeedKey, fmt.Sprintf("course title %q matches %d rows", row.Title, len(matches)))
		}
	}

	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed courses: %w", err)
	}
	return nil
}

type enrollmentPair struct {
	studentID int
	courseID  int
}

func (l *Loader) loadEnrollments(ctx context.Context, rows []EnrollmentRow, report *Report) error {
	uow := l.store.Begin()
	defer uow.Discard()

	pending := make(map[enrollmentPair]struct{}, len(rows))
	for _, row := range rows {
		studentID, err := l.resolveStudent(ctx, row.Student)
		if err != nil {
			return err
		}
		courseID, err := l.resolveCourse(ctx, row.Course)
		if err != nil {
			return err
		}

		pair := enrollmentPair{studentID: studentID, courseID: courseID}
		if _, queued := pending[pair]; queued {
			report.EnrollmentsSkipped++
			continue
		}
		exists, err := l.store.Enrollments().ExistsPair(ctx, studentID, courseID, 0)
		if err != nil {
			return fmt.Errorf("seed enrollment %s/%s: %w", row.Student, row.Course, err)
		}
		if exists {
			report.EnrollmentsSkipped++
			continue
		}

		enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID}
		if grade := models.Grade(strings.ToUpper(strings.TrimSpace(row.Grade))); grade != "" {
			if !grade.Valid() {
				return fmt.Errorf("seed enrollment %s/%s: invalid grade %q", row.Student, row.Course, row.Grade)
			}
			enrollment.Grade = &grade
		}
		uow.AddEnrollment(enrollment)
		pending[pair] = struct{}{}
		report.EnrollmentsInserted++
	}

	if err := uow.SaveChanges(ctx); err != nil {
		return fmt.Errorf("seed enrollments: %w", err)
	}
	return nil
}

func (l *Loader) resolveStudent(ctx context.Context, lastName string) (int, error) {
	matches, err := l.store.Students().FindByLastName(ctx, lastName)
	if err != nil {
		return 0, fmt.Errorf("resolve student %s: %w", lastName, err)
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("resolve student %s: %w", lastName, appErrors.Clone(appErrors.ErrNotFound, "student not found"))
	case 1:
		return matches[0].ID, nil
	default:
		return 0, appErrors.Clone(appErrors.ErrDuplicateSeedKey, fmt.Sprintf("student last name %q matches %d rows", lastName, len(matches)))
	}
}

func (l *Loader) resolveCourse(ctx context.Context, title string) (int, error) {
	matches, err := l.store.Courses().FindByTitle(ctx, title)
	if err != nil {
		return 0, fmt.Errorf("resolve course %s: %w", title, err)
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("resolve course %s: %w", title, appErrors.Clone(appErrors.ErrNotFound, "course not found"))
	case 1:
		return matches[0].ID, nil
	default:
		return 0, appErrors.Clone(appErrors.ErrDuplicateSeedKey, fmt.Sprintf("course title %q matches %d rows", title, len(matches)))
	}
}
