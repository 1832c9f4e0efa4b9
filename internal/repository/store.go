package repository

import (
	"context"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

// StudentReader loads students outside of a unit of work.
type StudentReader interface {
	ListAll(ctx context.Context) ([]models.Student, error)
	FindByID(ctx context.Context, id int) (*models.Student, error)
	FindByLastName(ctx context.Context, lastName string) ([]models.Student, error)
}

// CourseReader loads courses outside of a unit of work.
type CourseReader interface {
	ListAll(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id int) (*models.Course, error)
	FindByTitle(ctx context.Context, title string) ([]models.Course, error)
}

// EnrollmentReader loads enrollments outside of a unit of work.
type EnrollmentReader interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error)
	FindByID(ctx context.Context, id int) (*models.Enrollment, error)
	FindDetailByID(ctx context.Context, id int) (*models.EnrollmentDetail, error)
	ExistsPair(ctx context.Context, studentID, courseID, excludeID int) (bool, error)
}

// Store is the persistence context shared by the SQL and in-memory backends.
type Store interface {
	Students() StudentReader
	Courses() CourseReader
	Enrollments() EnrollmentReader
	Begin() UnitOfWork
}

var (
	_ Store = (*SchoolContext)(nil)
	_ Store = (*MemoryStore)(nil)
)
