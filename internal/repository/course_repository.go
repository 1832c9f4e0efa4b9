package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

// CourseRepository reads course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListAll returns every course ordered by its number.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT course_id, title, credits FROM course ORDER BY course_id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID fetches a course by identity. It returns sql.ErrNoRows when absent.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	const query = `SELECT course_id, title, credits FROM course WHERE course_id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindByTitle returns all courses sharing title.
func (r *CourseRepository) FindByTitle(ctx context.Context, title string) ([]models.Course, error) {
	const query = `SELECT course_id, title, credits FROM course WHERE title = $1 ORDER BY course_id`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, title); err != nil {
		return nil, fmt.Errorf("find courses by title: %w", err)
	}
	return courses, nil
}
