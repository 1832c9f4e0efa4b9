package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

const enrollmentDetailSelect = `SELECT e.enrollment_id, e.student_id, e.course_id, e.grade,
        s.last_name AS student_last_name, s.first_mid_name AS student_first_mid_name,
        c.title AS course_title, c.credits AS course_credits
        FROM enrollment e
        JOIN student s ON s.student_id = e.student_id
        JOIN course c ON c.course_id = e.course_id`

// EnrollmentRepository reads enrollment records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with student and course info matching filter.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.StudentID > 0 {
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.CourseID > 0 {
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := enrollmentDetailSelect + clause + " ORDER BY e.enrollment_id"
	var enrollments []models.EnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// FindByID returns an enrollment by its ID or sql.ErrNoRows.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id int) (*models.Enrollment, error) {
	const query = `SELECT enrollment_id, student_id, course_id, grade FROM enrollment WHERE enrollment_id = $1`
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindDetailByID returns an enrollment with student and course info or sql.ErrNoRows.
func (r *EnrollmentRepository) FindDetailByID(ctx context.Context, id int) (*models.EnrollmentDetail, error) {
	query := enrollmentDetailSelect + " WHERE e.enrollment_id = $1"
	var detail models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ExistsPair reports whether studentID is already enrolled in courseID,
// ignoring the enrollment excludeID when it is positive.
func (r *EnrollmentRepository) ExistsPair(ctx context.Context, studentID, courseID, excludeID int) (bool, error) {
	query := "SELECT 1 FROM enrollment WHERE student_id = $1 AND course_id = $2"
	args := []interface{}{studentID, courseID}
	if excludeID > 0 {
		query += fmt.Sprintf(" AND enrollment_id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	query += " LIMIT 1"
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment pair: %w", err)
	}
	return true, nil
}
