package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

const studentColumns = `student_id, last_name, first_mid_name, enrollment_date`

// StudentRepository reads student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ListAll returns every student in storage order.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY student_id`, studentColumns, TableStudent)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student by identity. It returns sql.ErrNoRows when absent.
func (r *StudentRepository) FindByID(ctx context.Context, id int) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE student_id = $1`, studentColumns, TableStudent)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByLastName returns all students sharing lastName.
func (r *StudentRepository) FindByLastName(ctx context.Context, lastName string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE last_name = $1 ORDER BY student_id`, studentColumns, TableStudent)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, lastName); err != nil {
		return nil, fmt.Errorf("find students by last name: %w", err)
	}
	return students, nil
}
