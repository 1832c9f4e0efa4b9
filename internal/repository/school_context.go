package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

// Table names are singular.
const (
	TableStudent    = "student"
	TableCourse     = "course"
	TableEnrollment = "enrollment"
)

// ErrRowNotFound is returned by SaveChanges when an update or remove matched no row.
var ErrRowNotFound = errors.New("row not found")

// CommitError reports a storage fault raised while saving a batch. None of the
// batch's changes are durable when it is returned.
type CommitError struct {
	Op  string
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("save changes (%s): %v", e.Op, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// UnitOfWork collects pending changes and commits them atomically.
// Callers must always defer Discard.
type UnitOfWork interface {
	AddStudent(student *models.Student)
	UpdateStudent(student *models.Student)
	RemoveStudent(id int)
	AddCourse(course *models.Course)
	UpdateCourse(course *models.Course)
	RemoveCourse(id int)
	AddEnrollment(enrollment *models.Enrollment)
	UpdateEnrollment(enrollment *models.Enrollment)
	RemoveEnrollment(id int)
	SaveChanges(ctx context.Context) error
	Discard()
}

// QueryObserver receives timings for storage round trips.
type QueryObserver func(label string, duration time.Duration)

// SchoolContext is the PostgreSQL persistence context for the school records.
type SchoolContext struct {
	db          *sqlx.DB
	observe     QueryObserver
	students    *StudentRepository
	courses     *CourseRepository
	enrollments *EnrollmentRepository
}

// NewSchoolContext constructs a SchoolContext over db.
func NewSchoolContext(db *sqlx.DB, observe QueryObserver) *SchoolContext {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &SchoolContext{
		db:          db,
		observe:     observe,
		students:    NewStudentRepository(db),
		courses:     NewCourseRepository(db),
		enrollments: NewEnrollmentRepository(db),
	}
}

// Students returns the student reader.
func (c *SchoolContext) Students() StudentReader { return c.students }

// Courses returns the course reader.
func (c *SchoolContext) Courses() CourseReader { return c.courses }

// Enrollments returns the enrollment reader.
func (c *SchoolContext) Enrollments() EnrollmentReader { return c.enrollments }

// Begin starts a new unit of work.
func (c *SchoolContext) Begin() UnitOfWork {
	return &sqlUnitOfWork{db: c.db, observe: c.observe}
}

type sqlOperation struct {
	name  string
	apply func(ctx context.Context, tx *sqlx.Tx) error
}

type sqlUnitOfWork struct {
	db      *sqlx.DB
	observe QueryObserver
	ops     []sqlOperation
	// undo restores generated identities when a batch is rolled back.
	undo []func()
}

func (u *sqlUnitOfWork) add(name string, apply func(ctx context.Context, tx *sqlx.Tx) error) {
	u.ops = append(u.ops, sqlOperation{name: name, apply: apply})
}

func (u *sqlUnitOfWork) AddStudent(student *models.Student) {
	prev := student.ID
	u.undo = append(u.undo, func() { student.ID = prev })
	u.add("insert student", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `INSERT INTO student (last_name, first_mid_name, enrollment_date) VALUES ($1, $2, $3) RETURNING student_id`
		return tx.QueryRowxContext(ctx, query, student.LastName, student.FirstMidName, student.EnrollmentDate).Scan(&student.ID)
	})
}

func (u *sqlUnitOfWork) UpdateStudent(student *models.Student) {
	s := *student
	u.add("update student", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `UPDATE student SET last_name = $1, first_mid_name = $2, enrollment_date = $3 WHERE student_id = $4`
		return execAffecting(ctx, tx, fmt.Sprintf("student %d", s.ID), query, s.LastName, s.FirstMidName, s.EnrollmentDate, s.ID)
	})
}

// RemoveStudent deletes the student together with its enrollments.
func (u *sqlUnitOfWork) RemoveStudent(id int) {
	u.add("delete student", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollment WHERE student_id = $1`, id); err != nil {
			return err
		}
		return execAffecting(ctx, tx, fmt.Sprintf("student %d", id), `DELETE FROM student WHERE student_id = $1`, id)
	})
}

func (u *sqlUnitOfWork) AddCourse(course *models.Course) {
	c := *course
	u.add("insert course", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `INSERT INTO course (course_id, title, credits) VALUES ($1, $2, $3)`
		_, err := tx.ExecContext(ctx, query, c.ID, c.Title, c.Credits)
		return err
	})
}

func (u *sqlUnitOfWork) UpdateCourse(course *models.Course) {
	c := *course
	u.add("update course", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `UPDATE course SET title = $1, credits = $2 WHERE course_id = $3`
		return execAffecting(ctx, tx, fmt.Sprintf("course %d", c.ID), query, c.Title, c.Credits, c.ID)
	})
}

// RemoveCourse deletes the course together with its enrollments.
func (u *sqlUnitOfWork) RemoveCourse(id int) {
	u.add("delete course", func(ctx context.Context, tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollment WHERE course_id = $1`, id); err != nil {
			return err
		}
		return execAffecting(ctx, tx, fmt.Sprintf("course %d", id), `DELETE FROM course WHERE course_id = $1`, id)
	})
}

func (u *sqlUnitOfWork) AddEnrollment(enrollment *models.Enrollment) {
	prev := enrollment.ID
	u.undo = append(u.undo, func() { enrollment.ID = prev })
	u.add("insert enrollment", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `INSERT INTO enrollment (student_id, course_id, grade) VALUES ($1, $2, $3) RETURNING enrollment_id`
		return tx.QueryRowxContext(ctx, query, enrollment.StudentID, enrollment.CourseID, enrollment.Grade).Scan(&enrollment.ID)
	})
}

func (u *sqlUnitOfWork) UpdateEnrollment(enrollment *models.Enrollment) {
	e := *enrollment
	u.add("update enrollment", func(ctx context.Context, tx *sqlx.Tx) error {
		const query = `UPDATE enrollment SET student_id = $1, course_id = $2, grade = $3 WHERE enrollment_id = $4`
		return execAffecting(ctx, tx, fmt.Sprintf("enrollment %d", e.ID), query, e.StudentID, e.CourseID, e.Grade, e.ID)
	})
}

func (u *sqlUnitOfWork) RemoveEnrollment(id int) {
	u.add("delete enrollment", func(ctx context.Context, tx *sqlx.Tx) error {
		return execAffecting(ctx, tx, fmt.Sprintf("enrollment %d", id), `DELETE FROM enrollment WHERE enrollment_id = $1`, id)
	})
}

// SaveChanges applies every pending operation inside one transaction.
func (u *sqlUnitOfWork) SaveChanges(ctx context.Context) (err error) {
	if len(u.ops) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		u.observe("save_changes", time.Since(start))
		if err != nil {
			for _, restore := range u.undo {
				restore()
			}
		}
		u.ops = nil
		u.undo = nil
	}()

	tx, err := u.db.BeginTxx(ctx, nil)
	if err != nil {
		return &CommitError{Op: "begin", Err: err}
	}

	for _, op := range u.ops {
		if opErr := op.apply(ctx, tx); opErr != nil {
			_ = tx.Rollback()
			if isRowNotFound(opErr) {
				return opErr
			}
			return &CommitError{Op: op.name, Err: opErr}
		}
	}

	if err = tx.Commit(); err != nil {
		return &CommitError{Op: "commit", Err: err}
	}
	return nil
}

func (u *sqlUnitOfWork) Discard() {
	u.ops = nil
	u.undo = nil
}

func isRowNotFound(err error) bool {
	return errors.Is(err, ErrRowNotFound)
}

func execAffecting(ctx context.Context, tx *sqlx.Tx, what, query string, args ...interface{}) error {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, ErrRowNotFound)
	}
	return nil
}
