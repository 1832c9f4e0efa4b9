package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

type memoryState struct {
	students         map[int]models.Student
	courses          map[int]models.Course
	enrollments      map[int]models.Enrollment
	nextStudentID    int
	nextEnrollmentID int
}

func newMemoryState() *memoryState {
	return &memoryState{
		students:         make(map[int]models.Student),
		courses:          make(map[int]models.Course),
		enrollments:      make(map[int]models.Enrollment),
		nextStudentID:    1,
		nextEnrollmentID: 1,
	}
}

func (s *memoryState) clone() *memoryState {
	next := &memoryState{
		students:         make(map[int]models.Student, len(s.students)),
		courses:          make(map[int]models.Course, len(s.courses)),
		enrollments:      make(map[int]models.Enrollment, len(s.enrollments)),
		nextStudentID:    s.nextStudentID,
		nextEnrollmentID: s.nextEnrollmentID,
	}
	for id, student := range s.students {
		next.students[id] = student
	}
	for id, course := range s.courses {
		next.courses[id] = course
	}
	for id, enrollment := range s.enrollments {
		next.enrollments[id] = copyEnrollment(enrollment)
	}
	return next
}

func (s *memoryState) checkEnrollment(e models.Enrollment) error {
	if _, ok := s.students[e.StudentID]; !ok {
		return fmt.Errorf("foreign key violation: student %d", e.StudentID)
	}
	if _, ok := s.courses[e.CourseID]; !ok {
		return fmt.Errorf("foreign key violation: course %d", e.CourseID)
	}
	for id, existing := range s.enrollments {
		if id != e.ID && existing.StudentID == e.StudentID && existing.CourseID == e.CourseID {
			return fmt.Errorf("unique violation: student %d already enrolled in course %d", e.StudentID, e.CourseID)
		}
	}
	return nil
}

func (s *memoryState) removeEnrollmentsWhere(match func(models.Enrollment) bool) {
	for id, enrollment := range s.enrollments {
		if match(enrollment) {
			delete(s.enrollments, id)
		}
	}
}

func copyEnrollment(e models.Enrollment) models.Enrollment {
	if e.Grade != nil {
		grade := *e.Grade
		e.Grade = &grade
	}
	return e
}

// MemoryStore keeps the school records in process memory. Batches are applied
// to a copy of the state and swapped in only when every operation succeeds.
type MemoryStore struct {
	mu      sync.RWMutex
	state   *memoryState
	observe QueryObserver
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore(observe QueryObserver) *MemoryStore {
	if observe == nil {
		observe = func(string, time.Duration) {}
	}
	return &MemoryStore{state: newMemoryState(), observe: observe}
}

// Students returns the student reader.
func (m *MemoryStore) Students() StudentReader { return memoryStudents{m} }

// Courses returns the course reader.
func (m *MemoryStore) Courses() CourseReader { return memoryCourses{m} }

// Enrollments returns the enrollment reader.
func (m *MemoryStore) Enrollments() EnrollmentReader { return memoryEnrollments{m} }

// Begin starts a new unit of work.
func (m *MemoryStore) Begin() UnitOfWork {
	return &memoryUnitOfWork{store: m}
}

func (m *MemoryStore) read(fn func(state *memoryState)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn(m.state)
}

type memoryStudents struct{ store *MemoryStore }

func (r memoryStudents) ListAll(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	r.store.read(func(state *memoryState) {
		students = make([]models.Student, 0, len(state.students))
		for _, student := range state.students {
			students = append(students, student)
		}
	})
	sort.Slice(students, func(i, j int) bool { return students[i].ID < students[j].ID })
	return students, nil
}

func (r memoryStudents) FindByID(ctx context.Context, id int) (*models.Student, error) {
	var (
		student models.Student
		ok      bool
	)
	r.store.read(func(state *memoryState) { student, ok = state.students[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &student, nil
}

func (r memoryStudents) FindByLastName(ctx context.Context, lastName string) ([]models.Student, error) {
	all, _ := r.ListAll(ctx)
	matches := make([]models.Student, 0)
	for _, student := range all {
		if student.LastName == lastName {
			matches = append(matches, student)
		}
	}
	return matches, nil
}

type memoryCourses struct{ store *MemoryStore }

func (r memoryCourses) ListAll(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	r.store.read(func(state *memoryState) {
		courses = make([]models.Course, 0, len(state.courses))
		for _, course := range state.courses {
			courses = append(courses, course)
		}
	})
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (r memoryCourses) FindByID(ctx context.Context, id int) (*models.Course, error) {
	var (
		course models.Course
		ok     bool
	)
	r.store.read(func(state *memoryState) { course, ok = state.courses[id] })
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &course, nil
}

func (r memoryCourses) FindByTitle(ctx context.Context, title string) ([]models.Course, error) {
	all, _ := r.ListAll(ctx)
	matches := make([]models.Course, 0)
	for _, course := range all {
		if course.Title == title {
			matches = append(matches, course)
		}
	}
	return matches, nil
}

type memoryEnrollments struct{ store *MemoryStore }

func (r memoryEnrollments) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, error) {
	var details []models.EnrollmentDetail
	r.store.read(func(state *memoryState) {
		details = make([]models.EnrollmentDetail, 0, len(state.enrollments))
		for _, enrollment := range state.enrollments {
			if filter.StudentID > 0 && enrollment.StudentID != filter.StudentID {
				continue
			}
			if filter.CourseID > 0 && enrollment.CourseID != filter.CourseID {
				continue
			}
			details = append(details, detailOf(state, enrollment))
		}
	})
	sort.Slice(details, func(i, j int) bool { return details[i].ID < details[j].ID })
	return details, nil
}

func (r memoryEnrollments) FindByID(ctx context.Context, id int) (*models.Enrollment, error) {
	var (
		enrollment models.Enrollment
		ok         bool
	)
	r.store.read(func(state *memoryState) {
		enrollment, ok = state.enrollments[id]
		enrollment = copyEnrollment(enrollment)
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &enrollment, nil
}

func (r memoryEnrollments) FindDetailByID(ctx context.Context, id int) (*models.EnrollmentDetail, error) {
	var (
		detail models.EnrollmentDetail
		ok     bool
	)
	r.store.read(func(state *memoryState) {
		var enrollment models.Enrollment
		if enrollment, ok = state.enrollments[id]; ok {
			detail = detailOf(state, enrollment)
		}
	})
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &detail, nil
}

func (r memoryEnrollments) ExistsPair(ctx context.Context, studentID, courseID, excludeID int) (bool, error) {
	found := false
	r.store.read(func(state *memoryState) {
		for id, enrollment := range state.enrollments {
			if id == excludeID && excludeID > 0 {
				continue
			}
			if enrollment.StudentID == studentID && enrollment.CourseID == courseID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func detailOf(state *memoryState, enrollment models.Enrollment) models.EnrollmentDetail {
	student := state.students[enrollment.StudentID]
	course := state.courses[enrollment.CourseID]
	return models.EnrollmentDetail{
		Enrollment:          copyEnrollment(enrollment),
		StudentLastName:     student.LastName,
		StudentFirstMidName: student.FirstMidName,
		CourseTitle:         course.Title,
		CourseCredits:       course.Credits,
	}
}

type memoryOperation struct {
	name  string
	apply func(state *memoryState) error
}

type memoryUnitOfWork struct {
	store *MemoryStore
	ops   []memoryOperation
	undo  []func()
}

func (u *memoryUnitOfWork) add(name string, apply func(state *memoryState) error) {
	u.ops = append(u.ops, memoryOperation{name: name, apply: apply})
}

func (u *memoryUnitOfWork) AddStudent(student *models.Student) {
	prev := student.ID
	u.undo = append(u.undo, func() { student.ID = prev })
	u.add("insert student", func(state *memoryState) error {
		student.ID = state.nextStudentID
		state.nextStudentID++
		state.students[student.ID] = *student
		return nil
	})
}

func (u *memoryUnitOfWork) UpdateStudent(student *models.Student) {
	s := *student
	u.add("update student", func(state *memoryState) error {
		if _, ok := state.students[s.ID]; !ok {
			return fmt.Errorf("student %d: %w", s.ID, ErrRowNotFound)
		}
		state.students[s.ID] = s
		return nil
	})
}

func (u *memoryUnitOfWork) RemoveStudent(id int) {
	u.add("delete student", func(state *memoryState) error {
		if _, ok := state.students[id]; !ok {
			return fmt.Errorf("student %d: %w", id, ErrRowNotFound)
		}
		state.removeEnrollmentsWhere(func(e models.Enrollment) bool { return e.StudentID == id })
		delete(state.students, id)
		return nil
	})
}

func (u *memoryUnitOfWork) AddCourse(course *models.Course) {
	c := *course
	u.add("insert course", func(state *memoryState) error {
		if _, exists := state.courses[c.ID]; exists {
			return fmt.Errorf("unique violation: course %d already exists", c.ID)
		}
		state.courses[c.ID] = c
		return nil
	})
}

func (u *memoryUnitOfWork) UpdateCourse(course *models.Course) {
	c := *course
	u.add("update course", func(state *memoryState) error {
		if _, ok := state.courses[c.ID]; !ok {
			return fmt.Errorf("course %d: %w", c.ID, ErrRowNotFound)
		}
		state.courses[c.ID] = c
		return nil
	})
}

func (u *memoryUnitOfWork) RemoveCourse(id int) {
	u.add("delete course", func(state *memoryState) error {
		if _, ok := state.courses[id]; !ok {
			return fmt.Errorf("course %d: %w", id, ErrRowNotFound)
		}
		state.removeEnrollmentsWhere(func(e models.Enrollment) bool { return e.CourseID == id })
		delete(state.courses, id)
		return nil
	})
}

func (u *memoryUnitOfWork) AddEnrollment(enrollment *models.Enrollment) {
	prev := enrollment.ID
	u.undo = append(u.undo, func() { enrollment.ID = prev })
	u.add("insert enrollment", func(state *memoryState) error {
		candidate := copyEnrollment(*enrollment)
		candidate.ID = 0
		if err := state.checkEnrollment(candidate); err != nil {
			return err
		}
		candidate.ID = state.nextEnrollmentID
		state.nextEnrollmentID++
		state.enrollments[candidate.ID] = candidate
		enrollment.ID = candidate.ID
		return nil
	})
}

func (u *memoryUnitOfWork) UpdateEnrollment(enrollment *models.Enrollment) {
	e := copyEnrollment(*enrollment)
	u.add("update enrollment", func(state *memoryState) error {
		if _, ok := state.enrollments[e.ID]; !ok {
			return fmt.Errorf("enrollment %d: %w", e.ID, ErrRowNotFound)
		}
		if err := state.checkEnrollment(e); err != nil {
			return err
		}
		state.enrollments[e.ID] = e
		return nil
	})
}

func (u *memoryUnitOfWork) RemoveEnrollment(id int) {
	u.add("delete enrollment", func(state *memoryState) error {
		if _, ok := state.enrollments[id]; !ok {
			return fmt.Errorf("enrollment %d: %w", id, ErrRowNotFound)
		}
		delete(state.enrollments, id)
		return nil
	})
}

// SaveChanges applies the batch to a copy of the state and publishes it on success.
func (u *memoryUnitOfWork) SaveChanges(ctx context.Context) (err error) {
	if len(u.ops) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		u.store.observe("save_changes", time.Since(start))
		if err != nil {
			for _, restore := range u.undo {
				restore()
			}
		}
		u.ops = nil
		u.undo = nil
	}()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return &CommitError{Op: "begin", Err: ctxErr}
	}

	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	next := u.store.state.clone()
	for _, op := range u.ops {
		if opErr := op.apply(next); opErr != nil {
			if isRowNotFound(opErr) {
				return opErr
			}
			return &CommitError{Op: op.name, Err: opErr}
		}
	}
	u.store.state = next
	return nil
}

func (u *memoryUnitOfWork) Discard() {
	u.ops = nil
	u.undo = nil
}
