package models

// Grade is the letter grade earned in a course.
type Grade string

// Possible grades.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Valid reports whether g is one of the known letter grades.
func (g Grade) Valid() bool {
	switch g {
	case GradeA, GradeB, GradeC, GradeD, GradeF:
		return true
	}
	return false
}

// Enrollment links a student to a course. A nil Grade means not yet graded.
type Enrollment struct {
	ID        int    `db:"enrollment_id" json:"id"`
	StudentID int    `db:"student_id" json:"student_id"`
	CourseID  int    `db:"course_id" json:"course_id"`
	Grade     *Grade `db:"grade" json:"grade"`
}

// EnrollmentDetail enriches Enrollment with student and course info.
type EnrollmentDetail struct {
	Enrollment
	StudentLastName     string `db:"student_last_name" json:"student_last_name"`
	StudentFirstMidName string `db:"student_first_mid_name" json:"student_first_mid_name"`
	CourseTitle         string `db:"course_title" json:"course_title"`
	CourseCredits       int    `db:"course_credits" json:"course_credits"`
}

// EnrollmentFilter narrows enrollment listings. Zero values match everything.
type EnrollmentFilter struct {
	StudentID int
	CourseID  int
}
