package models

// Course is an offering students enroll in. Its ID is chosen by the registrar.
type Course struct {
	ID      int    `db:"course_id" json:"id"`
	Title   string `db:"title" json:"title"`
	Credits int    `db:"credits" json:"credits"`
}
