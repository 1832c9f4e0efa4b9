package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of calendar dates, both accepted and returned.
const DateLayout = "2006-01-02"

// Student represents a person enrolled at the university.
type Student struct {
	ID             int       `db:"student_id" json:"id"`
	LastName       string    `db:"last_name" json:"last_name"`
	FirstMidName   string    `db:"first_mid_name" json:"first_mid_name"`
	EnrollmentDate time.Time `db:"enrollment_date" json:"enrollment_date"`
}

type studentJSON struct {
	ID             int    `json:"id"`
	LastName       string `json:"last_name"`
	FirstMidName   string `json:"first_mid_name"`
	EnrollmentDate string `json:"enrollment_date"`
}

// MarshalJSON writes the enrollment date as YYYY-MM-DD so a fetched student
// can be submitted back unchanged.
func (s Student) MarshalJSON() ([]byte, error) {
	out := studentJSON{ID: s.ID, LastName: s.LastName, FirstMidName: s.FirstMidName}
	if !s.EnrollmentDate.IsZero() {
		out.EnrollmentDate = s.EnrollmentDate.Format(DateLayout)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the format written by MarshalJSON.
func (s *Student) UnmarshalJSON(raw []byte) error {
	var in studentJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return err
	}
	var date time.Time
	if in.EnrollmentDate != "" {
		parsed, err := time.Parse(DateLayout, in.EnrollmentDate)
		if err != nil {
			return fmt.Errorf("enrollment_date: %w", err)
		}
		date = parsed
	}
	*s = Student{ID: in.ID, LastName: in.LastName, FirstMidName: in.FirstMidName, EnrollmentDate: date}
	return nil
}

// StudentFilter carries the optional search text, sort token and paging of a listing.
type StudentFilter struct {
	Search    string
	SortOrder string
	Page      int
	PageSize  int
}

// SortTokens holds the tokens a presentation layer needs to build reversible
// sort links for the student list.
type SortTokens struct {
	CurrentSort   string `json:"current_sort"`
	NameSort      string `json:"name_sort"`
	DateSort      string `json:"date_sort"`
	CurrentFilter string `json:"current_filter"`
}
