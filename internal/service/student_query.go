package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/contoso-university-api/internal/models"
)

// Sort tokens understood by SortStudents. Any other value sorts by last name
// ascending.
const (
	SortNameDesc = "Name_desc"
	SortDate     = "Date"
	SortDateDesc = "Date_desc"
)

// FilterStudents keeps students whose last name or first/middle name contains
// search, ignoring case. Surrounding whitespace is trimmed from search first,
// so " an" matches like "an" and a whitespace-only search returns the input
// unchanged, as does an empty one.
func FilterStudents(students []models.Student, search string) []models.Student {
	needle := strings.ToLower(strings.TrimSpace(search))
	if needle == "" {
		return students
	}
	filtered := make([]models.Student, 0, len(students))
	for _, student := range students {
		if strings.Contains(strings.ToLower(student.LastName), needle) ||
			strings.Contains(strings.ToLower(student.FirstMidName), needle) {
			filtered = append(filtered, student)
		}
	}
	return filtered
}

// SortStudents returns a sorted copy of students. Ties keep their input order.
func SortStudents(students []models.Student, sortOrder string) []models.Student {
	sorted := make([]models.Student, len(students))
	copy(sorted, students)

	var less func(a, b models.Student) bool
	switch sortOrder {
	case SortNameDesc:
		less = func(a, b models.Student) bool { return a.LastName > b.LastName }
	case SortDate:
		less = func(a, b models.Student) bool { return a.EnrollmentDate.Before(b.EnrollmentDate) }
	case SortDateDesc:
		less = func(a, b models.Student) bool { return a.EnrollmentDate.After(b.EnrollmentDate) }
	default:
		less = func(a, b models.Student) bool { return a.LastName < b.LastName }
	}
	sort.SliceStable(sorted, func(i, j int) bool { return less(sorted[i], sorted[j]) })
	return sorted
}

// NextSortTokens computes the tokens that reverse or switch the current sort.
func NextSortTokens(sortOrder, search string) models.SortTokens {
	tokens := models.SortTokens{
		CurrentSort:   sortOrder,
		CurrentFilter: search,
		DateSort:      SortDate,
	}
	if sortOrder == "" {
		tokens.NameSort = SortNameDesc
	}
	if sortOrder == SortDate {
		tokens.DateSort = SortDateDesc
	}
	return tokens
}

// PageStudents returns the requested 1-based page. Pages past the end are empty.
func PageStudents(students []models.Student, page, pageSize int) []models.Student {
	if page < 1 || pageSize < 1 {
		return students
	}
	start := (page - 1) * pageSize
	if start >= len(students) {
		return []models.Student{}
	}
	end := start + pageSize
	if end > len(students) {
		end = len(students)
	}
	return students[start:end]
}
