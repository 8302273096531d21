package roster

import (
	"errors"
	"strings"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// ErrStudentNotFound is reported for both absent and ambiguous queries
var ErrStudentNotFound = errors.New("Student not found.")

// MatchStatus tags the outcome of a name search
type MatchStatus int

const (
	Absent MatchStatus = iota
	Found
	Ambiguous
)

func (s MatchStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Ambiguous:
		return "ambiguous"
	default:
		return "absent"
	}
}

// MatchResult is the tagged search outcome; Student is set only when Found
type MatchResult struct {
	Status  MatchStatus
	Student *contracts.Student
}

// Err returns ErrStudentNotFound unless exactly one student matched
func (r MatchResult) Err() error {
	if r.Status == Found {
		return nil
	}
	return ErrStudentNotFound
}

// Search finds one student by case-insensitive name substring.
// Several matches are narrowed to names that start with the query.
func Search(students []*contracts.Student, query string) MatchResult {
	q := strings.ToLower(query)

	var matches []*contracts.Student
	for _, s := range students {
		if strings.Contains(strings.ToLower(s.Name), q) {
			matches = append(matches, s)
		}
	}

	switch len(matches) {
	case 0:
		return MatchResult{Status: Absent}
	case 1:
		return MatchResult{Status: Found, Student: matches[0]}
	}

	var narrowed []*contracts.Student
	for _, s := range matches {
		if strings.HasPrefix(strings.ToLower(s.Name), q) {
			narrowed = append(narrowed, s)
		}
	}

	if len(narrowed) == 1 {
		return MatchResult{Status: Found, Student: narrowed[0]}
	}
	return MatchResult{Status: Ambiguous}
}

// FindByID returns the student with id, or nil
func FindByID(students []*contracts.Student, id int) *contracts.Student {
	for _, s := range students {
		if s.ID == id {
			return s
		}
	}
	return nil
}
