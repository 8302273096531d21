package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bbanting/canvasgradecheck/internal/contracts"
)

// DateLayout is the snapshot key format (ISO date)
const DateLayout = "2006-01-02"

// ErrCorrupt is returned when persisted history does not have the expected shape
var ErrCorrupt = errors.New("history: corrupt data")

// History maps an ISO date to that day's snapshot
type History map[string]Snapshot

// Snapshot maps a decimal student id to the student's record for one day
type Snapshot map[string]StudentRecord

// StudentRecord is one student's state on one day.
// Average is nil when the student had no graded courses.
type StudentRecord struct {
	Name    string        `json:"Name,omitempty"`
	Average *float64      `json:"average"`
	Courses []CourseGrade `json:"courses"`
}

// CourseGrade is encoded as a two-element array: ["Math 10", 91.5]
type CourseGrade struct {
	Name  string
	Grade float64
}

// MarshalJSON implements json.Marshaler.
// Course names are written without HTML escaping ("Art & Design" stays as is).
func (c CourseGrade) MarshalJSON() ([]byte, error) {
	return marshalPlain([]interface{}{c.Name, c.Grade})
}

// marshalPlain is json.Marshal without HTML escaping
func marshalPlain(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON accepts only [string, number]
func (c *CourseGrade) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("%w: course entry is not an array", ErrCorrupt)
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: course entry has %d elements", ErrCorrupt, len(pair))
	}

	var name string
	if err := json.Unmarshal(pair[0], &name); err != nil {
		return fmt.Errorf("%w: course name is not a string", ErrCorrupt)
	}

	var grade float64
	if err := json.Unmarshal(pair[1], &grade); err != nil || isNull(pair[1]) {
		return fmt.Errorf("%w: grade for %q is not a number", ErrCorrupt, name)
	}

	c.Name = name
	c.Grade = grade
	return nil
}

// UnmarshalJSON validates field types and normalizes missing courses to empty
func (r *StudentRecord) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name    *string          `json:"Name"`
		Average json.RawMessage  `json:"average"`
		Courses *json.RawMessage `json:"courses"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: student record: %v", ErrCorrupt, err)
	}

	rec := StudentRecord{Courses: []CourseGrade{}}
	if raw.Name != nil {
		rec.Name = *raw.Name
	}

	if len(raw.Average) > 0 && !isNull(raw.Average) {
		var avg float64
		if err := json.Unmarshal(raw.Average, &avg); err != nil {
			return fmt.Errorf("%w: average is not a number", ErrCorrupt)
		}
		rec.Average = &avg
	}

	if raw.Courses == nil || isNull(*raw.Courses) {
		return fmt.Errorf("%w: student record has no courses", ErrCorrupt)
	}
	if err := json.Unmarshal(*raw.Courses, &rec.Courses); err != nil {
		if errors.Is(err, ErrCorrupt) {
			return err
		}
		return fmt.Errorf("%w: courses is not an array", ErrCorrupt)
	}

	*r = rec
	return nil
}

func isNull(data json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// NewSnapshot builds today's records from the reconciled roster
func NewSnapshot(students []*contracts.Student) Snapshot {
	snap := make(Snapshot, len(students))

	for _, s := range students {
		rec := StudentRecord{
			Name:    s.Name,
			Courses: make([]CourseGrade, 0, len(s.Courses)),
		}
		if avg, ok := s.Average(); ok {
			rec.Average = &avg
		}
		for _, c := range s.Courses {
			rec.Courses = append(rec.Courses, CourseGrade{Name: c.CourseName, Grade: c.Grade})
		}

		snap[strconv.Itoa(s.ID)] = rec
	}

	return snap
}

// Dates returns the snapshot dates in ascending order
func (h History) Dates() []time.Time {
	dates := make([]time.Time, 0, len(h))
	for key := range h {
		d, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

// Latest returns the most recent snapshot and its date
func (h History) Latest() (time.Time, Snapshot, bool) {
	dates := h.Dates()
	if len(dates) == 0 {
		return time.Time{}, nil, false
	}
	last := dates[len(dates)-1]
	return last, h[last.Format(DateLayout)], true
}

// Decode parses and validates a whole history document
func Decode(data []byte) (History, error) {
	raw, err := decodeRaw(data)
	if err != nil {
		return nil, err
	}

	h := make(History, len(raw))
	for date, body := range raw {
		snap, err := decodeSnapshot(body)
		if err != nil {
			return nil, fmt.Errorf("date %s: %w", date, err)
		}
		h[date] = snap
	}
	return h, nil
}

// decodeRaw splits the document by date without decoding the snapshots
func decodeRaw(data []byte) (map[string][]byte, error) {
	out := make(map[string][]byte)
	raw := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for date, body := range raw {
		if err := ValidateDate(date); err != nil {
			return nil, err
		}
		out[date] = body
	}
	return out, nil
}

func decodeSnapshot(data []byte) (Snapshot, error) {
	if isNull(data) {
		return nil, fmt.Errorf("%w: snapshot is null", ErrCorrupt)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		if errors.Is(err, ErrCorrupt) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	for id := range snap {
		if _, err := strconv.Atoi(id); err != nil {
			return nil, fmt.Errorf("%w: student key %q is not an integer", ErrCorrupt, id)
		}
	}
	return snap, nil
}

// ValidateDate checks that key is an ISO calendar date
func ValidateDate(key string) error {
	if _, err := time.Parse(DateLayout, key); err != nil {
		return fmt.Errorf("%w: date key %q", ErrCorrupt, key)
	}
	return nil
}
