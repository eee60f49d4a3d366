package shared

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// CourseID is the canonical course identifier. Clients historically produced
// prefixed ids ("course_<unix-ms>") while the database accepted bare numeric
// ids; every parse and format lives here so handlers never touch the raw
// string themselves.
type CourseID string

const courseIDPrefix = "course_"

// NewCourseID mints a fresh client-style id. Legacy clients derived the
// suffix from the clock, which collides within a millisecond; a v7 uuid keeps
// the ids time-sortable without the collision.
func NewCourseID() CourseID {
	id, _ := uuid.NewV7()
	return CourseID(courseIDPrefix + id.String())
}

// ParseCourseID canonicalizes any accepted spelling of a course id. A bare
// numeric id is re-prefixed, a prefixed id passes through, anything else is
// kept verbatim so lookups can still miss cleanly.
func ParseCourseID(raw string) CourseID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return CourseID(courseIDPrefix + raw)
	}
	return CourseID(raw)
}

func (id CourseID) String() string {
	return string(id)
}

func (id CourseID) IsZero() bool {
	return id == ""
}

// Numeric extracts the numeric portion of the id, the representation legacy
// clients and the relational layer exchanged. Returns false when the id
// carries no digits at all.
func (id CourseID) Numeric() (int64, bool) {
	var digits strings.Builder
	for _, r := range string(id) {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// StorageKey is the key the local draft store files the course under.
func (id CourseID) StorageKey() string {
	return string(id)
}
