package shared

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCourseID(t *testing.T) {
	id := NewCourseID()

	require.True(t, strings.HasPrefix(id.String(), "course_"))
	_, err := uuid.Parse(strings.TrimPrefix(id.String(), "course_"))
	require.NoError(t, err)
	assert.False(t, id.IsZero())
}

func TestNewCourseIDUnique(t *testing.T) {
	seen := make(map[CourseID]bool)
	for i := 0; i < 1000; i++ {
		id := NewCourseID()
		assert.False(t, seen[id], "id %s minted twice", id)
		seen[id] = true
	}
}

func TestParseCourseID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"course_1735689600000", "course_1735689600000"},
		{"1735689600000", "course_1735689600000"},
		{"  course_42  ", "course_42"},
		{"weird-id", "weird-id"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, CourseID(tc.want), ParseCourseID(tc.in), "input %q", tc.in)
	}
}

func TestCourseIDNumeric(t *testing.T) {
	n, ok := ParseCourseID("course_1735689600000").Numeric()
	require.True(t, ok)
	assert.Equal(t, int64(1735689600000), n)

	n, ok = ParseCourseID("99").Numeric()
	require.True(t, ok)
	assert.Equal(t, int64(99), n)

	_, ok = CourseID("no-digits-here").Numeric()
	assert.False(t, ok)
}

func TestCourseIDStorageKey(t *testing.T) {
	assert.Equal(t, "course_7", ParseCourseID("7").StorageKey())
}
