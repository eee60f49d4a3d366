package localstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

func newMemStore() *Store {
	return New(NewMemoryBackend())
}

func TestSaveAndGetCourse(t *testing.T) {
	store := newMemStore()

	course := &model.Course{
		ID:           "course_100",
		Title:        "Curso Local",
		CurrentPhase: 2,
		Modules: []model.Module{
			{ID: "m1", CourseID: "course_100", Title: "Primeiro", Order: 1},
		},
	}
	require.NoError(t, store.SaveCourse(course))

	loaded := store.GetCourse(shared.ParseCourseID("course_100"))
	require.NotNil(t, loaded)
	assert.Equal(t, "Curso Local", loaded.Title)
	assert.Equal(t, 2, loaded.CurrentPhase)
	require.Len(t, loaded.Modules, 1)
	assert.Equal(t, "Primeiro", loaded.Modules[0].Title)
}

func TestGetCourseMissing(t *testing.T) {
	store := newMemStore()
	assert.Nil(t, store.GetCourse(shared.ParseCourseID("course_404")))
}

func TestGetCourseMalformedJSON(t *testing.T) {
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(shared.ParseCourseID("course_1").StorageKey(), "{not json"))

	store := New(backend)
	assert.Nil(t, store.GetCourse(shared.ParseCourseID("course_1")), "corrupt drafts read as absent")
}

func TestCurrentCoursePointer(t *testing.T) {
	store := newMemStore()

	assert.Equal(t, shared.CourseID(""), store.CurrentCourseID())
	assert.Nil(t, store.GetCurrentCourse())

	require.NoError(t, store.SaveCourse(&model.Course{ID: "course_5", Title: "Atual"}))
	require.NoError(t, store.SetCurrentCourseID(shared.ParseCourseID("course_5")))

	assert.Equal(t, "course_5", store.CurrentCourseID().String())
	current := store.GetCurrentCourse()
	require.NotNil(t, current)
	assert.Equal(t, "Atual", current.Title)
}

func TestSavePhaseDataMerges(t *testing.T) {
	store := newMemStore()
	id := shared.ParseCourseID("course_9")
	require.NoError(t, store.SaveCourse(&model.Course{ID: "course_9"}))

	require.NoError(t, store.SavePhaseData(id, 1, map[string]interface{}{"audience": "devs"}))
	require.NoError(t, store.SavePhaseData(id, 1, map[string]interface{}{"theme": "Go"}))
	require.NoError(t, store.SavePhaseData(id, 2, map[string]interface{}{"modules": float64(4)}))

	course := store.GetCourse(id)
	require.NotNil(t, course)

	phase1 := course.Phases[1]
	assert.Equal(t, "devs", phase1.Data["audience"])
	assert.Equal(t, "Go", phase1.Data["theme"])
	assert.False(t, phase1.LastUpdated.IsZero())

	assert.Equal(t, float64(4), course.Phases[2].Data["modules"])
}

func TestSavePhaseDataUnknownCourse(t *testing.T) {
	store := newMemStore()
	assert.NoError(t, store.SavePhaseData(shared.ParseCourseID("course_404"), 1, map[string]interface{}{"k": "v"}))
}

func TestClearCourseData(t *testing.T) {
	store := newMemStore()
	id := shared.ParseCourseID("course_7")

	require.NoError(t, store.SaveCourse(&model.Course{ID: "course_7"}))
	require.NoError(t, store.SetCurrentCourseID(id))

	require.NoError(t, store.ClearCourseData(id))

	assert.Nil(t, store.GetCourse(id))
	assert.Equal(t, shared.CourseID(""), store.CurrentCourseID(), "clearing the current course drops the pointer too")
}

func TestClearCourseDataKeepsOtherPointer(t *testing.T) {
	store := newMemStore()

	require.NoError(t, store.SaveCourse(&model.Course{ID: "course_1"}))
	require.NoError(t, store.SaveCourse(&model.Course{ID: "course_2"}))
	require.NoError(t, store.SetCurrentCourseID(shared.ParseCourseID("course_2")))

	require.NoError(t, store.ClearCourseData(shared.ParseCourseID("course_1")))

	assert.Equal(t, "course_2", store.CurrentCourseID().String())
	assert.NotNil(t, store.GetCourse(shared.ParseCourseID("course_2")))
}
