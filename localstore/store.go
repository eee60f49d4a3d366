package localstore

import (
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

const currentCourseKey = "currentCourseId"

// Store wraps a Backend with the course-level operations the wizard needs.
// All operations are synchronous; a missing or unreadable course is a nil
// return, never an error.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) SaveCourse(course *model.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCourseLocked(course)
}

func (s *Store) saveCourseLocked(course *model.Course) error {
	body, err := sonic.Marshal(course)
	if err != nil {
		return err
	}
	return s.backend.Set(shared.CourseID(course.ID).StorageKey(), string(body))
}

func (s *Store) GetCourse(id shared.CourseID) *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCourseLocked(id)
}

func (s *Store) getCourseLocked(id shared.CourseID) *model.Course {
	raw, ok := s.backend.Get(id.StorageKey())
	if !ok {
		return nil
	}
	var course model.Course
	if err := sonic.UnmarshalString(raw, &course); err != nil {
		// Corrupt drafts read as absent.
		return nil
	}
	return &course
}

// SetCurrentCourseID moves the single-slot "current course" pointer.
func (s *Store) SetCurrentCourseID(id shared.CourseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Set(currentCourseKey, id.String())
}

func (s *Store) CurrentCourseID() shared.CourseID {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.backend.Get(currentCourseKey)
	if !ok {
		return ""
	}
	return shared.CourseID(raw)
}

func (s *Store) GetCurrentCourse() *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.backend.Get(currentCourseKey)
	if !ok || raw == "" {
		return nil
	}
	return s.getCourseLocked(shared.CourseID(raw))
}

// SavePhaseData merges one phase payload into the stored course JSON.
func (s *Store) SavePhaseData(id shared.CourseID, phase int, data map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	course := s.getCourseLocked(id)
	if course == nil {
		return nil
	}
	if course.Phases == nil {
		course.Phases = make(map[int]model.PhaseData)
	}
	entry := course.Phases[phase]
	if entry.Data == nil {
		entry.Data = make(map[string]interface{})
	}
	for k, v := range data {
		entry.Data[k] = v
	}
	entry.LastUpdated = time.Now()
	course.Phases[phase] = entry
	return s.saveCourseLocked(course)
}

// ClearCourseData removes the stored course and, when it is the current one,
// the pointer as well.
func (s *Store) ClearCourseData(id shared.CourseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(id.StorageKey()); err != nil {
		return err
	}
	if raw, ok := s.backend.Get(currentCourseKey); ok && raw == id.String() {
		return s.backend.Delete(currentCourseKey)
	}
	return nil
}
