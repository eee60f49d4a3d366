// Package wizard holds the course creation state machine: one current course,
// five sequential phases, every mutation dual-persisted to the local draft
// store (durable, synchronous) and to the remote sink (best-effort, never
// blocking the caller).
package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/localstore"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

var ErrNotFound = errors.New("course not found")
var ErrNoCurrentCourse = errors.New("no current course")

// RemoteSink is the backend persistence surface. Every call is wrapped in
// best-effort semantics by the store; a sink error is logged and swallowed.
type RemoteSink interface {
	CreateCourse(ctx context.Context, course *model.Course) error
	SaveCourse(ctx context.Context, course *model.Course) error
	SaveModule(ctx context.Context, module *model.Module) error
	SavePhaseData(ctx context.Context, courseID shared.CourseID, phase int, data map[string]interface{}) error
	LoadCourse(ctx context.Context, id shared.CourseID) (*model.Course, error)
}

// BasicInfoPatch shallow-merges into the current course; nil fields are left
// untouched.
type BasicInfoPatch struct {
	Title          *string
	Theme          *string
	EstimatedHours *float64
	Format         *string
	Platform       *string
	DeliveryFormat *string
}

// AIConfigPatch shallow-merges into the current course's AI config.
type AIConfigPatch struct {
	Model            *string
	OptimizationMode *string
	LanguageStyle    *string
	DifficultyLevel  *string
	ContentDensity   *int
	TeachingApproach *string
	ContentTypes     []string
	Language         *string
}

// ModuleContentPatch applies only its non-nil parts.
type ModuleContentPatch struct {
	Text        *string
	VideoScript *string
	Activities  []model.Activity
}

type Store struct {
	mu      sync.Mutex
	local   *localstore.Store
	remote  RemoteSink
	current *model.Course

	// course ids the remote sink acknowledged; module pushes key off this,
	// not off the id shape.
	knownMu sync.Mutex
	known   map[string]bool

	syncPush   bool
	remoteWait sync.WaitGroup
}

type Option func(*Store)

// WithSyncPush makes remote pushes run inline. Tests use it to assert on the
// sink without racing goroutines.
func WithSyncPush() Option {
	return func(s *Store) { s.syncPush = true }
}

func New(local *localstore.Store, remote RemoteSink, opts ...Option) *Store {
	s := &Store{
		local:  local,
		remote: remote,
		known:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current returns the course loaded into the session, or nil.
func (s *Store) Current() *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// push runs a remote call best-effort. Errors never reach the caller.
func (s *Store) push(op string, fn func(ctx context.Context) error) {
	run := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.WithError(err).WithField("op", op).Warn("remote sync failed, local copy is authoritative")
		}
	}
	if s.syncPush {
		run()
		return
	}
	s.remoteWait.Add(1)
	go func() {
		defer s.remoteWait.Done()
		run()
	}()
}

// Flush waits for in-flight remote pushes. Shutdown path only.
func (s *Store) Flush() {
	s.remoteWait.Wait()
}

func (s *Store) persistLocal(course *model.Course) {
	if err := s.local.SaveCourse(course); err != nil {
		log.WithError(err).Warn("local draft save failed, in-memory state stays valid for the session")
	}
}

// CreateNewCourse returns a resumable phase-1 draft when one exists,
// otherwise clears any stale draft and mints a fresh course. The returned
// course is usable immediately; the server-side creation runs best-effort in
// the background.
func (s *Store) CreateNewCourse() *model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	if draft := s.local.GetCurrentCourse(); draft != nil {
		if draft.CurrentPhase == shared.PhaseStrategy && draft.Progress.Phase1 < 100 {
			s.current = draft
			return draft
		}
		if err := s.local.ClearCourseData(shared.CourseID(draft.ID)); err != nil {
			log.WithError(err).Warn("failed to clear stale draft")
		}
	}

	now := time.Now()
	course := &model.Course{
		ID:           shared.NewCourseID().String(),
		CurrentPhase: shared.PhaseStrategy,
		AIConfig:     model.DefaultAIConfig(),
		Modules:      []model.Module{},
		Phases:       make(map[int]model.PhaseData),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.current = course
	s.persistLocal(course)
	if err := s.local.SetCurrentCourseID(shared.CourseID(course.ID)); err != nil {
		log.WithError(err).Warn("failed to set current course pointer")
	}

	if s.remote != nil {
		snapshot := course.Clone()
		s.push("create_course", func(ctx context.Context) error {
			if err := s.remote.CreateCourse(ctx, snapshot); err != nil {
				return err
			}
			s.markKnown(snapshot.ID)
			return nil
		})
	}
	return course
}

// LoadCourse prefers the remote row and falls back to the local draft on any
// failure. ErrNotFound when neither side has the id.
func (s *Store) LoadCourse(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	if s.remote != nil {
		course, err := s.remote.LoadCourse(ctx, id)
		if err == nil && course != nil {
			s.markKnown(course.ID)
			s.mu.Lock()
			s.current = course
			s.mu.Unlock()
			s.persistLocal(course)
			if err := s.local.SetCurrentCourseID(id); err != nil {
				log.WithError(err).Warn("failed to set current course pointer")
			}
			return course, nil
		}
		if err != nil {
			log.WithError(err).WithField("course_id", id.String()).Debug("remote load failed, trying local draft")
		}
	}

	if course := s.local.GetCourse(id); course != nil {
		s.mu.Lock()
		s.current = course
		s.mu.Unlock()
		return course, nil
	}
	return nil, ErrNotFound
}

func (s *Store) mutate(fn func(course *model.Course)) (*model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, ErrNoCurrentCourse
	}
	fn(s.current)
	s.current.UpdatedAt = time.Now()
	s.persistLocal(s.current)
	return s.current, nil
}

func (s *Store) markKnown(id string) {
	s.knownMu.Lock()
	s.known[id] = true
	s.knownMu.Unlock()
}

func (s *Store) isKnown(id string) bool {
	s.knownMu.Lock()
	defer s.knownMu.Unlock()
	return s.known[id]
}

func (s *Store) pushCourse() {
	if s.remote == nil {
		return
	}
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	// Deep copy under the lock; the push goroutine must never see the live
	// maps and slices mid-mutation.
	snapshot := s.current.Clone()
	s.mu.Unlock()
	s.push("save_course", func(ctx context.Context) error {
		return s.remote.SaveCourse(ctx, snapshot)
	})
}

func (s *Store) SetBasicInfo(patch BasicInfoPatch) (*model.Course, error) {
	course, err := s.mutate(func(c *model.Course) {
		if patch.Title != nil {
			c.Title = *patch.Title
		}
		if patch.Theme != nil {
			c.Theme = *patch.Theme
		}
		if patch.EstimatedHours != nil {
			c.EstimatedHours = *patch.EstimatedHours
		}
		if patch.Format != nil {
			c.Format = *patch.Format
		}
		if patch.Platform != nil {
			c.Platform = *patch.Platform
		}
		if patch.DeliveryFormat != nil {
			c.DeliveryFormat = *patch.DeliveryFormat
		}
	})
	if err != nil {
		return nil, err
	}
	s.pushCourse()
	return course, nil
}

func (s *Store) UpdateAIConfig(patch AIConfigPatch) (*model.Course, error) {
	course, err := s.mutate(func(c *model.Course) {
		if patch.Model != nil {
			c.AIConfig.Model = *patch.Model
		}
		if patch.OptimizationMode != nil {
			c.AIConfig.OptimizationMode = *patch.OptimizationMode
		}
		if patch.LanguageStyle != nil {
			c.AIConfig.LanguageStyle = *patch.LanguageStyle
		}
		if patch.DifficultyLevel != nil {
			c.AIConfig.DifficultyLevel = *patch.DifficultyLevel
		}
		if patch.ContentDensity != nil {
			c.AIConfig.ContentDensity = *patch.ContentDensity
		}
		if patch.TeachingApproach != nil {
			c.AIConfig.TeachingApproach = *patch.TeachingApproach
		}
		if patch.ContentTypes != nil {
			c.AIConfig.ContentTypes = patch.ContentTypes
		}
		if patch.Language != nil {
			c.AIConfig.Language = *patch.Language
		}
	})
	if err != nil {
		return nil, err
	}
	s.pushCourse()
	return course, nil
}

// UpdatePhaseData merges the partial payload into the phase's existing data
// and stamps it. The single phase is persisted immediately along with the
// whole course.
func (s *Store) UpdatePhaseData(phase int, data map[string]interface{}) (*model.Course, error) {
	if phase < shared.PhaseStrategy || phase > shared.PhaseReview {
		return nil, errors.New("phase out of range")
	}
	var payload map[string]interface{}
	course, err := s.mutate(func(c *model.Course) {
		if c.Phases == nil {
			c.Phases = make(map[int]model.PhaseData)
		}
		entry := c.Phases[phase]
		if entry.Data == nil {
			entry.Data = make(map[string]interface{})
		}
		for k, v := range data {
			entry.Data[k] = v
		}
		entry.LastUpdated = time.Now()
		c.Phases[phase] = entry

		// Copy the merged payload while the lock is held; the push below
		// must not read the live map.
		payload = make(map[string]interface{}, len(entry.Data))
		for k, v := range entry.Data {
			payload[k] = v
		}
	})
	if err != nil {
		return nil, err
	}

	if err := s.local.SavePhaseData(shared.CourseID(course.ID), phase, data); err != nil {
		log.WithError(err).Warn("local phase save failed")
	}
	if s.remote != nil {
		id := shared.CourseID(course.ID)
		s.push("save_phase_data", func(ctx context.Context) error {
			return s.remote.SavePhaseData(ctx, id, phase, payload)
		})
	}
	return course, nil
}

// UpdateModules replaces the module list and re-normalizes ordering. When the
// backend acknowledged this course, each module is pushed individually.
func (s *Store) UpdateModules(modules []model.Module) (*model.Course, error) {
	var snapshots []model.Module
	course, err := s.mutate(func(c *model.Course) {
		for i := range modules {
			modules[i].CourseID = c.ID
		}
		model.NormalizeModuleOrder(modules)
		c.Modules = modules
		snapshots = cloneModules(c.Modules)
	})
	if err != nil {
		return nil, err
	}
	s.pushModules(course.ID, snapshots)
	return course, nil
}

func cloneModules(modules []model.Module) []model.Module {
	copied := make([]model.Module, len(modules))
	for i := range modules {
		copied[i] = *modules[i].Clone()
	}
	return copied
}

func (s *Store) pushModules(courseID string, modules []model.Module) {
	if s.remote == nil {
		return
	}
	if !s.isKnown(courseID) {
		return
	}
	for i := range modules {
		mod := modules[i]
		s.push("save_module", func(ctx context.Context) error {
			return s.remote.SaveModule(ctx, &mod)
		})
	}
}

func (s *Store) findModule(c *model.Course, moduleID string) *model.Module {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return &c.Modules[i]
		}
	}
	return nil
}

func (s *Store) UpdateModuleStatus(moduleID, status, imageURL string) (*model.Course, error) {
	var updated *model.Module
	course, err := s.mutate(func(c *model.Course) {
		if mod := s.findModule(c, moduleID); mod != nil {
			mod.Status = status
			if imageURL != "" {
				mod.ImageURL = imageURL
			}
			mod.UpdatedAt = time.Now()
			updated = mod.Clone()
		}
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.pushModule(course.ID, updated)
	return course, nil
}

func (s *Store) UpdateModuleContent(moduleID string, patch ModuleContentPatch) (*model.Course, error) {
	var updated *model.Module
	course, err := s.mutate(func(c *model.Course) {
		mod := s.findModule(c, moduleID)
		if mod == nil {
			return
		}
		if mod.Content == nil {
			mod.Content = &model.ModuleContent{}
		}
		if patch.Text != nil {
			mod.Content.Text = *patch.Text
		}
		if patch.VideoScript != nil {
			mod.Content.VideoScript = *patch.VideoScript
		}
		if patch.Activities != nil {
			mod.Content.Activities = patch.Activities
		}
		mod.UpdatedAt = time.Now()
		updated = mod.Clone()
	})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	s.pushModule(course.ID, updated)
	return course, nil
}

func (s *Store) pushModule(courseID string, mod *model.Module) {
	if s.remote == nil {
		return
	}
	if !s.isKnown(courseID) {
		return
	}
	s.push("save_module", func(ctx context.Context) error {
		return s.remote.SaveModule(ctx, mod)
	})
}

// RemoveModule deletes a module and closes the order gap.
func (s *Store) RemoveModule(moduleID string) (*model.Course, error) {
	removed := false
	course, err := s.mutate(func(c *model.Course) {
		kept := c.Modules[:0]
		for _, mod := range c.Modules {
			if mod.ID == moduleID {
				removed = true
				continue
			}
			kept = append(kept, mod)
		}
		c.Modules = kept
		model.NormalizeModuleOrder(c.Modules)
	})
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, ErrNotFound
	}
	s.pushCourse()
	return course, nil
}

// ReorderModules applies the given id permutation; ids missing from the
// permutation keep their relative order at the tail. Order comes out
// contiguous 1..N either way.
func (s *Store) ReorderModules(orderedIDs []string) (*model.Course, error) {
	course, err := s.mutate(func(c *model.Course) {
		index := make(map[string]model.Module, len(c.Modules))
		for _, mod := range c.Modules {
			index[mod.ID] = mod
		}
		reordered := make([]model.Module, 0, len(c.Modules))
		for _, id := range orderedIDs {
			if mod, ok := index[id]; ok {
				reordered = append(reordered, mod)
				delete(index, id)
			}
		}
		for _, mod := range c.Modules {
			if _, left := index[mod.ID]; left {
				reordered = append(reordered, mod)
			}
		}
		c.Modules = reordered
		model.NormalizeModuleOrder(c.Modules)
	})
	if err != nil {
		return nil, err
	}
	s.pushCourse()
	return course, nil
}

// MoveToNextPhase marks the current phase complete and advances. At phase 5
// it is an idempotent no-op.
func (s *Store) MoveToNextPhase() (*model.Course, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoCurrentCourse
	}
	if s.current.CurrentPhase >= shared.PhaseReview {
		// Already at review; the course stays untouched, nothing persists.
		course := s.current
		s.mu.Unlock()
		return course, nil
	}
	s.current.Progress.SetPhase(s.current.CurrentPhase, 100)
	s.current.CurrentPhase++
	s.current.UpdatedAt = time.Now()
	s.persistLocal(s.current)
	course := s.current
	s.mu.Unlock()

	s.pushCourse()
	return course, nil
}

// UpdateProgress clamps the value, skips the write when nothing changed, and
// recomputes the overall mean.
func (s *Store) UpdateProgress(phase, value int) (*model.Course, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, ErrNoCurrentCourse
	}
	if !s.current.Progress.SetPhase(phase, value) {
		course := s.current
		s.mu.Unlock()
		return course, nil
	}
	s.current.UpdatedAt = time.Now()
	s.persistLocal(s.current)
	course := s.current
	s.mu.Unlock()

	s.pushCourse()
	return course, nil
}
