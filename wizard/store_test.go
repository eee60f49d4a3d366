package wizard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edforge-labs/coursegen_api/localstore"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

// fakeSink records every remote call so tests can assert on the sync path.
type fakeSink struct {
	mu       sync.Mutex
	created  []model.Course
	saved    []model.Course
	modules  []model.Module
	phases   map[int]map[string]interface{}
	courses  map[string]*model.Course
	failNext error
}

func newFakeSink() *fakeSink {
	return &fakeSink{
		phases:  make(map[int]map[string]interface{}),
		courses: make(map[string]*model.Course),
	}
}

func (f *fakeSink) takeErr() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeSink) CreateCourse(_ context.Context, course *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	f.created = append(f.created, *course)
	return nil
}

func (f *fakeSink) SaveCourse(_ context.Context, course *model.Course) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	f.saved = append(f.saved, *course)
	return nil
}

func (f *fakeSink) SaveModule(_ context.Context, mod *model.Module) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	f.modules = append(f.modules, *mod)
	return nil
}

func (f *fakeSink) SavePhaseData(_ context.Context, _ shared.CourseID, phase int, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.takeErr(); err != nil {
		return err
	}
	f.phases[phase] = data
	return nil
}

func (f *fakeSink) LoadCourse(_ context.Context, id shared.CourseID) (*model.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if course, ok := f.courses[id.String()]; ok {
		copied := *course
		return &copied, nil
	}
	return nil, errors.New("not found")
}

func newTestStore(t *testing.T) (*Store, *fakeSink) {
	t.Helper()
	sink := newFakeSink()
	local := localstore.New(localstore.NewMemoryBackend())
	return New(local, sink, WithSyncPush()), sink
}

func TestCreateNewCourse(t *testing.T) {
	store, sink := newTestStore(t)

	course := store.CreateNewCourse()
	require.NotNil(t, course)

	assert.Contains(t, course.ID, "course_")
	assert.Equal(t, shared.PhaseStrategy, course.CurrentPhase)
	assert.Equal(t, "gpt-4o-mini", course.AIConfig.Model)
	assert.NotNil(t, course.Modules)

	require.Len(t, sink.created, 1)
	assert.Equal(t, course.ID, sink.created[0].ID)
}

func TestCreateNewCourseResumesPhase1Draft(t *testing.T) {
	store, _ := newTestStore(t)

	first := store.CreateNewCourse()
	second := store.CreateNewCourse()

	assert.Equal(t, first.ID, second.ID, "an unfinished phase-1 draft must be resumed, not replaced")
}

func TestCreateNewCourseMintsFreshAfterPhase1(t *testing.T) {
	store, _ := newTestStore(t)

	first := store.CreateNewCourse()
	_, err := store.MoveToNextPhase()
	require.NoError(t, err)

	second := store.CreateNewCourse()
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateNewCourseMintsFreshWhenPhase1Complete(t *testing.T) {
	store, _ := newTestStore(t)

	first := store.CreateNewCourse()
	_, err := store.UpdateProgress(shared.PhaseStrategy, 100)
	require.NoError(t, err)

	second := store.CreateNewCourse()
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateCourseSurvivesRemoteFailure(t *testing.T) {
	sink := newFakeSink()
	sink.failNext = errors.New("db down")
	local := localstore.New(localstore.NewMemoryBackend())
	store := New(local, sink, WithSyncPush())

	course := store.CreateNewCourse()
	require.NotNil(t, course)

	// Local draft is authoritative; the sink saw nothing.
	assert.Empty(t, sink.created)
	assert.NotNil(t, local.GetCourse(shared.CourseID(course.ID)))
}

func TestSetBasicInfo(t *testing.T) {
	store, sink := newTestStore(t)
	store.CreateNewCourse()

	title := "Curso de Fotografia"
	hours := 24.5
	course, err := store.SetBasicInfo(BasicInfoPatch{Title: &title, EstimatedHours: &hours})
	require.NoError(t, err)

	assert.Equal(t, "Curso de Fotografia", course.Title)
	assert.Equal(t, 24.5, course.EstimatedHours)
	require.NotEmpty(t, sink.saved)
	assert.Equal(t, "Curso de Fotografia", sink.saved[len(sink.saved)-1].Title)
}

func TestSetBasicInfoWithoutCourse(t *testing.T) {
	store, _ := newTestStore(t)
	title := "x"
	_, err := store.SetBasicInfo(BasicInfoPatch{Title: &title})
	assert.ErrorIs(t, err, ErrNoCurrentCourse)
}

func TestUpdateAIConfigPartial(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	style := "formal"
	course, err := store.UpdateAIConfig(AIConfigPatch{LanguageStyle: &style})
	require.NoError(t, err)

	assert.Equal(t, "formal", course.AIConfig.LanguageStyle)
	assert.Equal(t, "gpt-4o-mini", course.AIConfig.Model, "untouched fields keep defaults")
}

func TestUpdatePhaseDataMerges(t *testing.T) {
	store, sink := newTestStore(t)
	store.CreateNewCourse()

	_, err := store.UpdatePhaseData(1, map[string]interface{}{"audience": "developers"})
	require.NoError(t, err)
	course, err := store.UpdatePhaseData(1, map[string]interface{}{"theme": "Go"})
	require.NoError(t, err)

	entry := course.Phases[1]
	assert.Equal(t, "developers", entry.Data["audience"])
	assert.Equal(t, "Go", entry.Data["theme"])
	assert.False(t, entry.LastUpdated.IsZero())

	assert.Equal(t, "developers", sink.phases[1]["audience"])
}

func TestUpdatePhaseDataOutOfRange(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	_, err := store.UpdatePhaseData(0, map[string]interface{}{})
	assert.Error(t, err)
	_, err = store.UpdatePhaseData(6, map[string]interface{}{})
	assert.Error(t, err)
}

func modulesNamed(titles ...string) []model.Module {
	modules := make([]model.Module, len(titles))
	for i, title := range titles {
		modules[i] = model.Module{ID: title, Title: title, Order: 99}
	}
	return modules
}

func TestUpdateModulesNormalizesOrder(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	course, err := store.UpdateModules(modulesNamed("a", "b", "c"))
	require.NoError(t, err)

	require.Len(t, course.Modules, 3)
	for i, mod := range course.Modules {
		assert.Equal(t, i+1, mod.Order)
		assert.Equal(t, course.ID, mod.CourseID)
	}
}

func TestUpdateModulesPushKeyedOffAcknowledgement(t *testing.T) {
	sink := newFakeSink()
	local := localstore.New(localstore.NewMemoryBackend())

	// Unacknowledged course: module pushes are skipped.
	sink.failNext = errors.New("create failed")
	store := New(local, sink, WithSyncPush())
	store.CreateNewCourse()

	_, err := store.UpdateModules(modulesNamed("a"))
	require.NoError(t, err)
	assert.Empty(t, sink.modules)

	// Acknowledged course: modules flow through.
	store2, sink2 := newTestStore(t)
	store2.CreateNewCourse()
	_, err = store2.UpdateModules(modulesNamed("a", "b"))
	require.NoError(t, err)
	assert.Len(t, sink2.modules, 2)
}

func TestRemoveModuleClosesOrderGap(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()
	_, err := store.UpdateModules(modulesNamed("a", "b", "c"))
	require.NoError(t, err)

	course, err := store.RemoveModule("b")
	require.NoError(t, err)

	require.Len(t, course.Modules, 2)
	assert.Equal(t, "a", course.Modules[0].ID)
	assert.Equal(t, 1, course.Modules[0].Order)
	assert.Equal(t, "c", course.Modules[1].ID)
	assert.Equal(t, 2, course.Modules[1].Order)
}

func TestRemoveModuleUnknownID(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	_, err := store.RemoveModule("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReorderModules(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()
	_, err := store.UpdateModules(modulesNamed("a", "b", "c"))
	require.NoError(t, err)

	course, err := store.ReorderModules([]string{"c", "a"})
	require.NoError(t, err)

	require.Len(t, course.Modules, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{course.Modules[0].ID, course.Modules[1].ID, course.Modules[2].ID})
	for i, mod := range course.Modules {
		assert.Equal(t, i+1, mod.Order)
	}
}

func TestUpdateModuleStatus(t *testing.T) {
	store, sink := newTestStore(t)
	store.CreateNewCourse()
	_, err := store.UpdateModules(modulesNamed("a"))
	require.NoError(t, err)

	course, err := store.UpdateModuleStatus("a", shared.ModuleStatusGenerated, "http://img")
	require.NoError(t, err)

	assert.Equal(t, shared.ModuleStatusGenerated, course.Modules[0].Status)
	assert.Equal(t, "http://img", course.Modules[0].ImageURL)
	last := sink.modules[len(sink.modules)-1]
	assert.Equal(t, shared.ModuleStatusGenerated, last.Status)
}

func TestUpdateModuleContent(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()
	_, err := store.UpdateModules(modulesNamed("a"))
	require.NoError(t, err)

	text := "corpo da aula"
	course, err := store.UpdateModuleContent("a", ModuleContentPatch{
		Text:       &text,
		Activities: []model.Activity{{Type: "quiz", Title: "Quiz 1"}},
	})
	require.NoError(t, err)

	require.NotNil(t, course.Modules[0].Content)
	assert.Equal(t, "corpo da aula", course.Modules[0].Content.Text)
	assert.Len(t, course.Modules[0].Content.Activities, 1)
}

func TestMoveToNextPhase(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	course, err := store.MoveToNextPhase()
	require.NoError(t, err)

	assert.Equal(t, 2, course.CurrentPhase)
	assert.Equal(t, 100, course.Progress.Phase1, "leaving a phase marks it complete")
}

func TestMoveToNextPhaseStopsAtReview(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	for i := 0; i < 10; i++ {
		_, err := store.MoveToNextPhase()
		require.NoError(t, err)
	}

	course := store.Current()
	assert.Equal(t, shared.PhaseReview, course.CurrentPhase)
}

func TestUpdateProgressClampsAndRecomputes(t *testing.T) {
	store, _ := newTestStore(t)
	store.CreateNewCourse()

	course, err := store.UpdateProgress(1, 150)
	require.NoError(t, err)
	assert.Equal(t, 100, course.Progress.Phase1)

	course, err = store.UpdateProgress(2, -20)
	require.NoError(t, err)
	assert.Equal(t, 0, course.Progress.Phase2)

	course, err = store.UpdateProgress(3, 50)
	require.NoError(t, err)
	// (100 + 0 + 50 + 0 + 0) / 5 = 30
	assert.Equal(t, 30, course.Progress.Overall)
}

func TestUpdateProgressSkipsUnchangedWrite(t *testing.T) {
	store, sink := newTestStore(t)
	store.CreateNewCourse()

	_, err := store.UpdateProgress(1, 40)
	require.NoError(t, err)
	writes := len(sink.saved)

	_, err = store.UpdateProgress(1, 40)
	require.NoError(t, err)
	assert.Equal(t, writes, len(sink.saved), "same value must not trigger another remote save")
}

func TestLoadCoursePrefersRemote(t *testing.T) {
	store, sink := newTestStore(t)

	sink.courses["course_42"] = &model.Course{ID: "course_42", Title: "remote copy"}

	course, err := store.LoadCourse(context.Background(), shared.ParseCourseID("course_42"))
	require.NoError(t, err)
	assert.Equal(t, "remote copy", course.Title)
}

func TestLoadCourseFallsBackToLocalDraft(t *testing.T) {
	sink := newFakeSink()
	local := localstore.New(localstore.NewMemoryBackend())
	require.NoError(t, local.SaveCourse(&model.Course{ID: "course_7", Title: "draft copy"}))
	store := New(local, sink, WithSyncPush())

	course, err := store.LoadCourse(context.Background(), shared.ParseCourseID("course_7"))
	require.NoError(t, err)
	assert.Equal(t, "draft copy", course.Title)
}

func TestLoadCourseNotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.LoadCourse(context.Background(), shared.ParseCourseID("course_999"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMoveToNextPhaseAtReviewLeavesCourseUntouched(t *testing.T) {
	store, sink := newTestStore(t)
	store.CreateNewCourse()

	for i := 0; i < 4; i++ {
		_, err := store.MoveToNextPhase()
		require.NoError(t, err)
	}
	course := store.Current()
	require.Equal(t, shared.PhaseReview, course.CurrentPhase)

	stamp := course.UpdatedAt
	writes := len(sink.saved)

	again, err := store.MoveToNextPhase()
	require.NoError(t, err)

	assert.Equal(t, shared.PhaseReview, again.CurrentPhase)
	assert.Equal(t, stamp, again.UpdatedAt, "a no-op advance must not restamp the course")
	assert.Equal(t, writes, len(sink.saved), "a no-op advance must not persist")
}

// pointerSink keeps the exact values handed to it so tests can check that
// pushes receive detached snapshots, not the live course.
type pointerSink struct {
	created *model.Course
	saved   *model.Course
	module  *model.Module
	phase   map[string]interface{}
}

func (p *pointerSink) CreateCourse(_ context.Context, course *model.Course) error {
	p.created = course
	return nil
}

func (p *pointerSink) SaveCourse(_ context.Context, course *model.Course) error {
	p.saved = course
	return nil
}

func (p *pointerSink) SaveModule(_ context.Context, mod *model.Module) error {
	p.module = mod
	return nil
}

func (p *pointerSink) SavePhaseData(_ context.Context, _ shared.CourseID, _ int, data map[string]interface{}) error {
	p.phase = data
	return nil
}

func (p *pointerSink) LoadCourse(_ context.Context, _ shared.CourseID) (*model.Course, error) {
	return nil, errors.New("not found")
}

func newPointerStore(t *testing.T) (*Store, *pointerSink) {
	t.Helper()
	sink := &pointerSink{}
	return New(localstore.New(localstore.NewMemoryBackend()), sink, WithSyncPush()), sink
}

func TestPushCourseIsDetachedFromLaterMutations(t *testing.T) {
	store, sink := newPointerStore(t)
	store.CreateNewCourse()

	title := "antes"
	_, err := store.SetBasicInfo(BasicInfoPatch{Title: &title})
	require.NoError(t, err)
	pushed := sink.saved
	require.NotNil(t, pushed)

	_, err = store.UpdateModules(modulesNamed("a"))
	require.NoError(t, err)
	_, err = store.UpdatePhaseData(2, map[string]interface{}{"k": "v"})
	require.NoError(t, err)

	assert.Equal(t, "antes", pushed.Title)
	assert.Empty(t, pushed.Modules, "pushed snapshot must not see modules added afterwards")
	_, present := pushed.Phases[2]
	assert.False(t, present, "pushed snapshot must not see phase data written afterwards")
}

func TestPushPhaseDataIsDetachedFromLaterMerges(t *testing.T) {
	store, sink := newPointerStore(t)
	store.CreateNewCourse()

	_, err := store.UpdatePhaseData(1, map[string]interface{}{"audience": "devs"})
	require.NoError(t, err)
	pushed := sink.phase

	_, err = store.UpdatePhaseData(1, map[string]interface{}{"audience": "managers", "theme": "Go"})
	require.NoError(t, err)

	assert.Equal(t, "devs", pushed["audience"])
	_, present := pushed["theme"]
	assert.False(t, present)
}

func TestPushModuleIsDetachedFromLaterContentEdits(t *testing.T) {
	store, sink := newPointerStore(t)
	store.CreateNewCourse()
	_, err := store.UpdateModules(modulesNamed("a"))
	require.NoError(t, err)

	first := "primeiro"
	_, err = store.UpdateModuleContent("a", ModuleContentPatch{Text: &first})
	require.NoError(t, err)
	pushed := sink.module
	require.NotNil(t, pushed)
	require.NotNil(t, pushed.Content)

	second := "segundo"
	_, err = store.UpdateModuleContent("a", ModuleContentPatch{Text: &second})
	require.NoError(t, err)

	assert.Equal(t, "primeiro", pushed.Content.Text)
}

// walkingSink reads every pushed structure the way a real serializer would,
// so the race detector can catch pushes that share state with the store.
type walkingSink struct {
	walked atomic.Int64
}

func (w *walkingSink) walk(course *model.Course) {
	n := len(course.Title)
	for _, entry := range course.Phases {
		n += len(entry.Data)
	}
	for _, mod := range course.Modules {
		n += len(mod.Title)
		if mod.Content != nil {
			n += len(mod.Content.Activities)
		}
	}
	w.walked.Add(int64(n))
}

func (w *walkingSink) CreateCourse(_ context.Context, course *model.Course) error {
	w.walk(course)
	return nil
}

func (w *walkingSink) SaveCourse(_ context.Context, course *model.Course) error {
	w.walk(course)
	return nil
}

func (w *walkingSink) SaveModule(_ context.Context, mod *model.Module) error {
	w.walked.Add(int64(len(mod.Title)))
	return nil
}

func (w *walkingSink) SavePhaseData(_ context.Context, _ shared.CourseID, _ int, data map[string]interface{}) error {
	w.walked.Add(int64(len(data)))
	return nil
}

func (w *walkingSink) LoadCourse(_ context.Context, _ shared.CourseID) (*model.Course, error) {
	return nil, errors.New("not found")
}

func TestBackgroundPushDuringConcurrentMutation(t *testing.T) {
	sink := &walkingSink{}
	store := New(localstore.New(localstore.NewMemoryBackend()), sink)
	store.CreateNewCourse()

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				phase := 1 + (i % 5)
				_, err := store.UpdatePhaseData(phase, map[string]interface{}{"iter": i, "writer": g})
				assert.NoError(t, err)
				_, err = store.UpdateModules(modulesNamed("a", "b"))
				assert.NoError(t, err)
				_, err = store.UpdateProgress(phase, (g*25+i)%101)
				assert.NoError(t, err)
			}
		}(g)
	}
	wg.Wait()
	store.Flush()

	assert.Greater(t, sink.walked.Load(), int64(0))
}
