package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPhaseClampsValue(t *testing.T) {
	var p Progress

	assert.True(t, p.SetPhase(1, 150))
	assert.Equal(t, 100, p.Phase1)

	p.SetPhase(2, 50)
	p.SetPhase(2, -30)
	assert.Equal(t, 0, p.Phase2)
}

func TestSetPhaseReportsChange(t *testing.T) {
	var p Progress

	assert.True(t, p.SetPhase(3, 40))
	assert.False(t, p.SetPhase(3, 40), "same value must report no change")
	assert.True(t, p.SetPhase(3, 140), "140 clamps to 100, a real change")
	assert.False(t, p.SetPhase(3, 100), "clamped value now matches the stored one")

	assert.False(t, p.SetPhase(2, -5), "negative clamps to the zero default")
	assert.False(t, p.SetPhase(9, 50), "unknown phase is rejected")
}

func TestRecomputeRoundsMean(t *testing.T) {
	p := Progress{Phase1: 100, Phase2: 50}
	p.Recompute()
	assert.Equal(t, 30, p.Overall)

	p = Progress{Phase1: 33, Phase2: 33, Phase3: 33}
	p.Recompute()
	// 99 / 5 = 19.8 rounds to 20
	assert.Equal(t, 20, p.Overall)

	p = Progress{Phase1: 100, Phase2: 100, Phase3: 100, Phase4: 100, Phase5: 100}
	p.Recompute()
	assert.Equal(t, 100, p.Overall)
}

func TestSetPhaseRecomputesOverall(t *testing.T) {
	var p Progress
	p.SetPhase(1, 100)
	p.SetPhase(2, 60)
	assert.Equal(t, 32, p.Overall)
}

func TestPhaseAccessor(t *testing.T) {
	p := Progress{Phase1: 1, Phase2: 2, Phase3: 3, Phase4: 4, Phase5: 5}
	for n := 1; n <= 5; n++ {
		assert.Equal(t, n, p.Phase(n))
	}
	assert.Equal(t, 0, p.Phase(0))
	assert.Equal(t, 0, p.Phase(6))
}

func TestNormalizeModuleOrder(t *testing.T) {
	modules := []Module{
		{ID: "a", Order: 7},
		{ID: "b", Order: 0},
		{ID: "c", Order: 3},
	}
	NormalizeModuleOrder(modules)

	for i, mod := range modules {
		assert.Equal(t, i+1, mod.Order)
	}
}

func TestAnswerIndex(t *testing.T) {
	q := Question{Options: []string{"a", "b", "c"}}

	q.Answer = 1
	idx, ok := q.AnswerIndex()
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	// JSON decoding hands numbers over as float64.
	q.Answer = float64(2)
	idx, ok = q.AnswerIndex()
	require.True(t, ok)
	assert.Equal(t, 2, idx)

	q.Answer = 3
	_, ok = q.AnswerIndex()
	assert.False(t, ok)

	q.Answer = -1
	_, ok = q.AnswerIndex()
	assert.False(t, ok)

	q.Answer = "b"
	_, ok = q.AnswerIndex()
	assert.False(t, ok)
}

func TestCourseCloneDetaches(t *testing.T) {
	course := &Course{
		ID:    "course_1",
		Title: "original",
		Modules: []Module{{
			ID:     "m1",
			Topics: []string{"t1"},
			Content: &ModuleContent{
				Text: "antes",
				Activities: []Activity{{
					Questions: []Question{{Question: "q1"}},
				}},
			},
		}},
		Phases: map[int]PhaseData{
			1: {Data: map[string]interface{}{"k": "v"}},
		},
	}

	clone := course.Clone()

	course.Modules[0].Content.Text = "depois"
	course.Modules[0].Topics[0] = "t2"
	course.Modules[0].Content.Activities[0].Questions[0].Question = "q2"
	course.Phases[1].Data["k"] = "w"
	course.Phases[2] = PhaseData{}

	assert.Equal(t, "antes", clone.Modules[0].Content.Text)
	assert.Equal(t, "t1", clone.Modules[0].Topics[0])
	assert.Equal(t, "q1", clone.Modules[0].Content.Activities[0].Questions[0].Question)
	assert.Equal(t, "v", clone.Phases[1].Data["k"])
	_, present := clone.Phases[2]
	assert.False(t, present)
}

func TestDefaultAIConfig(t *testing.T) {
	cfg := DefaultAIConfig()
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.NotEmpty(t, cfg.Language)
}
