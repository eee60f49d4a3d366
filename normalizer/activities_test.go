package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validActivitiesJSON = `{
	"practicalExercises": [
		{
			"type": "exercise",
			"title": "Monte uma composição",
			"description": "Aplique a regra dos terços em três fotos.",
			"questions": []
		}
	],
	"assessmentQuestions": [
		{
			"question": "O que controla a profundidade de campo?",
			"options": ["Abertura", "ISO", "Balanço de branco"],
			"answer": 0,
			"explanation": "A abertura determina a profundidade de campo."
		}
	]
}`

func TestParseActivities(t *testing.T) {
	payload, err := ParseActivities(validActivitiesJSON)
	require.NoError(t, err)

	require.Len(t, payload.PracticalExercises, 1)
	assert.Equal(t, "Monte uma composição", payload.PracticalExercises[0].Title)

	require.Len(t, payload.AssessmentQuestions, 1)
	idx, ok := payload.AssessmentQuestions[0].AnswerIndex()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestParseActivitiesStripsMarkdownFence(t *testing.T) {
	fenced := "```json\n" + validActivitiesJSON + "\n```"

	payload, err := ParseActivities(fenced)
	require.NoError(t, err)
	assert.Len(t, payload.AssessmentQuestions, 1)
}

func TestParseActivitiesStripsBareFence(t *testing.T) {
	fenced := "```\n" + validActivitiesJSON + "\n```"

	payload, err := ParseActivities(fenced)
	require.NoError(t, err)
	assert.Len(t, payload.PracticalExercises, 1)
}

func TestParseActivitiesDropsOutOfRangeAnswers(t *testing.T) {
	raw := `{
		"practicalExercises": [],
		"assessmentQuestions": [
			{"question": "válida", "options": ["a", "b"], "answer": 1},
			{"question": "fora do intervalo", "options": ["a", "b"], "answer": 5},
			{"question": "negativa", "options": ["a", "b"], "answer": -1},
			{"question": "resposta textual", "options": ["a", "b"], "answer": "b"},
			{"question": "sem opções", "answer": 99}
		]
	}`

	payload, err := ParseActivities(raw)
	require.NoError(t, err)

	questions := payload.AssessmentQuestions
	require.Len(t, questions, 3)
	assert.Equal(t, "válida", questions[0].Question)
	assert.Equal(t, "resposta textual", questions[1].Question)
	assert.Equal(t, "sem opções", questions[2].Question)
}

func TestParseActivitiesDropsInvalidExerciseQuestions(t *testing.T) {
	raw := `{
		"practicalExercises": [
			{
				"type": "quiz",
				"title": "Quiz",
				"questions": [
					{"question": "ok", "options": ["a", "b", "c"], "answer": 2},
					{"question": "ruim", "options": ["a"], "answer": 3}
				]
			}
		],
		"assessmentQuestions": []
	}`

	payload, err := ParseActivities(raw)
	require.NoError(t, err)

	require.Len(t, payload.PracticalExercises, 1)
	require.Len(t, payload.PracticalExercises[0].Questions, 1)
	assert.Equal(t, "ok", payload.PracticalExercises[0].Questions[0].Question)
}

func TestParseActivitiesMalformedJSON(t *testing.T) {
	_, err := ParseActivities(`{"practicalExercises": [`)
	assert.Error(t, err)
}

func TestParseActivitiesEmpty(t *testing.T) {
	_, err := ParseActivities("   ")
	assert.Error(t, err)

	_, err = ParseActivities("```json\n```")
	assert.Error(t, err)
}
