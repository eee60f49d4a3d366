package normalizer

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/edforge-labs/coursegen_api/model"
)

// ActivitiesPayload is the fixed shape requested from the model in JSON mode
// for the activities path.
type ActivitiesPayload struct {
	PracticalExercises  []model.Activity `json:"practicalExercises"`
	AssessmentQuestions []model.Question `json:"assessmentQuestions"`
}

// ParseActivities decodes the JSON-mode response. Models occasionally wrap
// JSON in a markdown fence even when asked not to, so fences are stripped
// before decoding. A decode failure is the caller's per-lesson error; it
// never synthesizes content.
func ParseActivities(raw string) (*ActivitiesPayload, error) {
	cleaned := stripJSONFence(raw)
	if strings.TrimSpace(cleaned) == "" {
		return nil, fmt.Errorf("empty activities response")
	}

	var payload ActivitiesPayload
	if err := sonic.UnmarshalString(cleaned, &payload); err != nil {
		return nil, fmt.Errorf("malformed activities response: %w", err)
	}

	payload.AssessmentQuestions = dropInvalidAnswers(payload.AssessmentQuestions)
	for i := range payload.PracticalExercises {
		payload.PracticalExercises[i].Questions = dropInvalidAnswers(payload.PracticalExercises[i].Questions)
	}
	return &payload, nil
}

// dropInvalidAnswers removes questions whose index answer falls outside the
// options list. String answers and option-free questions pass through.
func dropInvalidAnswers(questions []model.Question) []model.Question {
	kept := questions[:0]
	for _, q := range questions {
		if len(q.Options) > 0 {
			if _, isIndex := q.Answer.(float64); isIndex {
				if _, ok := q.AnswerIndex(); !ok {
					continue
				}
			}
		}
		kept = append(kept, q)
	}
	return kept
}

func stripJSONFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if idx := strings.LastIndex(s, "```"); idx >= 0 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
