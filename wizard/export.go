package wizard

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/bytedance/sonic"
	"github.com/samber/lo"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

// Export is a downloadable serialization of the whole course. No network
// involved; it reads only the in-session state.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

func (s *Store) ExportCourseData(format string) (*Export, error) {
	s.mu.Lock()
	course := s.current
	s.mu.Unlock()
	if course == nil {
		return nil, ErrNoCurrentCourse
	}

	switch format {
	case shared.ExportFormatCSV:
		body, err := flattenCSV(course)
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    fmt.Sprintf("%s_export.csv", course.ID),
			ContentType: "text/csv",
			Body:        body,
		}, nil
	case shared.ExportFormatJSON, "":
		body, err := sonic.MarshalIndent(course, "", "  ")
		if err != nil {
			return nil, err
		}
		return &Export{
			Filename:    fmt.Sprintf("%s_export.json", course.ID),
			ContentType: "application/json",
			Body:        body,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// flattenCSV emits one row per course/phase/module/lesson/activity/question,
// discriminated by the record_type column.
func flattenCSV(course *model.Course) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"record_type", "id", "parent_id", "order", "title", "status", "detail"}); err != nil {
		return nil, err
	}

	writeRow := func(recordType, id, parentID string, order int, title, status, detail string) {
		_ = w.Write([]string{recordType, id, parentID, strconv.Itoa(order), title, status, detail})
	}

	writeRow("course", course.ID, "", course.CurrentPhase, course.Title, "",
		fmt.Sprintf("theme=%s; hours=%.1f; overall=%d%%", course.Theme, course.EstimatedHours, course.Progress.Overall))

	for phase := shared.PhaseStrategy; phase <= shared.PhaseReview; phase++ {
		entry, ok := course.Phases[phase]
		if !ok {
			continue
		}
		keys := lo.Keys(entry.Data)
		writeRow("phase", strconv.Itoa(phase), course.ID, phase, "", "",
			fmt.Sprintf("fields=%d; keys=%v; updated=%s", len(entry.Data), keys, entry.LastUpdated.Format("2006-01-02 15:04:05")))
	}

	for _, mod := range course.Modules {
		writeRow("module", mod.ID, course.ID, mod.Order, mod.Title, mod.Status, mod.Description)

		for _, lesson := range mod.Lessons {
			writeRow("lesson", lesson.ID, mod.ID, lesson.Order, lesson.Title, lesson.Status, lesson.Duration)
		}

		if mod.Content == nil {
			continue
		}
		for ai, activity := range mod.Content.Activities {
			activityID := fmt.Sprintf("%s_act_%d", mod.ID, ai+1)
			writeRow("activity", activityID, mod.ID, ai+1, activity.Title, activity.Type, activity.Description)
			for qi, q := range activity.Questions {
				writeRow("question", fmt.Sprintf("%s_q_%d", activityID, qi+1), activityID, qi+1,
					q.Question, "", fmt.Sprintf("options=%d; answer=%v", len(q.Options), q.Answer))
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
