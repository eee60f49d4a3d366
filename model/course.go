// model/course.go
package model

import (
	"math"
	"time"

	"github.com/edforge-labs/coursegen_api/shared"
)

// Course is the unit the wizard works on. The same struct travels through the
// local draft store (full JSON, including phase data) and the relational
// store (modules, phase data and AI settings live in their own tables).
type Course struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	Title          string  `json:"title" gorm:"not null"`
	Theme          string  `json:"theme"`
	EstimatedHours float64 `json:"estimated_hours"`
	Format         string  `json:"format"`
	Platform       string  `json:"platform"`
	DeliveryFormat string  `json:"delivery_format"`

	CurrentPhase int      `json:"current_phase" gorm:"default:1"`
	Progress     Progress `json:"progress" gorm:"embedded;embeddedPrefix:progress_"`

	AIConfig AIConfig          `json:"ai_config" gorm:"-"`
	Modules  []Module          `json:"modules" gorm:"foreignKey:CourseID;references:ID"`
	Phases   map[int]PhaseData `json:"phase_data,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Module is the unit of generation and status tracking within a course.
type Module struct {
	ID             string  `json:"id" gorm:"primaryKey"`
	CourseID       string  `json:"course_id" gorm:"not null;index"`
	Title          string  `json:"title" gorm:"not null"`
	Description    string  `json:"description" gorm:"type:text"`
	Order          int     `json:"order" gorm:"not null"`
	EstimatedHours float64 `json:"estimated_hours"`
	Status         string  `json:"status" gorm:"default:not_started"`
	ImageURL       string  `json:"image_url,omitempty"`

	Content *ModuleContent `json:"content,omitempty" gorm:"serializer:json;type:text"`

	// Pedagogical metadata
	Objective        string   `json:"objective,omitempty" gorm:"type:text"`
	Topics           []string `json:"topics,omitempty" gorm:"serializer:json;type:text"`
	BloomLevel       string   `json:"bloom_level,omitempty"`
	CognitiveSkills  []string `json:"cognitive_skills,omitempty" gorm:"serializer:json;type:text"`
	BehavioralSkills []string `json:"behavioral_skills,omitempty" gorm:"serializer:json;type:text"`
	TechnicalSkills  []string `json:"technical_skills,omitempty" gorm:"serializer:json;type:text"`
	EvaluationType   string   `json:"evaluation_type,omitempty"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID;references:ID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModuleContent is the generated payload attached to a module once the
// content phase ran for it.
type ModuleContent struct {
	Text        string     `json:"text,omitempty"`
	VideoScript string     `json:"video_script,omitempty"`
	Activities  []Activity `json:"activities,omitempty"`
}

// Lesson rows nest under modules. Generation guarantees each module ends up
// with at least its configured lessons-per-module count.
type Lesson struct {
	ID          string `json:"id" gorm:"primaryKey"`
	ModuleID    string `json:"module_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null"`
	Order       int    `json:"order" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	Duration    string `json:"duration"`
	Content     string `json:"content" gorm:"type:text"`
	Status      string `json:"status" gorm:"default:not_started"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Activity struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions,omitempty"`
}

type Question struct {
	Question    string      `json:"question"`
	Options     []string    `json:"options,omitempty"`
	Answer      interface{} `json:"answer"`
	Explanation string      `json:"explanation,omitempty"`
}

// AnswerIndex reports the answer as an option index when it is one, with a
// range check against the options list.
func (q Question) AnswerIndex() (int, bool) {
	var idx int
	switch v := q.Answer.(type) {
	case int:
		idx = v
	case float64:
		idx = int(v)
	default:
		return 0, false
	}
	if idx < 0 || idx >= len(q.Options) {
		return 0, false
	}
	return idx, true
}

// AIConfig steers generation prompts only; nothing validates it against a
// fixed taxonomy at runtime.
type AIConfig struct {
	Model            string   `json:"model"`
	OptimizationMode string   `json:"optimization_mode"`
	LanguageStyle    string   `json:"language_style"`
	DifficultyLevel  string   `json:"difficulty_level"`
	ContentDensity   int      `json:"content_density"`
	TeachingApproach string   `json:"teaching_approach"`
	ContentTypes     []string `json:"content_types"`
	Language         string   `json:"language"`
}

// DefaultAIConfig mirrors what a fresh course starts with.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Model:            "gpt-4o-mini",
		OptimizationMode: "balanced",
		LanguageStyle:    "didatico",
		DifficultyLevel:  "intermediario",
		ContentDensity:   3,
		TeachingApproach: "pratico",
		ContentTypes:     []string{shared.ContentTypeText, shared.ContentTypeVideo, shared.ContentTypeQuiz},
		Language:         "pt-BR",
	}
}

// PhaseData is the free-form per-phase payload, last-write-wins.
type PhaseData struct {
	Data        map[string]interface{} `json:"data"`
	LastUpdated time.Time              `json:"last_updated"`
}

// Progress tracks per-phase completion percentages plus the derived overall.
type Progress struct {
	Phase1  int `json:"phase1"`
	Phase2  int `json:"phase2"`
	Phase3  int `json:"phase3"`
	Phase4  int `json:"phase4"`
	Phase5  int `json:"phase5"`
	Overall int `json:"overall"`
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func (p *Progress) Phase(n int) int {
	switch n {
	case 1:
		return p.Phase1
	case 2:
		return p.Phase2
	case 3:
		return p.Phase3
	case 4:
		return p.Phase4
	case 5:
		return p.Phase5
	}
	return 0
}

// SetPhase clamps v to [0,100], stores it and recomputes the overall mean.
// Returns false when the clamped value matches the stored one, so callers can
// skip redundant persistence.
func (p *Progress) SetPhase(n, v int) bool {
	v = clampPercent(v)
	if p.Phase(n) == v {
		return false
	}
	switch n {
	case 1:
		p.Phase1 = v
	case 2:
		p.Phase2 = v
	case 3:
		p.Phase3 = v
	case 4:
		p.Phase4 = v
	case 5:
		p.Phase5 = v
	default:
		return false
	}
	p.Recompute()
	return true
}

// Recompute derives the overall percentage as the rounded mean of the five
// phase percentages.
func (p *Progress) Recompute() {
	sum := p.Phase1 + p.Phase2 + p.Phase3 + p.Phase4 + p.Phase5
	p.Overall = int(math.Round(float64(sum) / float64(shared.PhaseCount)))
}

// NormalizeModuleOrder rewrites Order to a contiguous 1..N sequence in slice
// order. Call it after any insert, delete or drag reorder.
func NormalizeModuleOrder(modules []Module) {
	for i := range modules {
		modules[i].Order = i + 1
	}
}

// Clone returns a deep copy safe to hand to another goroutine while the
// original keeps being mutated.
func (c *Course) Clone() *Course {
	copied := *c
	copied.AIConfig.ContentTypes = append([]string(nil), c.AIConfig.ContentTypes...)
	if c.Modules != nil {
		copied.Modules = make([]Module, len(c.Modules))
		for i := range c.Modules {
			copied.Modules[i] = *c.Modules[i].Clone()
		}
	}
	if c.Phases != nil {
		copied.Phases = make(map[int]PhaseData, len(c.Phases))
		for phase, entry := range c.Phases {
			copied.Phases[phase] = PhaseData{
				Data:        cloneDataMap(entry.Data),
				LastUpdated: entry.LastUpdated,
			}
		}
	}
	return &copied
}

func (m *Module) Clone() *Module {
	copied := *m
	copied.Topics = append([]string(nil), m.Topics...)
	copied.CognitiveSkills = append([]string(nil), m.CognitiveSkills...)
	copied.BehavioralSkills = append([]string(nil), m.BehavioralSkills...)
	copied.TechnicalSkills = append([]string(nil), m.TechnicalSkills...)
	copied.Lessons = append([]Lesson(nil), m.Lessons...)
	if m.Content != nil {
		content := ModuleContent{
			Text:        m.Content.Text,
			VideoScript: m.Content.VideoScript,
		}
		if m.Content.Activities != nil {
			content.Activities = make([]Activity, len(m.Content.Activities))
			for i, activity := range m.Content.Activities {
				activity.Questions = append([]Question(nil), activity.Questions...)
				content.Activities[i] = activity
			}
		}
		copied.Content = &content
	}
	return &copied
}

func cloneDataMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}
	copied := make(map[string]interface{}, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return copied
}
