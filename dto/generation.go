package dto

import "github.com/edforge-labs/coursegen_api/model"

// GenerateStructureRequest feeds the structure-generation endpoint. Counts
// are honored even when the model under-produces; see the normalizer.
type GenerateStructureRequest struct {
	CourseID         string   `json:"course_id"`
	Title            string   `json:"title" validate:"required"`
	Theme            string   `json:"theme"`
	TargetAudience   string   `json:"target_audience"`
	CognitiveSkills  []string `json:"cognitive_skills,omitempty"`
	BehavioralSkills []string `json:"behavioral_skills,omitempty"`
	TechnicalSkills  []string `json:"technical_skills,omitempty"`
	ModuleCount      int      `json:"module_count" validate:"required,gte=1,lte=20"`
	LessonsPerModule int      `json:"lessons_per_module" validate:"required,gte=1,lte=20"`
}

func (r GenerateStructureRequest) Validate() error {
	return GetValidator().Struct(r)
}

type GenerateStructureResponse struct {
	Modules  []model.Module `json:"modules"`
	Fallback bool           `json:"fallback"`
}

type CompetencyMappingRequest struct {
	Title          string `json:"title" validate:"required"`
	Theme          string `json:"theme"`
	TargetAudience string `json:"target_audience"`
}

func (r CompetencyMappingRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CompetencyMappingResponse struct {
	CognitiveSkills  []string `json:"cognitive_skills"`
	BehavioralSkills []string `json:"behavioral_skills"`
	TechnicalSkills  []string `json:"technical_skills"`
	Fallback         bool     `json:"fallback"`
}

type GenerateLessonContentRequest struct {
	CourseID    string `json:"course_id"`
	ModuleID    string `json:"module_id" validate:"required"`
	LessonTitle string `json:"lesson_title" validate:"required"`
	ModuleTitle string `json:"module_title"`
	Theme       string `json:"theme"`
}

func (r GenerateLessonContentRequest) Validate() error {
	return GetValidator().Struct(r)
}

type GenerateLessonContentResponse struct {
	Content  string `json:"content"`
	Fallback bool   `json:"fallback"`
}

// LessonActivitiesRequest describes one lesson inside a batch activities run.
type LessonActivitiesRequest struct {
	LessonID    string `json:"lesson_id" validate:"required"`
	LessonTitle string `json:"lesson_title" validate:"required"`
	ModuleTitle string `json:"module_title"`
}

type GenerateActivitiesRequest struct {
	CourseID string                    `json:"course_id"`
	Theme    string                    `json:"theme"`
	Lessons  []LessonActivitiesRequest `json:"lessons" validate:"required,min=1,dive"`
}

func (r GenerateActivitiesRequest) Validate() error {
	return GetValidator().Struct(r)
}

// LessonActivitiesResult isolates failure per lesson: a failed generation
// carries Error plus empty lists, it never aborts the batch.
type LessonActivitiesResult struct {
	LessonID            string           `json:"lesson_id"`
	PracticalExercises  []model.Activity `json:"practical_exercises"`
	AssessmentQuestions []model.Question `json:"assessment_questions"`
	Error               string           `json:"error,omitempty"`
}

type GenerateActivitiesResponse struct {
	Results []LessonActivitiesResult `json:"results"`
}
