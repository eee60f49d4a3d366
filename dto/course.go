package dto

import (
	"github.com/edforge-labs/coursegen_api/model"
)

type CreateCourseRequest struct {
	ID             string          `json:"id"`
	Title          string          `json:"title" validate:"required,min=1,max=255"`
	Theme          string          `json:"theme" validate:"max=255"`
	EstimatedHours float64         `json:"estimated_hours" validate:"omitempty,gt=0"`
	Format         string          `json:"format"`
	Platform       string          `json:"platform"`
	DeliveryFormat string          `json:"delivery_format"`
	AIConfig       *model.AIConfig `json:"ai_config,omitempty"`
}

func (r CreateCourseRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateCourseRequest struct {
	Title          *string         `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Theme          *string         `json:"theme,omitempty" validate:"omitempty,max=255"`
	EstimatedHours *float64        `json:"estimated_hours,omitempty" validate:"omitempty,gt=0"`
	Format         *string         `json:"format,omitempty"`
	Platform       *string         `json:"platform,omitempty"`
	DeliveryFormat *string         `json:"delivery_format,omitempty"`
	AIConfig       *model.AIConfig `json:"ai_config,omitempty"`
}

func (r UpdateCourseRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateModuleRequest struct {
	Title          *string              `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Description    *string              `json:"description,omitempty"`
	EstimatedHours *float64             `json:"estimated_hours,omitempty" validate:"omitempty,gt=0"`
	Status         *string              `json:"status,omitempty" validate:"omitempty,oneof=not_started in_progress generated approved"`
	ImageURL       *string              `json:"image_url,omitempty" validate:"omitempty,url"`
	Content        *model.ModuleContent `json:"content,omitempty"`
}

func (r UpdateModuleRequest) Validate() error {
	return GetValidator().Struct(r)
}

type ReplaceModulesRequest struct {
	Modules []model.Module `json:"modules" validate:"required,dive"`
}

func (r ReplaceModulesRequest) Validate() error {
	return GetValidator().Struct(r)
}

type SavePhaseDataRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

func (r SavePhaseDataRequest) Validate() error {
	return GetValidator().Struct(r)
}

type UpdateProgressRequest struct {
	Phase int `json:"phase" validate:"required,gte=1,lte=5"`
	Value int `json:"value"`
}

func (r UpdateProgressRequest) Validate() error {
	return GetValidator().Struct(r)
}

type CourseListResponse struct {
	Courses []model.Course `json:"courses"`
	Total   int            `json:"total"`
}

type CourseResponse struct {
	Course *model.Course `json:"course"`
	// Resumed is set when a create call returned an existing phase-1 draft
	// instead of minting a new course.
	Resumed bool `json:"resumed,omitempty"`
}
