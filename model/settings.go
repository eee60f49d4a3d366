package model

import "time"

// AISettings is the relational shadow of Course.AIConfig.
type AISettings struct {
	ID               string    `json:"id" gorm:"primaryKey"`
	CourseID         string    `json:"course_id" gorm:"uniqueIndex;not null"`
	Model            string    `json:"model"`
	OptimizationMode string    `json:"optimization_mode"`
	LanguageStyle    string    `json:"language_style"`
	DifficultyLevel  string    `json:"difficulty_level"`
	ContentDensity   int       `json:"content_density"`
	TeachingApproach string    `json:"teaching_approach"`
	ContentTypes     []string  `json:"content_types" gorm:"serializer:json;type:text"`
	Language         string    `json:"language"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (s *AISettings) ToConfig() AIConfig {
	return AIConfig{
		Model:            s.Model,
		OptimizationMode: s.OptimizationMode,
		LanguageStyle:    s.LanguageStyle,
		DifficultyLevel:  s.DifficultyLevel,
		ContentDensity:   s.ContentDensity,
		TeachingApproach: s.TeachingApproach,
		ContentTypes:     s.ContentTypes,
		Language:         s.Language,
	}
}

func (s *AISettings) ApplyConfig(cfg AIConfig) {
	s.Model = cfg.Model
	s.OptimizationMode = cfg.OptimizationMode
	s.LanguageStyle = cfg.LanguageStyle
	s.DifficultyLevel = cfg.DifficultyLevel
	s.ContentDensity = cfg.ContentDensity
	s.TeachingApproach = cfg.TeachingApproach
	s.ContentTypes = cfg.ContentTypes
	s.Language = cfg.Language
}

// PhaseDataRecord stores one phase payload row per course and phase number.
type PhaseDataRecord struct {
	ID          string                 `json:"id" gorm:"primaryKey"`
	CourseID    string                 `json:"course_id" gorm:"index:idx_course_phase,unique;not null"`
	Phase       int                    `json:"phase" gorm:"index:idx_course_phase,unique;not null"`
	Data        map[string]interface{} `json:"data" gorm:"serializer:json;type:text"`
	LastUpdated time.Time              `json:"last_updated"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// DriveCredential keeps the Google OAuth token obtained via the callback
// route. One row per connected account; the latest row wins.
type DriveCredential struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	AccessToken  string    `json:"-" gorm:"type:text"`
	RefreshToken string    `json:"-" gorm:"type:text"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
