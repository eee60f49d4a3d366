package seeders

import (
	"log"

	"gorm.io/gorm"

	"github.com/edforge-labs/coursegen_api/model"
)

// SettingsSeeder seeds default AI settings for the demo course
type SettingsSeeder struct {
	db *gorm.DB
}

// NewSettingsSeeder creates a new settings seeder
func NewSettingsSeeder(db *gorm.DB) *SettingsSeeder {
	return &SettingsSeeder{db: db}
}

// SeedSettings creates AI settings rows for courses missing one
func (s *SettingsSeeder) SeedSettings() error {
	var courses []model.Course
	if err := s.db.Find(&courses).Error; err != nil {
		return err
	}

	for _, course := range courses {
		var existing model.AISettings
		err := s.db.Where("course_id = ?", course.ID).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		settings := model.AISettings{
			ID:       "ais_" + course.ID,
			CourseID: course.ID,
		}
		settings.ApplyConfig(model.DefaultAIConfig())

		if err := s.db.Create(&settings).Error; err != nil {
			log.Printf("Error creating settings for course %s: %v", course.ID, err)
			return err
		}
		log.Printf("Created AI settings for course: %s", course.ID)
	}

	log.Println("Settings seeding completed successfully")
	return nil
}
