package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() error {
	log.Println("Starting database seeding...")

	courseSeeder := NewCourseSeeder(s.db)
	if err := courseSeeder.SeedCourses(); err != nil {
		log.Printf("Course seeding failed: %v", err)
		return err
	}

	settingsSeeder := NewSettingsSeeder(s.db)
	if err := settingsSeeder.SeedSettings(); err != nil {
		log.Printf("Settings seeding failed: %v", err)
		return err
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedCoursesOnly seeds only courses
func (s *MainSeeder) SeedCoursesOnly() error {
	courseSeeder := NewCourseSeeder(s.db)
	return courseSeeder.SeedCourses()
}

// SeedSettingsOnly seeds only AI settings
func (s *MainSeeder) SeedSettingsOnly() error {
	settingsSeeder := NewSettingsSeeder(s.db)
	return settingsSeeder.SeedSettings()
}
