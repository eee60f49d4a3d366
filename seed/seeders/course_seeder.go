package seeders

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
)

// CourseSeeder handles seeding a demo course with structure and activities
type CourseSeeder struct {
	db *gorm.DB
}

// NewCourseSeeder creates a new course seeder
func NewCourseSeeder(db *gorm.DB) *CourseSeeder {
	return &CourseSeeder{db: db}
}

// SeedCourses seeds the database with a complete demo course
func (s *CourseSeeder) SeedCourses() error {
	courses := s.getDemoCourses()

	for _, course := range courses {
		var existing model.Course
		if err := s.db.Where("id = ?", course.ID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				if err := s.db.Create(&course).Error; err != nil {
					log.Printf("Error creating course %s: %v", course.Title, err)
					return err
				}
				log.Printf("Created course: %s", course.Title)
			} else {
				log.Printf("Error checking course %s: %v", course.Title, err)
				return err
			}
		} else {
			log.Printf("Course %s already exists, skipping", course.Title)
		}
	}

	log.Println("Course seeding completed successfully")
	return nil
}

func (s *CourseSeeder) getDemoCourses() []model.Course {
	now := time.Now()
	courseID := "course_1735689600000"

	modules := make([]model.Module, 0, 3)
	moduleThemes := []struct {
		title       string
		description string
		topics      []string
	}{
		{
			title:       "Introdução ao Pensamento de Dados",
			description: "Fundamentos de coleta, organização e leitura crítica de dados.",
			topics:      []string{"Tipos de dados", "Fontes e coleta", "Vieses comuns"},
		},
		{
			title:       "Análise Exploratória na Prática",
			description: "Técnicas descritivas e visualização para extrair padrões.",
			topics:      []string{"Estatística descritiva", "Visualização", "Outliers"},
		},
		{
			title:       "Comunicando Resultados",
			description: "Transformar análises em narrativas e decisões.",
			topics:      []string{"Storytelling", "Dashboards", "Apresentação executiva"},
		},
	}

	for mi, mt := range moduleThemes {
		moduleID := fmt.Sprintf("%s_mod_%d", courseID, mi+1)
		mod := model.Module{
			ID:             moduleID,
			CourseID:       courseID,
			Title:          mt.title,
			Description:    mt.description,
			Order:          mi + 1,
			EstimatedHours: 4,
			Status:         shared.ModuleStatusApproved,
			Topics:         mt.topics,
			BloomLevel:     "aplicar",
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		for li := 1; li <= 3; li++ {
			mod.Lessons = append(mod.Lessons, model.Lesson{
				ID:        fmt.Sprintf("%s_les_%d", moduleID, li),
				ModuleID:  moduleID,
				Title:     fmt.Sprintf("Aula %d: %s", li, mt.topics[li-1]),
				Order:     li,
				Duration:  shared.DefaultLessonDuration,
				Status:    shared.ModuleStatusGenerated,
				CreatedAt: now,
				UpdatedAt: now,
			})
		}

		mod.Content = &model.ModuleContent{
			Text: fmt.Sprintf("Conteúdo consolidado do módulo %s.", mt.title),
			Activities: []model.Activity{
				{
					Type:        "quiz",
					Title:       fmt.Sprintf("Quiz do módulo %d", mi+1),
					Description: "Avaliação rápida dos conceitos centrais.",
					Questions: []model.Question{
						{
							Question:    fmt.Sprintf("Qual é o foco principal de %q?", mt.title),
							Options:     []string{mt.topics[0], "Nenhuma das anteriores", "Todas as anteriores"},
							Answer:      0,
							Explanation: "O módulo abre exatamente por esse tópico.",
						},
					},
				},
			},
		}

		modules = append(modules, mod)
	}

	course := model.Course{
		ID:             courseID,
		Title:          "Análise de Dados para Iniciantes",
		Theme:          "Análise de Dados",
		EstimatedHours: 12,
		Format:         "online",
		Platform:       "web",
		DeliveryFormat: "self-paced",
		CurrentPhase:   shared.PhaseReview,
		Progress: model.Progress{
			Phase1: 100, Phase2: 100, Phase3: 100, Phase4: 100, Phase5: 50,
		},
		Modules:   modules,
		CreatedAt: now,
		UpdatedAt: now,
	}
	course.Progress.Recompute()

	return []model.Course{course}
}
