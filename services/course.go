package services

import (
	"context"

	appcontext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
	"github.com/edforge-labs/coursegen_api/wizard"
)

// CourseService runs the wizard on top of the draft store (durable) and the
// relational store (best-effort sync), and backs the course CRUD surface.
type CourseService struct {
	appcontext.DefaultService

	sqlSvc   *PostgresService
	draftSvc *DraftStoreService

	store *wizard.Store
}

const COURSE_SVC = "course_svc"

func (svc CourseService) Id() string {
	return COURSE_SVC
}

func (svc *CourseService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.draftSvc = svc.Service(DRAFT_STORE_SVC).(*DraftStoreService)
	svc.store = wizard.New(svc.draftSvc.Store(), &postgresSink{sql: svc.sqlSvc})
	return nil
}

func (svc *CourseService) Shutdown() {
	if svc.store != nil {
		svc.store.Flush()
	}
}

// Wizard gives generation and export services access to the live session.
func (svc *CourseService) Wizard() *wizard.Store {
	return svc.store
}

// postgresSink adapts the relational service to the wizard's remote surface.
type postgresSink struct {
	sql *PostgresService
}

func (s *postgresSink) CreateCourse(ctx context.Context, course *model.Course) error {
	return s.sql.CreateCourse(ctx, course)
}

func (s *postgresSink) SaveCourse(ctx context.Context, course *model.Course) error {
	return s.sql.SaveCourse(ctx, course)
}

func (s *postgresSink) SaveModule(ctx context.Context, mod *model.Module) error {
	return s.sql.SaveModule(ctx, mod)
}

func (s *postgresSink) SavePhaseData(ctx context.Context, courseID shared.CourseID, phase int, data map[string]interface{}) error {
	return s.sql.SavePhaseData(ctx, courseID, phase, data)
}

func (s *postgresSink) LoadCourse(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	return s.sql.GetCourse(ctx, id)
}

// ensureLoaded makes the wizard session point at the given course.
func (svc *CourseService) ensureLoaded(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	if current := svc.store.Current(); current != nil && current.ID == id.String() {
		return current, nil
	}
	course, err := svc.store.LoadCourse(ctx, id)
	if err != nil {
		return nil, shared.ErrNotFound("course")
	}
	return course, nil
}

// ==================== WIZARD OPERATIONS ====================

// CreateNewCourse resumes an unfinished phase-1 draft when one exists.
func (svc *CourseService) CreateNewCourse() *dto.CourseResponse {
	before := svc.draftSvc.Store().GetCurrentCourse()
	course := svc.store.CreateNewCourse()
	resumed := before != nil && before.ID == course.ID
	return &dto.CourseResponse{Course: course, Resumed: resumed}
}

// CreateCourse mints (or resumes) a session and applies the initial fields
// in one call.
func (svc *CourseService) CreateCourse(req dto.CreateCourseRequest) (*dto.CourseResponse, error) {
	resp := svc.CreateNewCourse()

	course, err := svc.store.SetBasicInfo(wizard.BasicInfoPatch{
		Title:          &req.Title,
		Theme:          &req.Theme,
		EstimatedHours: &req.EstimatedHours,
		Format:         &req.Format,
		Platform:       &req.Platform,
		DeliveryFormat: &req.DeliveryFormat,
	})
	if err != nil {
		return nil, err
	}
	if req.AIConfig != nil {
		cfg := *req.AIConfig
		course, err = svc.store.UpdateAIConfig(wizard.AIConfigPatch{
			Model:            &cfg.Model,
			OptimizationMode: &cfg.OptimizationMode,
			LanguageStyle:    &cfg.LanguageStyle,
			DifficultyLevel:  &cfg.DifficultyLevel,
			ContentDensity:   &cfg.ContentDensity,
			TeachingApproach: &cfg.TeachingApproach,
			ContentTypes:     cfg.ContentTypes,
			Language:         &cfg.Language,
		})
		if err != nil {
			return nil, err
		}
	}

	resp.Course = course
	return resp, nil
}

func (svc *CourseService) GetCourse(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	return svc.ensureLoaded(ctx, id)
}

func (svc *CourseService) ListCourses(ctx context.Context) (*dto.CourseListResponse, error) {
	courses, err := svc.sqlSvc.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.CourseListResponse{Courses: courses, Total: len(courses)}, nil
}

func (svc *CourseService) UpdateCourse(ctx context.Context, id shared.CourseID, req dto.UpdateCourseRequest) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	course, err := svc.store.SetBasicInfo(wizard.BasicInfoPatch{
		Title:          req.Title,
		Theme:          req.Theme,
		EstimatedHours: req.EstimatedHours,
		Format:         req.Format,
		Platform:       req.Platform,
		DeliveryFormat: req.DeliveryFormat,
	})
	if err != nil {
		return nil, err
	}
	if req.AIConfig != nil {
		cfg := *req.AIConfig
		course, err = svc.store.UpdateAIConfig(wizard.AIConfigPatch{
			Model:            &cfg.Model,
			OptimizationMode: &cfg.OptimizationMode,
			LanguageStyle:    &cfg.LanguageStyle,
			DifficultyLevel:  &cfg.DifficultyLevel,
			ContentDensity:   &cfg.ContentDensity,
			TeachingApproach: &cfg.TeachingApproach,
			ContentTypes:     cfg.ContentTypes,
			Language:         &cfg.Language,
		})
		if err != nil {
			return nil, err
		}
	}
	return course, nil
}

func (svc *CourseService) DeleteCourse(ctx context.Context, id shared.CourseID) error {
	if err := svc.draftSvc.Store().ClearCourseData(id); err != nil {
		log.WithError(err).Warn("failed to clear local draft")
	}
	return svc.sqlSvc.DeleteCourse(ctx, id)
}

func (svc *CourseService) SavePhaseData(ctx context.Context, id shared.CourseID, phase int, data map[string]interface{}) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	return svc.store.UpdatePhaseData(phase, data)
}

func (svc *CourseService) GetPhaseData(ctx context.Context, id shared.CourseID, phase int) (*model.PhaseDataRecord, error) {
	rec, err := svc.sqlSvc.GetPhase(ctx, id, phase)
	if err == nil {
		return rec, nil
	}

	// Fall back to the draft copy the wizard wrote locally.
	if course := svc.draftSvc.Store().GetCourse(id); course != nil {
		if entry, ok := course.Phases[phase]; ok {
			return &model.PhaseDataRecord{
				CourseID:    id.String(),
				Phase:       phase,
				Data:        entry.Data,
				LastUpdated: entry.LastUpdated,
			}, nil
		}
	}
	return nil, shared.ErrNotFound("phase data")
}

func (svc *CourseService) AdvancePhase(ctx context.Context, id shared.CourseID) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	return svc.store.MoveToNextPhase()
}

func (svc *CourseService) UpdateProgress(ctx context.Context, id shared.CourseID, phase, value int) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	return svc.store.UpdateProgress(phase, value)
}

func (svc *CourseService) ReplaceModules(ctx context.Context, id shared.CourseID, modules []model.Module) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	return svc.store.UpdateModules(modules)
}

// UpdateModule patches a single module. Applies through the wizard when the
// module belongs to the live session, otherwise directly on the relational
// row.
func (svc *CourseService) UpdateModule(ctx context.Context, moduleID string, req dto.UpdateModuleRequest) (*model.Module, error) {
	if current := svc.store.Current(); current != nil {
		for i := range current.Modules {
			if current.Modules[i].ID != moduleID {
				continue
			}
			if req.Status != nil || req.ImageURL != nil {
				status := current.Modules[i].Status
				if req.Status != nil {
					status = *req.Status
				}
				imageURL := ""
				if req.ImageURL != nil {
					imageURL = *req.ImageURL
				}
				if _, err := svc.store.UpdateModuleStatus(moduleID, status, imageURL); err != nil {
					return nil, err
				}
			}
			if req.Content != nil {
				patch := wizard.ModuleContentPatch{Activities: req.Content.Activities}
				if req.Content.Text != "" {
					patch.Text = &req.Content.Text
				}
				if req.Content.VideoScript != "" {
					patch.VideoScript = &req.Content.VideoScript
				}
				if _, err := svc.store.UpdateModuleContent(moduleID, patch); err != nil {
					return nil, err
				}
			}
			course, err := svc.applyModuleFields(moduleID, req)
			if err != nil {
				return nil, err
			}
			for i := range course.Modules {
				if course.Modules[i].ID == moduleID {
					return &course.Modules[i], nil
				}
			}
		}
	}

	mod, err := svc.sqlSvc.GetModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	patchModuleRow(mod, req)
	if err := svc.sqlSvc.SaveModule(ctx, mod); err != nil {
		return nil, err
	}
	return mod, nil
}

func (svc *CourseService) applyModuleFields(moduleID string, req dto.UpdateModuleRequest) (*model.Course, error) {
	if req.Title == nil && req.Description == nil && req.EstimatedHours == nil {
		return svc.store.Current(), nil
	}
	current := svc.store.Current()
	modules := make([]model.Module, len(current.Modules))
	copy(modules, current.Modules)
	for i := range modules {
		if modules[i].ID == moduleID {
			if req.Title != nil {
				modules[i].Title = *req.Title
			}
			if req.Description != nil {
				modules[i].Description = *req.Description
			}
			if req.EstimatedHours != nil {
				modules[i].EstimatedHours = *req.EstimatedHours
			}
		}
	}
	return svc.store.UpdateModules(modules)
}

func patchModuleRow(mod *model.Module, req dto.UpdateModuleRequest) {
	if req.Title != nil {
		mod.Title = *req.Title
	}
	if req.Description != nil {
		mod.Description = *req.Description
	}
	if req.EstimatedHours != nil {
		mod.EstimatedHours = *req.EstimatedHours
	}
	if req.Status != nil {
		mod.Status = *req.Status
	}
	if req.ImageURL != nil {
		mod.ImageURL = *req.ImageURL
	}
	if req.Content != nil {
		mod.Content = req.Content
	}
}

func (svc *CourseService) RemoveModule(ctx context.Context, id shared.CourseID, moduleID string) (*model.Course, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	course, err := svc.store.RemoveModule(moduleID)
	if err != nil {
		return nil, shared.ErrNotFound("module")
	}
	return course, nil
}

func (svc *CourseService) Export(ctx context.Context, id shared.CourseID, format string) (*wizard.Export, error) {
	if _, err := svc.ensureLoaded(ctx, id); err != nil {
		return nil, err
	}
	export, err := svc.store.ExportCourseData(format)
	if err != nil {
		return nil, shared.ErrBadRequest(err.Error())
	}
	return export, nil
}
