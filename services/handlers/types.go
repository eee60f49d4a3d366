package handlers

import (
	"context"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/model"
	"github.com/edforge-labs/coursegen_api/shared"
	"github.com/edforge-labs/coursegen_api/wizard"
)

type CourseServiceInterface interface {
	CreateNewCourse() *dto.CourseResponse
	CreateCourse(req dto.CreateCourseRequest) (*dto.CourseResponse, error)
	GetCourse(ctx context.Context, id shared.CourseID) (*model.Course, error)
	ListCourses(ctx context.Context) (*dto.CourseListResponse, error)
	UpdateCourse(ctx context.Context, id shared.CourseID, req dto.UpdateCourseRequest) (*model.Course, error)
	DeleteCourse(ctx context.Context, id shared.CourseID) error
	SavePhaseData(ctx context.Context, id shared.CourseID, phase int, data map[string]interface{}) (*model.Course, error)
	GetPhaseData(ctx context.Context, id shared.CourseID, phase int) (*model.PhaseDataRecord, error)
	AdvancePhase(ctx context.Context, id shared.CourseID) (*model.Course, error)
	UpdateProgress(ctx context.Context, id shared.CourseID, phase, value int) (*model.Course, error)
	ReplaceModules(ctx context.Context, id shared.CourseID, modules []model.Module) (*model.Course, error)
	UpdateModule(ctx context.Context, moduleID string, req dto.UpdateModuleRequest) (*model.Module, error)
	RemoveModule(ctx context.Context, id shared.CourseID, moduleID string) (*model.Course, error)
	Export(ctx context.Context, id shared.CourseID, format string) (*wizard.Export, error)
}

type GenerationServiceInterface interface {
	GenerateStructure(ctx context.Context, req dto.GenerateStructureRequest) (*dto.GenerateStructureResponse, error)
	GenerateCompetencyMapping(ctx context.Context, req dto.CompetencyMappingRequest) (*dto.CompetencyMappingResponse, error)
	GenerateLessonContent(ctx context.Context, req dto.GenerateLessonContentRequest) (*dto.GenerateLessonContentResponse, error)
	GenerateActivities(ctx context.Context, req dto.GenerateActivitiesRequest) (*dto.GenerateActivitiesResponse, error)
}

type PDFServiceInterface interface {
	ExportCoursePDF(ctx context.Context, courseID string) (*dto.PDFExportResult, error)
	ExportActivitiesPDF(ctx context.Context, courseID string) (*dto.PDFExportResult, error)
}

type DriveServiceInterface interface {
	AuthURL() (*dto.DriveAuthURLResponse, error)
	HandleCallback(ctx context.Context, code string) error
	Connected(ctx context.Context) bool
	UploadCourse(ctx context.Context, req dto.DriveUploadRequest) (*dto.DriveUploadResponse, error)
}
