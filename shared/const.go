package shared

const (
	PhaseStrategy   = 1
	PhaseStructure  = 2
	PhaseContent    = 3
	PhaseActivities = 4
	PhaseReview     = 5

	PhaseCount = 5

	ModuleStatusNotStarted = "not_started"
	ModuleStatusInProgress = "in_progress"
	ModuleStatusGenerated  = "generated"
	ModuleStatusApproved   = "approved"

	ContentTypeText     = "text"
	ContentTypeVideo    = "video"
	ContentTypeQuiz     = "quiz"
	ContentTypeExercise = "exercise"
	ContentTypeCase     = "case"

	ExportFormatJSON = "json"
	ExportFormatCSV  = "csv"

	EndpointTypeGeneration = "generation"
	EndpointTypeExport     = "export"
	EndpointTypeDefault    = "default"
)

// DefaultLessonDuration is stamped on every lesson the normalizer synthesizes.
const DefaultLessonDuration = "45min"
