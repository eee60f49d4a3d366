package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	log "github.com/sirupsen/logrus"

	"github.com/edforge-labs/coursegen_api/services/handlers"
	"github.com/edforge-labs/coursegen_api/shared"
)

type HttpService struct {
	context.DefaultService

	courseSvc     *CourseService
	generationSvc *GenerationService
	pdfSvc        *PDFService
	driveSvc      *DriveService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port   int
	server *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.courseSvc = svc.Service(COURSE_SVC).(*CourseService)
	svc.generationSvc = svc.Service(GENERATION_SVC).(*GenerationService)
	svc.pdfSvc = svc.Service(PDF_SVC).(*PDFService)
	svc.driveSvc = svc.Service(DRIVE_SVC).(*DriveService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	app := fiber.New(fiber.Config{
		AppName:      SERVICE_NAME,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: svc.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(MonitoringMiddleware(svc.monitoringSvc))
	app.Use(svc.rateLimitSvc.IPRateLimit())

	app.Get("/ping", svc.ping)

	svc.registerRoutes(app)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	svc.server = app

	log.WithField("port", svc.port).Info("http server starting")
	return app.Listen(fmt.Sprintf(":%v", svc.port))
}

func (svc *HttpService) registerRoutes(app *fiber.App) {
	courseHandler := handlers.NewCourseHandler(svc.courseSvc)
	generationHandler := handlers.NewGenerationHandler(svc.generationSvc)
	exportHandler := handlers.NewExportHandler(svc.courseSvc, svc.pdfSvc)
	driveHandler := handlers.NewDriveHandler(svc.driveSvc)

	generationLimit := svc.rateLimitSvc.RateLimit(shared.EndpointTypeGeneration)
	exportLimit := svc.rateLimitSvc.RateLimit(shared.EndpointTypeExport)

	api := app.Group("/api")

	// Course CRUD and wizard session
	courses := api.Group("/courses")
	courses.Post("/", courseHandler.CreateCourse)
	courses.Get("/", courseHandler.ListCourses)
	courses.Post("/new", courseHandler.NewCourse)

	// Generation routes registered before /:id so the literal segments win.
	courses.Post("/structure", generationLimit, generationHandler.GenerateStructure)
	courses.Post("/competency-mapping", generationLimit, generationHandler.GenerateCompetencyMapping)

	courses.Get("/:id", courseHandler.GetCourse)
	courses.Put("/:id", courseHandler.UpdateCourse)
	courses.Delete("/:id", courseHandler.DeleteCourse)
	courses.Post("/:id/advance", courseHandler.AdvancePhase)
	courses.Put("/:id/progress", courseHandler.UpdateProgress)
	courses.Put("/:id/modules", courseHandler.ReplaceModules)
	courses.Delete("/:id/modules/:moduleId", courseHandler.RemoveModule)
	courses.Get("/:id/export", exportLimit, exportHandler.ExportCourse)

	// Phase data
	courses.Get("/:courseId/phase/:phaseNumber", courseHandler.GetPhaseData)
	courses.Post("/:courseId/phase/:phaseNumber", courseHandler.SavePhaseData)

	// Modules addressed by their own id
	api.Put("/modules/:id", courseHandler.UpdateModule)

	// Content generation
	api.Post("/generate/lesson-content", generationLimit, generationHandler.GenerateLessonContent)
	app.Post("/generate-activities", generationLimit, generationHandler.GenerateActivities)

	// PDF rendering
	api.Post("/generate/course-pdf", exportLimit, exportHandler.GenerateCoursePDF)
	api.Post("/generate/activities-pdf", exportLimit, exportHandler.GenerateActivitiesPDF)

	// Google Drive
	drive := api.Group("/google-drive")
	drive.Get("/auth-url", driveHandler.GetAuthURL)
	drive.Get("/status", driveHandler.GetStatus)
	drive.Post("/callback", driveHandler.HandleCallback)
	drive.Post("/upload-course", exportLimit, driveHandler.UploadCourse)
}

func (svc *HttpService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}

func (svc *HttpService) handleError(c *fiber.Ctx, err error) error {
	if appErr, ok := shared.GetAppError(err); ok {
		return shared.ResponseJSON(c, appErr.StatusCode, appErr.Message, appErr.Data)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return shared.ResponseJSON(c, fiberErr.Code, fiberErr.Message, nil)
	}

	log.WithError(err).Error("unhandled request error")
	return shared.ResponseInternalError(c, err)
}
