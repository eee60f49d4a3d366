package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/shared"
)

type GenerationHandler struct {
	generationSvc GenerationServiceInterface
}

func NewGenerationHandler(generationSvc GenerationServiceInterface) *GenerationHandler {
	return &GenerationHandler{
		generationSvc: generationSvc,
	}
}

// @Summary Generate Course Structure
// @Description Generate modules and lessons for a course, honoring the requested counts
// @Tags generation
// @Accept json
// @Produce json
// @Param structureRequest body dto.GenerateStructureRequest true "Structure parameters"
// @Success 200 {object} shared.Response{data=dto.GenerateStructureResponse}
// @Router /api/courses/structure [post]
func (h *GenerationHandler) GenerateStructure(c *fiber.Ctx) error {
	var req dto.GenerateStructureRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.generationSvc.GenerateStructure(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Generate Competency Mapping
// @Description Map a course theme to cognitive, behavioral and technical skills
// @Tags generation
// @Accept json
// @Produce json
// @Param mappingRequest body dto.CompetencyMappingRequest true "Course context"
// @Success 200 {object} shared.Response{data=dto.CompetencyMappingResponse}
// @Router /api/courses/competency-mapping [post]
func (h *GenerationHandler) GenerateCompetencyMapping(c *fiber.Ctx) error {
	var req dto.CompetencyMappingRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.generationSvc.GenerateCompetencyMapping(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Generate Lesson Content
// @Description Generate the full markdown body of one lesson
// @Tags generation
// @Accept json
// @Produce json
// @Param contentRequest body dto.GenerateLessonContentRequest true "Lesson context"
// @Success 200 {object} shared.Response{data=dto.GenerateLessonContentResponse}
// @Router /api/generate/lesson-content [post]
func (h *GenerationHandler) GenerateLessonContent(c *fiber.Ctx) error {
	var req dto.GenerateLessonContentRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.generationSvc.GenerateLessonContent(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Generate Activities
// @Description Generate practical exercises and assessment questions for a batch of lessons
// @Tags generation
// @Accept json
// @Produce json
// @Param activitiesRequest body dto.GenerateActivitiesRequest true "Lessons to process"
// @Success 200 {object} shared.Response{data=dto.GenerateActivitiesResponse}
// @Router /generate-activities [post]
func (h *GenerationHandler) GenerateActivities(c *fiber.Ctx) error {
	var req dto.GenerateActivitiesRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.generationSvc.GenerateActivities(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}
