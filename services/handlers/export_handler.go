package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/shared"
)

type ExportHandler struct {
	courseSvc CourseServiceInterface
	pdfSvc    PDFServiceInterface
}

func NewExportHandler(courseSvc CourseServiceInterface, pdfSvc PDFServiceInterface) *ExportHandler {
	return &ExportHandler{
		courseSvc: courseSvc,
		pdfSvc:    pdfSvc,
	}
}

// @Summary Export Course Data
// @Description Download the course as JSON or CSV
// @Tags export
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param format query string false "Export format (json or csv)" default(json)
// @Success 200 {file} binary
// @Router /api/courses/{id}/export [get]
func (h *ExportHandler) ExportCourse(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))
	req := dto.ExportRequest{Format: c.Query("format")}
	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	export, err := h.courseSvc.Export(c.UserContext(), id, req.Format)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Send(export.Body)
}

// @Summary Generate Course PDF
// @Description Render the full course document as a PDF
// @Tags export
// @Accept json
// @Produce application/pdf
// @Param pdfRequest body dto.PDFExportRequest true "Course to render"
// @Success 200 {file} binary
// @Router /api/generate/course-pdf [post]
func (h *ExportHandler) GenerateCoursePDF(c *fiber.Ctx) error {
	var req dto.PDFExportRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if req.CourseID == "" {
		return shared.ErrBadRequest("course_id is required")
	}

	result, err := h.pdfSvc.ExportCoursePDF(c.UserContext(), req.CourseID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Send(result.Body)
}

// @Summary Generate Activities PDF
// @Description Render the course's activities booklet as a PDF with answer key
// @Tags export
// @Accept json
// @Produce application/pdf
// @Param pdfRequest body dto.PDFExportRequest true "Course to render"
// @Success 200 {file} binary
// @Router /api/generate/activities-pdf [post]
func (h *ExportHandler) GenerateActivitiesPDF(c *fiber.Ctx) error {
	var req dto.PDFExportRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if req.CourseID == "" {
		return shared.ErrBadRequest("course_id is required")
	}

	result, err := h.pdfSvc.ExportActivitiesPDF(c.UserContext(), req.CourseID)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+result.Filename+`"`)
	return c.Send(result.Body)
}
