package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/shared"
)

type CourseHandler struct {
	courseSvc CourseServiceInterface
}

func NewCourseHandler(courseSvc CourseServiceInterface) *CourseHandler {
	return &CourseHandler{
		courseSvc: courseSvc,
	}
}

// @Summary Create Course
// @Description Create a new course with initial strategy fields
// @Tags courses
// @Accept json
// @Produce json
// @Param createRequest body dto.CreateCourseRequest true "Course details"
// @Success 201 {object} shared.Response{data=dto.CourseResponse}
// @Router /api/courses [post]
func (h *CourseHandler) CreateCourse(c *fiber.Ctx) error {
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.courseSvc.CreateCourse(req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Course created", resp)
}

// @Summary New Course Session
// @Description Start a new wizard session, resuming an unfinished phase-1 draft when one exists
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.CourseResponse}
// @Router /api/courses/new [post]
func (h *CourseHandler) NewCourse(c *fiber.Ctx) error {
	resp := h.courseSvc.CreateNewCourse()
	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary List Courses
// @Description List all persisted courses
// @Tags courses
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.CourseListResponse}
// @Router /api/courses [get]
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	resp, err := h.courseSvc.ListCourses(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Get Course
// @Description Get a course with its modules, lessons and phase data
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id} [get]
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	course, err := h.courseSvc.GetCourse(c.UserContext(), id)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", course)
}

// @Summary Update Course
// @Description Update course basic info and AI configuration
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param updateRequest body dto.UpdateCourseRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id} [put]
func (h *CourseHandler) UpdateCourse(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	var req dto.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	course, err := h.courseSvc.UpdateCourse(c.UserContext(), id, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Course updated", course)
}

// @Summary Delete Course
// @Description Delete a course and all its modules, lessons and phase data
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} shared.Response
// @Router /api/courses/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	if err := h.courseSvc.DeleteCourse(c.UserContext(), id); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Course deleted", nil)
}

// @Summary Advance Phase
// @Description Move the course to the next wizard phase
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id}/advance [post]
func (h *CourseHandler) AdvancePhase(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	course, err := h.courseSvc.AdvancePhase(c.UserContext(), id)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", course)
}

// @Summary Update Progress
// @Description Set the completion percentage of one phase
// @Tags courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param progressRequest body dto.UpdateProgressRequest true "Phase and value"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id}/progress [put]
func (h *CourseHandler) UpdateProgress(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	var req dto.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	course, err := h.courseSvc.UpdateProgress(c.UserContext(), id, req.Phase, req.Value)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", course)
}

// @Summary Save Phase Data
// @Description Merge free-form data into one wizard phase
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param phaseNumber path int true "Phase number (1-5)"
// @Param phaseRequest body dto.SavePhaseDataRequest true "Phase payload"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{courseId}/phase/{phaseNumber} [post]
func (h *CourseHandler) SavePhaseData(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("courseId"))
	phase, err := strconv.Atoi(c.Params("phaseNumber"))
	if err != nil || phase < shared.PhaseStrategy || phase > shared.PhaseReview {
		return shared.ErrBadRequest("phase number must be between 1 and 5")
	}

	var req dto.SavePhaseDataRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	course, err := h.courseSvc.SavePhaseData(c.UserContext(), id, phase, req.Data)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Phase data saved", course)
}

// @Summary Get Phase Data
// @Description Get the stored payload of one wizard phase
// @Tags courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param phaseNumber path int true "Phase number (1-5)"
// @Success 200 {object} shared.Response{data=model.PhaseDataRecord}
// @Router /api/courses/{courseId}/phase/{phaseNumber} [get]
func (h *CourseHandler) GetPhaseData(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("courseId"))
	phase, err := strconv.Atoi(c.Params("phaseNumber"))
	if err != nil || phase < shared.PhaseStrategy || phase > shared.PhaseReview {
		return shared.ErrBadRequest("phase number must be between 1 and 5")
	}

	record, err := h.courseSvc.GetPhaseData(c.UserContext(), id, phase)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", record)
}

// @Summary Replace Modules
// @Description Replace the course's module list, renumbering order 1..N
// @Tags modules
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param modulesRequest body dto.ReplaceModulesRequest true "Full module list"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id}/modules [put]
func (h *CourseHandler) ReplaceModules(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))

	var req dto.ReplaceModulesRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	course, err := h.courseSvc.ReplaceModules(c.UserContext(), id, req.Modules)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Modules updated", course)
}

// @Summary Update Module
// @Description Patch a single module's fields, status or generated content
// @Tags modules
// @Accept json
// @Produce json
// @Param id path string true "Module ID"
// @Param moduleRequest body dto.UpdateModuleRequest true "Fields to update"
// @Success 200 {object} shared.Response{data=model.Module}
// @Router /api/modules/{id} [put]
func (h *CourseHandler) UpdateModule(c *fiber.Ctx) error {
	moduleID := c.Params("id")

	var req dto.UpdateModuleRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	module, err := h.courseSvc.UpdateModule(c.UserContext(), moduleID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Module updated", module)
}

// @Summary Remove Module
// @Description Remove one module from the course, renumbering the rest
// @Tags modules
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param moduleId path string true "Module ID"
// @Success 200 {object} shared.Response{data=model.Course}
// @Router /api/courses/{id}/modules/{moduleId} [delete]
func (h *CourseHandler) RemoveModule(c *fiber.Ctx) error {
	id := shared.ParseCourseID(c.Params("id"))
	moduleID := c.Params("moduleId")

	course, err := h.courseSvc.RemoveModule(c.UserContext(), id, moduleID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Module removed", course)
}
