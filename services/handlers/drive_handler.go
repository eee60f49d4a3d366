package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/edforge-labs/coursegen_api/dto"
	"github.com/edforge-labs/coursegen_api/shared"
)

type DriveHandler struct {
	driveSvc DriveServiceInterface
}

func NewDriveHandler(driveSvc DriveServiceInterface) *DriveHandler {
	return &DriveHandler{
		driveSvc: driveSvc,
	}
}

// @Summary Get Drive Auth URL
// @Description Get the Google consent-screen URL to connect a Drive account
// @Tags drive
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=dto.DriveAuthURLResponse}
// @Router /api/google-drive/auth-url [get]
func (h *DriveHandler) GetAuthURL(c *fiber.Ctx) error {
	resp, err := h.driveSvc.AuthURL()
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Success", resp)
}

// @Summary Drive OAuth Callback
// @Description Exchange the authorization code for a token and persist it
// @Tags drive
// @Accept json
// @Produce json
// @Param callbackRequest body dto.DriveCallbackRequest true "Authorization code"
// @Success 200 {object} shared.Response
// @Router /api/google-drive/callback [post]
func (h *DriveHandler) HandleCallback(c *fiber.Ctx) error {
	var req dto.DriveCallbackRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return err
		}
	}

	// The consent redirect may also deliver the code as a query param.
	if req.Code == "" {
		req.Code = c.Query("code")
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	if err := h.driveSvc.HandleCallback(c.UserContext(), req.Code); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Google Drive connected", nil)
}

// @Summary Drive Connection Status
// @Description Check whether a Drive account is connected
// @Tags drive
// @Accept json
// @Produce json
// @Success 200 {object} shared.Response{data=map[string]bool}
// @Router /api/google-drive/status [get]
func (h *DriveHandler) GetStatus(c *fiber.Ctx) error {
	connected := h.driveSvc.Connected(c.UserContext())
	return shared.ResponseJSON(c, http.StatusOK, "Success", fiber.Map{"connected": connected})
}

// @Summary Upload Course to Drive
// @Description Render the course PDF and upload it to the connected Drive account
// @Tags drive
// @Accept json
// @Produce json
// @Param uploadRequest body dto.DriveUploadRequest true "Course and optional folder"
// @Success 200 {object} shared.Response{data=dto.DriveUploadResponse}
// @Router /api/google-drive/upload-course [post]
func (h *DriveHandler) UploadCourse(c *fiber.Ctx) error {
	var req dto.DriveUploadRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	resp, err := h.driveSvc.UploadCourse(c.UserContext(), req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Course uploaded to Google Drive", resp)
}
