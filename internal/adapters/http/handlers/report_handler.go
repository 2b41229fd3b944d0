package handlers

import (
	"errors"

	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/core/services"
	"estatecrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles report signing
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// Sign handles report signing
// @Summary Sign report
// @Description Attach a signature computed from the caller's signing key; each report is signable once
// @Tags Reports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param body body services.SignInput true "Period and signing key"
// @Success 200 {object} models.Report
// @Failure 400 {object} response.ErrorBody
// @Failure 401 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /reports/{id}/sign [post]
func (h *ReportHandler) Sign(c *fiber.Ctx) error {
	var req services.SignInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Period == "" || req.SecretKey == "" {
		return response.BadRequest(c, "Period and secret key are required")
	}

	report, err := h.reportService.Sign(c.Context(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to sign reports")
		case errors.Is(err, domain.ErrInvalidSecretKey):
			return response.Unauthorized(c, "Invalid signing key")
		case errors.Is(err, domain.ErrReportNotFound):
			return response.NotFound(c, "Report not found")
		case errors.Is(err, domain.ErrPeriodMismatch):
			return response.BadRequest(c, "Period does not match the report")
		case errors.Is(err, domain.ErrAlreadySigned):
			return response.BadRequest(c, "Report is already signed")
		default:
			return response.InternalServerError(c, "Failed to sign report")
		}
	}

	return response.JSON(c, report)
}
