package handlers

import (
	"errors"

	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/core/services"
	"estatecrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// maxUploadSize caps uploads at 25 MB
const maxUploadSize = 25 << 20

// FileHandler handles file upload and authenticated download proxying
type FileHandler struct {
	fileService *services.FileService
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService *services.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

// Upload handles multipart file upload
// @Summary Upload file
// @Description Store the file bytes and, for documents, a metadata record
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param kind formData string false "document or avatar" default(document)
// @Success 201 {object} services.UploadResult
// @Failure 400 {object} response.ErrorBody
// @Router /files/upload [post]
func (h *FileHandler) Upload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "File is required")
	}
	if fileHeader.Size > maxUploadSize {
		return response.BadRequest(c, "File exceeds the 25MB limit")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.BadRequest(c, "Failed to read uploaded file")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.fileService.Upload(
		c.Context(),
		middleware.Actor(c),
		c.FormValue("kind"),
		fileHeader.Filename,
		contentType,
		fileHeader.Size,
		src,
	)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Unknown file kind")
		}
		return response.InternalServerError(c, "Failed to upload file")
	}

	return response.Created(c, result)
}

// Download proxies stored file bytes through the API
// @Summary Download file
// @Description Stream the object; document access is scoped to the caller
// @Tags Files
// @Produce octet-stream
// @Security BearerAuth
// @Param key path string true "Object key"
// @Success 200 {file} binary
// @Failure 404 {object} response.ErrorBody
// @Router /files/{key} [get]
func (h *FileHandler) Download(c *fiber.Ctx) error {
	key := c.Params("*")
	if key == "" {
		return response.NotFound(c, "File not found")
	}

	rc, contentType, err := h.fileService.Download(c.Context(), middleware.Actor(c), key)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return response.NotFound(c, "File not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to access this file")
		default:
			return response.InternalServerError(c, "Failed to download file")
		}
	}

	c.Set(fiber.HeaderContentType, contentType)
	return c.SendStream(rc)
}
