package handlers

import (
	"errors"

	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/core/services"
	"estatecrm/internal/pkg/pagination"
	"estatecrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// reservedQueryKeys are query parameters consumed by the gateway itself;
// everything else is treated as an equality filter candidate.
var reservedQueryKeys = map[string]bool{
	"page":  true,
	"limit": true,
	"sort":  true,
}

// ResourceHandler serves the generic CRUD gateway. One handler instance
// covers every registered resource; the resource name is bound at route
// registration time.
type ResourceHandler struct {
	resourceService *services.ResourceService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(resourceService *services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

func (h *ResourceHandler) mapError(c *fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, "You don't have permission to access this resource")
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, "Resource not found")
	default:
		return response.InternalServerError(c, "Failed to "+action+" resource")
	}
}

// List handles GET /api/{resource}
// @Summary List resources
// @Description Paginated, filterable, sortable list scoped to the caller's visibility
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param sort query string false "Sort column, '-' prefix for descending"
// @Success 200 {object} pagination.Response
// @Failure 403 {object} response.ErrorBody
// @Router /{resource} [get]
func (h *ResourceHandler) List(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		params := pagination.GetParams(c)

		filters := map[string]string{}
		for key, val := range c.Queries() {
			if !reservedQueryKeys[key] {
				filters[key] = val
			}
		}

		result, err := h.resourceService.List(c.Context(), middleware.Actor(c), resource, c.Query("sort"), filters, params)
		if err != nil {
			return h.mapError(c, err, "list")
		}

		return response.JSON(c, pagination.NewResponse(result.Rows, params, result.Total))
	}
}

// Get handles GET /api/{resource}/{id}
// @Summary Get resource by ID
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} response.ErrorBody
// @Router /{resource}/{id} [get]
func (h *ResourceHandler) Get(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		row, err := h.resourceService.Get(c.Context(), middleware.Actor(c), resource, c.Params("id"))
		if err != nil {
			return h.mapError(c, err, "get")
		}
		return response.JSON(c, row)
	}
}

// Create handles POST /api/{resource}
// @Summary Create resource
// @Description Insert a row; server-assigned fields in the body are ignored
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Router /{resource} [post]
func (h *ResourceHandler) Create(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}

		row, err := h.resourceService.Create(c.Context(), middleware.Actor(c), resource, body)
		if err != nil {
			return h.mapError(c, err, "create")
		}
		return response.Created(c, row)
	}
}

// Update handles PUT /api/{resource}/{id}
// @Summary Update resource
// @Description Partial update of the supplied writable fields only
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "Resource ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /{resource}/{id} [put]
func (h *ResourceHandler) Update(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body map[string]interface{}
		if err := c.BodyParser(&body); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}

		row, err := h.resourceService.Update(c.Context(), middleware.Actor(c), resource, c.Params("id"), body)
		if err != nil {
			return h.mapError(c, err, "update")
		}
		return response.JSON(c, row)
	}
}

// Delete handles DELETE /api/{resource}/{id}
// @Summary Delete resource
// @Tags Resources
// @Security BearerAuth
// @Param resource path string true "Resource name"
// @Param id path string true "Resource ID"
// @Success 204
// @Failure 404 {object} response.ErrorBody
// @Router /{resource}/{id} [delete]
func (h *ResourceHandler) Delete(resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := h.resourceService.Delete(c.Context(), middleware.Actor(c), resource, c.Params("id")); err != nil {
			return h.mapError(c, err, "delete")
		}
		return response.NoContent(c)
	}
}
