package handlers

import (
	"errors"
	"strconv"

	"estatecrm/internal/adapters/http/middleware"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/core/services"
	"estatecrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles user management endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers handles listing all users
// @Summary List users
// @Description Paginated user list (manage_users holders only)
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} services.ListUsersOutput
// @Failure 403 {object} response.ErrorBody
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	result, err := h.userService.ListUsers(c.Context(), middleware.Actor(c), page, limit)
	if err != nil {
		if errors.Is(err, domain.ErrForbidden) {
			return response.Forbidden(c, "You don't have permission to list users")
		}
		return response.InternalServerError(c, "Failed to list users")
	}

	return response.JSON(c, result)
}

// GetUser handles getting a user by ID
// @Summary Get user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.userService.GetUser(c.Context(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to view users")
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		default:
			return response.InternalServerError(c, "Failed to get user")
		}
	}

	return response.JSON(c, user)
}

// CreateUser handles the admin create-user flow. POST /api/users bodies
// containing email+password always route here, never to a raw table insert.
// @Summary Create user
// @Description Create a fully usable account; target role is validated against the caller's role
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateUserInput true "New user"
// @Success 201 {object} services.CreatedUser
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /users [post]
func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var req services.CreateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	result, err := h.userService.CreateUser(c.Context(), middleware.Actor(c), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to create a user with this role")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.BadRequest(c, "Email already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid email or password")
		case errors.Is(err, domain.ErrPartialFailure):
			return response.InternalServerError(c, "Account creation was rolled back: "+err.Error())
		default:
			return response.InternalServerError(c, "Failed to create user")
		}
	}

	return response.Created(c, result)
}

// UpdateUser handles updating a user
// @Summary Update user
// @Description Partial update; role and approval changes are capability-checked
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param body body services.UpdateUserInput true "Fields to update"
// @Success 200 {object} models.UserResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	var req services.UpdateUserInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.userService.UpdateUser(c.Context(), middleware.Actor(c), c.Params("id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to modify this user")
		case errors.Is(err, services.ErrCannotChangeOwnRole):
			return response.BadRequest(c, "Cannot change your own role")
		case errors.Is(err, domain.ErrInvalidRole):
			return response.BadRequest(c, "Invalid role")
		case errors.Is(err, domain.ErrEmailTaken):
			return response.BadRequest(c, "Email already exists")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid email format")
		default:
			return response.InternalServerError(c, "Failed to update user")
		}
	}

	return response.JSON(c, user)
}

// ApproveUser opens the approval gate for a user
// @Summary Approve user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id}/approve [post]
func (h *UserHandler) ApproveUser(c *fiber.Ctx) error {
	user, err := h.userService.ApproveUser(c.Context(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to approve this user")
		default:
			return response.InternalServerError(c, "Failed to approve user")
		}
	}

	return response.JSON(c, user)
}

// DeleteUser handles deleting a user
// @Summary Delete user
// @Tags Users
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 204
// @Failure 403 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	err := h.userService.DeleteUser(c.Context(), middleware.Actor(c), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			return response.NotFound(c, "User not found")
		case errors.Is(err, domain.ErrForbidden):
			return response.Forbidden(c, "You don't have permission to delete this user")
		case errors.Is(err, services.ErrCannotDeleteSelf):
			return response.BadRequest(c, "Cannot delete your own account")
		default:
			return response.InternalServerError(c, "Failed to delete user")
		}
	}

	return response.NoContent(c)
}

// SigningKey regenerates and returns the caller's report-signing key
// @Summary Regenerate signing key
// @Description Replace the caller's report-signing secret; the key is shown once
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/signing-key [post]
func (h *UserHandler) SigningKey(c *fiber.Ctx) error {
	key, err := h.userService.RegenerateSigningKey(c.Context(), middleware.Actor(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to regenerate signing key")
	}
	return response.JSON(c, fiber.Map{"signing_key": key})
}
