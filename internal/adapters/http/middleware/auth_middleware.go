package middleware

import (
	"errors"
	"strings"

	"estatecrm/internal/adapters/cache"
	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/config"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/jwt"
	"estatecrm/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Protected creates the bearer-token authentication middleware. Refresh is
// never attempted here; an expired access token is the client's cue to call
// the refresh endpoint explicitly.
func Protected(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			return response.Unauthorized(c, "Access token required")
		}
		accessToken := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// ApprovalGate denies access for accounts that authenticated but were never
// approved by an administrator. Runs after Protected and before any
// role-based check; the lookup is Redis-cached with a short TTL.
func ApprovalGate(userRepo repositories.UserRepository, idCache *cache.IdentityCache) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(string)
		if !ok || userID == "" {
			return response.Unauthorized(c, "Unauthorized")
		}

		if id, hit := idCache.Get(c.Context(), userID); hit {
			if !id.Approved {
				return response.Forbidden(c, "Account pending approval")
			}
			// The cached role is fresher than the token claim after a role change
			c.Locals("role", id.Role)
			return c.Next()
		}

		user, err := userRepo.GetByID(c.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "Unauthorized")
			}
			return response.InternalServerError(c, "Failed to resolve identity")
		}

		idCache.Set(c.Context(), &cache.Identity{
			ID:       user.ID,
			Email:    user.Email,
			Role:     user.Role,
			Approved: user.Approved,
		})

		if !user.Approved {
			return response.Forbidden(c, "Account pending approval")
		}
		c.Locals("role", user.Role)

		return c.Next()
	}
}

// RequireCapability gates a route on a named capability of the caller's role
func RequireCapability(cap domain.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals("role").(string)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}
		if !domain.HasPermission(domain.Role(role), cap) {
			return response.Forbidden(c, "You don't have permission to access this resource")
		}
		return c.Next()
	}
}

// Actor builds the verified caller identity from request locals
func Actor(c *fiber.Ctx) *domain.Actor {
	id, _ := c.Locals("userID").(string)
	email, _ := c.Locals("email").(string)
	role, _ := c.Locals("role").(string)
	return &domain.Actor{ID: id, Email: email, Role: domain.Role(role)}
}
