package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"estatecrm/internal/adapters/persistence/models"
	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/jwt"
	"estatecrm/internal/pkg/password"

	"gorm.io/gorm"
)

// User service errors
var (
	ErrCannotDeleteSelf    = errors.New("cannot delete your own account")
	ErrCannotChangeOwnRole = errors.New("cannot change your own role")
)

// IdentityCache invalidates cached identity lookups after user mutations.
// A nil cache is a no-op.
type IdentityCache interface {
	Invalidate(ctx context.Context, userID string) error
}

// UserService handles user management business logic. Every operation
// re-validates the actor's capabilities server-side; client-side role checks
// are advisory only.
type UserService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	cache            IdentityCache
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cache IdentityCache,
) *UserService {
	return &UserService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		cache:            cache,
	}
}

// CreateUserInput represents admin create-user input
type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

// CreatedUser is the admin create-user result. SigningKey is returned
// exactly once; only its hash is stored.
type CreatedUser struct {
	User       *models.UserResponse `json:"user"`
	SigningKey string               `json:"signing_key"`
}

// UpdateUserInput represents update-user input; nil fields are untouched
type UpdateUserInput struct {
	Email     *string `json:"email"`
	FullName  *string `json:"full_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
	Role      *string `json:"role"`
	Approved  *bool   `json:"approved"`
}

// ListUsersOutput represents list users output
type ListUsersOutput struct {
	Users []*models.UserResponse `json:"users"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// CreateUser creates a fully usable account on behalf of an administrator.
// The user row and its signing-secret row are written in one transaction; a
// mid-flight failure rolls back and surfaces ErrPartialFailure so the
// handler can report it distinctly from a generic storage error.
func (s *UserService) CreateUser(ctx context.Context, actor *domain.Actor, input *CreateUserInput) (*CreatedUser, error) {
	role := input.Role
	if role == "" {
		role = string(domain.RoleManager)
	}
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}
	if !domain.CanCreateRole(actor.Role, domain.Role(role)) {
		return nil, domain.ErrForbidden
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !ValidEmail(email) {
		return nil, domain.ErrInvalidInput
	}
	if !password.ValidatePassword(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailTaken
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     strings.TrimSpace(input.FullName),
		Phone:        strings.TrimSpace(input.Phone),
		Role:         role,
		Approved:     true,
		ApprovedAt:   &now,
		ApprovedBy:   actor.ID,
	}

	key, err := newSigningKey()
	if err != nil {
		return nil, err
	}
	secret := &models.UserSecret{KeyHash: jwt.HashToken(key)}

	if err := s.userRepo.CreateWithSecret(ctx, user, secret); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPartialFailure, err)
	}

	log.Printf("✅ User created by %s: %s (role: %s)", actor.Email, user.Email, role)

	return &CreatedUser{User: user.ToResponse(), SigningKey: key}, nil
}

// ListUsers lists users with pagination (manage_users holders only)
func (s *UserService) ListUsers(ctx context.Context, actor *domain.Actor, page, limit int) (*ListUsersOutput, error) {
	if !domain.HasPermission(actor.Role, domain.CapManageUsers) {
		return nil, domain.ErrForbidden
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	users, total, err := s.userRepo.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	out := make([]*models.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}

	return &ListUsersOutput{Users: out, Total: total, Page: page, Limit: limit}, nil
}

// GetUser gets a user by ID (manage_users holders only)
func (s *UserService) GetUser(ctx context.Context, actor *domain.Actor, id string) (*models.UserResponse, error) {
	if !domain.HasPermission(actor.Role, domain.CapManageUsers) {
		return nil, domain.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user.ToResponse(), nil
}

// UpdateUser updates a user under the actor's capability constraints
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.Actor, id string, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if !domain.CanManageUser(actor.Role, domain.Role(user.Role)) {
		return nil, domain.ErrForbidden
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email != user.Email {
			if !ValidEmail(email) {
				return nil, domain.ErrInvalidInput
			}
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, domain.ErrEmailTaken
			}
			user.Email = email
		}
	}

	if input.Role != nil && *input.Role != user.Role {
		if id == actor.ID {
			return nil, ErrCannotChangeOwnRole
		}
		if !domain.ValidRole(*input.Role) {
			return nil, domain.ErrInvalidRole
		}
		// Granting a role follows the same rules as creating one
		if !domain.CanCreateRole(actor.Role, domain.Role(*input.Role)) {
			return nil, domain.ErrForbidden
		}
		user.Role = *input.Role
	}

	if input.FullName != nil {
		user.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = *input.AvatarURL
	}

	if input.Approved != nil && *input.Approved != user.Approved {
		user.Approved = *input.Approved
		if *input.Approved {
			now := time.Now()
			user.ApprovedAt = &now
			user.ApprovedBy = actor.ID
		} else {
			user.ApprovedAt = nil
			user.ApprovedBy = ""
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.invalidate(ctx, user.ID)

	return user.ToResponse(), nil
}

// ApproveUser flips the approval gate open for a user
func (s *UserService) ApproveUser(ctx context.Context, actor *domain.Actor, id string) (*models.UserResponse, error) {
	approved := true
	return s.UpdateUser(ctx, actor, id, &UpdateUserInput{Approved: &approved})
}

// DeleteUser deletes a user and revokes all their sessions
func (s *UserService) DeleteUser(ctx context.Context, actor *domain.Actor, id string) error {
	if id == actor.ID {
		return ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrUserNotFound
		}
		return err
	}

	if !domain.CanManageUser(actor.Role, domain.Role(user.Role)) {
		return domain.ErrForbidden
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.refreshTokenRepo.DeleteAllByUserID(ctx, id)
	s.invalidate(ctx, id)

	log.Printf("✅ User deleted by %s: %s", actor.Email, user.Email)
	return nil
}

// RegenerateSigningKey replaces the caller's report-signing secret and
// returns the new key exactly once
func (s *UserService) RegenerateSigningKey(ctx context.Context, actor *domain.Actor) (string, error) {
	key, err := newSigningKey()
	if err != nil {
		return "", err
	}
	secret := &models.UserSecret{UserID: actor.ID, KeyHash: jwt.HashToken(key)}
	if err := s.userRepo.UpsertSecret(ctx, secret); err != nil {
		return "", err
	}
	return key, nil
}

func (s *UserService) invalidate(ctx context.Context, userID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}

// newSigningKey generates an opaque per-user secret key
func newSigningKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
