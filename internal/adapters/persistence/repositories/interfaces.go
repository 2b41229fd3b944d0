package repositories

import (
	"context"

	"estatecrm/internal/adapters/persistence/models"
)

// UserRepository defines user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateWithSecret creates the user row and its signing-secret row in a
	// single transaction. A failure on either write rolls both back.
	CreateWithSecret(ctx context.Context, user *models.User, secret *models.UserSecret) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetSecret(ctx context.Context, userID string) (*models.UserSecret, error)
	UpsertSecret(ctx context.Context, secret *models.UserSecret) error
}

// RefreshTokenRepository defines refresh token persistence operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	// Rotate atomically deletes the old token row and inserts the new one.
	// Returns gorm.ErrRecordNotFound when the old token was already consumed,
	// which closes the double-use window of read-then-write rotation.
	Rotate(ctx context.Context, oldTokenHash string, newToken *models.RefreshToken) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	DeleteAllByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// ResourceRepository defines generic table-level CRUD used by the resource
// gateway. Table and column names are always taken from the resource
// registry, never from the request.
type ResourceRepository interface {
	List(ctx context.Context, query *ListQuery) ([]map[string]interface{}, int64, error)
	GetByID(ctx context.Context, table, id string, scope *OwnerScope) (map[string]interface{}, error)
	Insert(ctx context.Context, table string, fields map[string]interface{}) error
	Update(ctx context.Context, table, id string, scope *OwnerScope, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, table, id string, scope *OwnerScope) (int64, error)
}

// ReportRepository defines typed report persistence operations
type ReportRepository interface {
	GetByID(ctx context.Context, id string) (*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
}
