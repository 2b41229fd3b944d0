package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents the users table
type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:100;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FullName     string     `gorm:"size:100;not null" json:"full_name"`
	Role         string     `gorm:"size:20;not null;default:'manager'" json:"role"`
	Phone        string     `gorm:"size:30" json:"phone,omitempty"`
	AvatarURL    string     `gorm:"size:255" json:"avatar_url,omitempty"`
	Approved     bool       `gorm:"default:false" json:"approved"`
	ApprovedAt   *time.Time `json:"approved_at,omitempty"`
	ApprovedBy   string     `gorm:"size:36" json:"approved_by,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserResponse DTO
type UserResponse struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	Role       string     `json:"role"`
	Phone      string     `json:"phone,omitempty"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Role:       u.Role,
		Phone:      u.Phone,
		AvatarURL:  u.AvatarURL,
		Approved:   u.Approved,
		ApprovedAt: u.ApprovedAt,
		CreatedAt:  u.CreatedAt,
	}
}

// UserSecret holds the hash of a user's report-signing secret key.
// Created in the same transaction as the user row.
type UserSecret struct {
	UserID    string    `gorm:"primaryKey;size:36" json:"user_id"`
	KeyHash   string    `gorm:"size:64;not null" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserSecret) TableName() string {
	return "user_secrets"
}

// RefreshToken represents the refresh_tokens table. Only the SHA-256 hash of
// the opaque token is stored.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"index;size:36;not null" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	return nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// CRM Tables
// ============================================================

// Property represents a real-estate listing
type Property struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Address      string    `gorm:"size:255" json:"address"`
	City         string    `gorm:"size:100;index" json:"city"`
	Price        float64   `gorm:"type:decimal(14,2)" json:"price"`
	PropertyType string    `gorm:"size:50" json:"property_type"`
	Status       string    `gorm:"size:50;default:'active'" json:"status"`
	CreatedBy    string    `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID    string    `gorm:"size:36;index" json:"manager_id"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// Client represents a customer of the agency
type Client struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	FullName  string    `gorm:"size:100;not null" json:"full_name"`
	Email     string    `gorm:"size:100" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone"`
	Status    string    `gorm:"size:50;default:'lead'" json:"status"`
	CreatedBy string    `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID string    `gorm:"size:36;index" json:"manager_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

// Deal links a client to a property with a free-form stage
type Deal struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"size:200;not null" json:"title"`
	PropertyID string    `gorm:"size:36;index" json:"property_id"`
	ClientID   string    `gorm:"size:36;index" json:"client_id"`
	Amount     float64   `gorm:"type:decimal(14,2)" json:"amount"`
	Stage      string    `gorm:"size:50;default:'new'" json:"stage"`
	CreatedBy  string    `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID  string    `gorm:"size:36;index" json:"manager_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Deal) TableName() string {
	return "deals"
}

// Note is a free-form note, optionally attached to another entity
type Note struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Body       string    `gorm:"type:text;not null" json:"body"`
	EntityType string    `gorm:"size:50;index" json:"entity_type"`
	EntityID   string    `gorm:"size:36;index" json:"entity_id"`
	CreatedBy  string    `gorm:"size:36;index;not null" json:"created_by"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Note) TableName() string {
	return "notes"
}

// CalendarEvent represents a calendar entry (viewing, meeting, call)
type CalendarEvent struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"size:255" json:"location"`
	StartsAt    time.Time `gorm:"index" json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Status      string    `gorm:"size:50;default:'scheduled'" json:"status"`
	CreatedBy   string    `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID   string    `gorm:"size:36;index" json:"manager_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// Document is metadata for a file stored in the object store.
// The bytes live under ObjectKey and are only served through the API.
type Document struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	ObjectKey   string    `gorm:"uniqueIndex;size:255;not null" json:"object_key"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	Size        int64     `json:"size"`
	EntityType  string    `gorm:"size:50;index" json:"entity_type"`
	EntityID    string    `gorm:"size:36;index" json:"entity_id"`
	CreatedBy   string    `gorm:"size:36;index;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Document) TableName() string {
	return "documents"
}

// ClientInteraction records a touchpoint with a client
type ClientInteraction struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	ClientID   string    `gorm:"size:36;index" json:"client_id"`
	Kind       string    `gorm:"size:50" json:"kind"`
	Summary    string    `gorm:"type:text" json:"summary"`
	OccurredAt time.Time `gorm:"index" json:"occurred_at"`
	CreatedBy  string    `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID  string    `gorm:"size:36;index" json:"manager_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ClientInteraction) TableName() string {
	return "client_interactions"
}

// Report is a periodic manager report that can be signed once with the
// owner's secret key
type Report struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Title     string     `gorm:"size:200;not null" json:"title"`
	Period    string     `gorm:"size:20;index" json:"period"`
	Status    string     `gorm:"size:50;default:'draft'" json:"status"`
	Signature string     `gorm:"size:64" json:"signature,omitempty"`
	SignedAt  *time.Time `json:"signed_at,omitempty"`
	SignedBy  string     `gorm:"size:36" json:"signed_by,omitempty"`
	CreatedBy string     `gorm:"size:36;index;not null" json:"created_by"`
	ManagerID string     `gorm:"size:36;index" json:"manager_id"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) IsSigned() bool {
	return r.SignedAt != nil
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserSecret{},
		&RefreshToken{},
		&Property{},
		&Client{},
		&Deal{},
		&Note{},
		&CalendarEvent{},
		&Document{},
		&ClientInteraction{},
		&Report{},
	)
}
