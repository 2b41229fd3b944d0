package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"time"

	"estatecrm/internal/adapters/persistence/models"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/jwt"
	"estatecrm/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSuperuser(); err != nil {
		log.Printf("⚠️ Superuser seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSuperuser seeds the initial superuser when none exists. Superusers are
// never created through the API, so this is the only way to get the first
// one. Credentials come from SEED_SUPERUSER_EMAIL / SEED_SUPERUSER_PASSWORD;
// with neither set the seeder does nothing.
func (s *Seeder) seedSuperuser() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", string(domain.RoleSuperuser)).Count(&count)
	if count > 0 {
		return nil // superuser already exists
	}

	email := getEnv("SEED_SUPERUSER_EMAIL", "")
	pass := getEnv("SEED_SUPERUSER_PASSWORD", "")
	if email == "" || pass == "" {
		log.Println("ℹ️ No superuser found and SEED_SUPERUSER_* not set, skipping")
		return nil
	}

	hashed, err := password.Hash(pass)
	if err != nil {
		return err
	}

	now := time.Now()
	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		FullName:     "Superuser",
		Role:         string(domain.RoleSuperuser),
		Approved:     true,
		ApprovedAt:   &now,
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	key := hex.EncodeToString(buf)
	secret := &models.UserSecret{KeyHash: jwt.HashToken(key)}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		secret.UserID = user.ID
		if err := tx.Create(secret).Error; err != nil {
			return err
		}
		log.Printf("✅ Superuser seeded: %s (signing key: %s)", email, key)
		return nil
	})
}
