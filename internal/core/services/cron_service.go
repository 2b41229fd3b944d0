package services

import (
	"context"
	"log"
	"time"

	"estatecrm/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs scheduled maintenance jobs
type CronService struct {
	c                *cron.Cron
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		c:                cron.New(),
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() {
	// Purge expired refresh tokens nightly at 03:30
	_, err := s.c.AddFunc("30 3 * * *", s.purgeExpiredTokens)
	if err != nil {
		log.Printf("❌ Failed to schedule token purge: %v", err)
		return
	}
	s.c.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

func (s *CronService) purgeExpiredTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := s.refreshTokenRepo.DeleteExpired(ctx)
	if err != nil {
		log.Printf("⚠️ Expired token purge failed: %v", err)
		return
	}
	log.Printf("🧹 Purged %d expired refresh tokens", n)
}
