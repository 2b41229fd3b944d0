package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"estatecrm/internal/adapters/persistence/models"
	"estatecrm/internal/adapters/persistence/repositories"
	"estatecrm/internal/core/domain"
	"estatecrm/internal/pkg/jwt"

	"gorm.io/gorm"
)

// ReportService handles report signing. The signature is a shared-secret
// MAC over reportID+period+secretKey checked against the caller's stored
// per-user key; it proves "this user's key signed this", not non-repudiation.
type ReportService struct {
	userRepo   repositories.UserRepository
	reportRepo repositories.ReportRepository
}

// NewReportService creates a new report service
func NewReportService(
	userRepo repositories.UserRepository,
	reportRepo repositories.ReportRepository,
) *ReportService {
	return &ReportService{
		userRepo:   userRepo,
		reportRepo: reportRepo,
	}
}

// SignInput represents report signing input
type SignInput struct {
	Period    string `json:"period"`
	SecretKey string `json:"secret_key"`
}

// Sign signs a report with the caller's secret key. A report is signable at
// most once; re-signing fails distinctly.
func (s *ReportService) Sign(ctx context.Context, actor *domain.Actor, reportID string, input *SignInput) (*models.Report, error) {
	if !domain.HasPermission(actor.Role, domain.CapManageOwnReports) &&
		!domain.HasPermission(actor.Role, domain.CapManageReports) {
		return nil, domain.ErrForbidden
	}

	secret, err := s.userRepo.GetSecret(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrInvalidSecretKey
		}
		return nil, err
	}
	if jwt.HashToken(input.SecretKey) != secret.KeyHash {
		return nil, domain.ErrInvalidSecretKey
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}

	// Out-of-scope reports are indistinguishable from missing ones
	if !domain.HasPermission(actor.Role, domain.CapManageAllReports) &&
		report.CreatedBy != actor.ID && report.ManagerID != actor.ID {
		return nil, domain.ErrReportNotFound
	}

	if input.Period != report.Period {
		return nil, domain.ErrPeriodMismatch
	}
	if report.IsSigned() {
		return nil, domain.ErrAlreadySigned
	}

	sum := sha256.Sum256([]byte(report.ID + input.Period + input.SecretKey))
	now := time.Now()
	report.Signature = hex.EncodeToString(sum[:])
	report.SignedAt = &now
	report.SignedBy = actor.ID
	report.Status = "signed"

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	log.Printf("✅ Report %s signed by %s", report.ID, actor.Email)
	return report, nil
}
