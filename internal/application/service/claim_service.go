package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/domain/event"
	"github.com/garyjia/claims-intake/pkg/utils"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// CreateClaimInput is the data accepted when a claim is filed
type CreateClaimInput struct {
	PolicyNumber        string
	IncidentDate        time.Time
	IncidentLocation    string
	IncidentDescription string
	VehicleVIN          string
	VehicleMake         string
	VehicleModel        string
	VehicleYear         int
	ClaimantName        string
	ClaimantEmail       string
	ClaimantPhone       string
	EstimatedDamageCost *float64
}

// ClaimService manages claim intake
type ClaimService interface {
	CreateClaim(ctx context.Context, input CreateClaimInput) (*entity.Claim, error)
	GetClaim(ctx context.Context, id string) (*entity.Claim, error)
	UploadPhoto(ctx context.Context, claimID string, upload entity.PhotoUpload) (*entity.ClaimPhoto, error)
	ListAuditLog(ctx context.Context, claimID string) ([]*entity.ClaimAuditLog, error)
}

type claimServiceImpl struct {
	claimRepo    port.ClaimRepository
	photoRepo    port.PhotoRepository
	auditLogRepo port.AuditLogRepository
	storage      port.FileStorage
	txManager    port.TransactionManager
	events       port.EventPublisher
	logger       Logger
}

// NewClaimService creates a new ClaimService
func NewClaimService(
	claimRepo port.ClaimRepository,
	photoRepo port.PhotoRepository,
	auditLogRepo port.AuditLogRepository,
	storage port.FileStorage,
	txManager port.TransactionManager,
	events port.EventPublisher,
	logger Logger,
) ClaimService {
	return &claimServiceImpl{
		claimRepo:    claimRepo,
		photoRepo:    photoRepo,
		auditLogRepo: auditLogRepo,
		storage:      storage,
		txManager:    txManager,
		events:       events,
		logger:       logger,
	}
}

// CreateClaim validates the input and stores a new claim in status New
func (s *claimServiceImpl) CreateClaim(ctx context.Context, input CreateClaimInput) (*entity.Claim, error) {
	if err := validateClaimInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	incidentDate := input.IncidentDate
	year := input.VehicleYear

	claim := &entity.Claim{
		ID:                  uuid.NewString(),
		PolicyNumber:        strings.TrimSpace(input.PolicyNumber),
		ClaimNumber:         newClaimNumber(now),
		ClaimantName:        utils.SanitizeString(input.ClaimantName),
		ClaimantPhone:       strings.TrimSpace(input.ClaimantPhone),
		ClaimantEmail:       strings.TrimSpace(input.ClaimantEmail),
		IncidentDate:        &incidentDate,
		IncidentLocation:    utils.SanitizeString(input.IncidentLocation),
		IncidentDescription: utils.SanitizeString(input.IncidentDescription),
		VehicleVIN:          strings.TrimSpace(input.VehicleVIN),
		VehicleMake:         input.VehicleMake,
		VehicleModel:        input.VehicleModel,
		VehicleYear:         &year,
		Status:              entity.ClaimStatusNew,
		EstimatedDamageCost: input.EstimatedDamageCost,
		CreatedAt:           now,
		UpdatedAt:           now,
		Photos:              []*entity.ClaimPhoto{},
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.claimRepo.Create(txCtx, claim); err != nil {
			return fmt.Errorf("create claim: %w", err)
		}

		entry := &entity.ClaimAuditLog{
			ID:          uuid.NewString(),
			ClaimID:     claim.ID,
			Action:      entity.AuditActionCreated,
			PerformedBy: entity.PerformedByAPI,
			Details:     mustJSON(map[string]string{"claim_number": claim.ClaimNumber, "status": claim.Status}),
			CreatedAt:   now,
		}
		if err := s.auditLogRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create claim", "error", err, "policy_number", claim.PolicyNumber)
		return nil, err
	}

	publish(ctx, s.events, s.logger, event.ClaimCreated(claim.ID, claim.ClaimNumber, claim.PolicyNumber))

	s.logger.Info("Claim created", "id", claim.ID, "claim_number", claim.ClaimNumber, "policy_number", claim.PolicyNumber)
	return claim, nil
}

// GetClaim retrieves a claim with its photos
func (s *claimServiceImpl) GetClaim(ctx context.Context, id string) (*entity.Claim, error) {
	claim, err := s.loadClaim(ctx, id)
	if err != nil {
		return nil, err
	}

	photos, err := s.photoRepo.GetByClaimID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get photos", "error", err, "claim_id", id)
		return nil, fmt.Errorf("get photos: %w", err)
	}
	if photos == nil {
		photos = []*entity.ClaimPhoto{}
	}
	claim.Photos = photos

	return claim, nil
}

// UploadPhoto stores the file and records it against the claim
func (s *claimServiceImpl) UploadPhoto(ctx context.Context, claimID string, upload entity.PhotoUpload) (*entity.ClaimPhoto, error) {
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidPhoto)
	}
	if upload.AIAnalysis != "" && !json.Valid([]byte(upload.AIAnalysis)) {
		return nil, fmt.Errorf("%w: ai_analysis is not valid JSON", ErrInvalidPhoto)
	}

	claim, err := s.loadClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	photoID := uuid.NewString()
	relPath := uuid.NewString() + filepath.Ext(upload.FileName)
	if err := s.storage.Save(ctx, relPath, upload.Content); err != nil {
		s.logger.Error("Failed to store photo", "error", err, "claim_id", claimID)
		return nil, fmt.Errorf("store photo: %w", err)
	}

	photo := &entity.ClaimPhoto{
		ID:         photoID,
		ClaimID:    claimID,
		PhotoURL:   s.storage.GetFullPath(relPath),
		PhotoType:  upload.ContentType,
		AIAnalysis: upload.AIAnalysis,
		UploadedAt: time.Now().UTC(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.photoRepo.Create(txCtx, photo); err != nil {
			return fmt.Errorf("create photo: %w", err)
		}

		entry := &entity.ClaimAuditLog{
			ID:          uuid.NewString(),
			ClaimID:     claimID,
			Action:      entity.AuditActionPhotoUploaded,
			PerformedBy: entity.PerformedByAPI,
			Details:     mustJSON(map[string]string{"photo_id": photo.ID, "photo_type": photo.PhotoType}),
			CreatedAt:   photo.UploadedAt,
		}
		if err := s.auditLogRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}
		return nil
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, relPath); delErr != nil {
			s.logger.Error("Failed to remove orphaned photo", "error", delErr, "path", relPath)
		}
		s.logger.Error("Failed to record photo", "error", err, "claim_id", claimID)
		return nil, err
	}

	publish(ctx, s.events, s.logger, event.PhotoUploaded(claimID, claim.ClaimNumber, photo.ID, len(upload.Content)))

	s.logger.Info("Photo uploaded", "claim_id", claimID, "photo_id", photo.ID, "size", len(upload.Content))
	return photo, nil
}

// ListAuditLog returns the audit trail of a claim
func (s *claimServiceImpl) ListAuditLog(ctx context.Context, claimID string) ([]*entity.ClaimAuditLog, error) {
	if _, err := s.loadClaim(ctx, claimID); err != nil {
		return nil, err
	}

	entries, err := s.auditLogRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to list audit log", "error", err, "claim_id", claimID)
		return nil, fmt.Errorf("list audit log: %w", err)
	}
	if entries == nil {
		entries = []*entity.ClaimAuditLog{}
	}
	return entries, nil
}

func (s *claimServiceImpl) loadClaim(ctx context.Context, id string) (*entity.Claim, error) {
	claim, err := s.claimRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "id", id)
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}
	return claim, nil
}

// validateClaimInput checks required fields
func validateClaimInput(input CreateClaimInput) error {
	var problems []string

	required := []struct {
		field string
		value string
	}{
		{"policy_number", input.PolicyNumber},
		{"incident_location", input.IncidentLocation},
		{"incident_description", input.IncidentDescription},
		{"claimant_name", input.ClaimantName},
		{"claimant_email", input.ClaimantEmail},
		{"claimant_phone", input.ClaimantPhone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.field+" is required")
		}
	}

	if input.IncidentDate.IsZero() {
		problems = append(problems, "incident_date is required")
	}
	if input.VehicleYear <= 0 {
		problems = append(problems, "vehicle_year is required")
	}
	if strings.TrimSpace(input.ClaimantEmail) != "" {
		if err := utils.ValidateEmail(strings.TrimSpace(input.ClaimantEmail)); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if input.EstimatedDamageCost != nil {
		if err := utils.ValidateAmount(*input.EstimatedDamageCost); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidClaim, strings.Join(problems, "; "))
	}
	return nil
}

// newClaimNumber returns CLM-<year>-<6 upper-case hex digits>
func newClaimNumber(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("CLM-%d-%s", now.Year(), strings.ToUpper(hex[:6]))
}

// publish delivers a committed change. The change already happened, so a
// failing subscriber is logged and never fails the request.
func publish(ctx context.Context, events port.EventPublisher, logger Logger, evt *event.Event) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, evt); err != nil {
		logger.Error("Failed to publish event", "error", err, "event_type", evt.Type.String(), "claim_id", evt.ClaimID)
	}
}

func mustJSON(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// IsNotFound reports whether err means the requested resource does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClaimNotFound) || errors.Is(err, ErrPolicyNotFound)
}
