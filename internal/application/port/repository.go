package port

import (
	"context"
	"errors"

	"github.com/garyjia/claims-intake/internal/domain/entity"
)

// ErrStatusChanged is returned when a conditional status update finds the
// claim missing or no longer in the expected status
var ErrStatusChanged = errors.New("claim status changed")

// ClaimRepository defines persistence operations for Claim
type ClaimRepository interface {
	Create(ctx context.Context, claim *entity.Claim) error

	// GetByID returns nil, nil when the claim does not exist
	GetByID(ctx context.Context, id string) (*entity.Claim, error)

	// UpdateStatus moves the claim from one status to another, returning
	// ErrStatusChanged when the stored status is not from
	UpdateStatus(ctx context.Context, id, from, to string) error
}

// PhotoRepository defines persistence operations for ClaimPhoto
type PhotoRepository interface {
	Create(ctx context.Context, photo *entity.ClaimPhoto) error

	// GetByClaimID returns photos oldest first
	GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimPhoto, error)
}

// AuditLogRepository defines persistence operations for ClaimAuditLog
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.ClaimAuditLog) error

	// GetByClaimID returns entries oldest first
	GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimAuditLog, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
