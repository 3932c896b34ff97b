package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/infrastructure/persistence/sqlite"
)

// AuditLogRepository implements port.AuditLogRepository
type AuditLogRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *sql.DB, logger *zap.Logger) port.AuditLogRepository {
	return &AuditLogRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends an audit log entry
func (r *AuditLogRepository) Create(ctx context.Context, entry *entity.ClaimAuditLog) error {
	query := `
		INSERT INTO claim_audit_log (id, claim_id, action, performed_by, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.ClaimID,
		entry.Action,
		nullString(entry.PerformedBy),
		nullString(entry.Details),
		entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit log entry",
			zap.String("claim_id", entry.ClaimID),
			zap.String("action", entry.Action),
			zap.Error(err))
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}

	return nil
}

// GetByClaimID lists a claim's audit trail oldest first
func (r *AuditLogRepository) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimAuditLog, error) {
	query := `
		SELECT id, claim_id, action, performed_by, details, created_at
		FROM claim_audit_log
		WHERE claim_id = ?
		ORDER BY created_at ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to get audit log", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to get audit log: %w", err)
	}
	defer rows.Close()

	var entries []*entity.ClaimAuditLog
	for rows.Next() {
		var entry entity.ClaimAuditLog
		var performedBy, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.ClaimID,
			&entry.Action,
			&performedBy,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}

		entry.PerformedBy = performedBy.String
		entry.Details = details.String
		entries = append(entries, &entry)
	}

	return entries, rows.Err()
}

var _ port.AuditLogRepository = (*AuditLogRepository)(nil)
