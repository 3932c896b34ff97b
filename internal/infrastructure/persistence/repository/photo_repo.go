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

// PhotoRepository implements port.PhotoRepository
type PhotoRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPhotoRepository creates a new photo repository
func NewPhotoRepository(db *sql.DB, logger *zap.Logger) port.PhotoRepository {
	return &PhotoRepository{
		db:     db,
		logger: logger,
	}
}

// Create records an uploaded photo
func (r *PhotoRepository) Create(ctx context.Context, photo *entity.ClaimPhoto) error {
	query := `
		INSERT INTO claim_photos (id, claim_id, photo_url, photo_type, ai_analysis, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		photo.ID,
		photo.ClaimID,
		photo.PhotoURL,
		nullString(photo.PhotoType),
		nullString(photo.AIAnalysis),
		photo.UploadedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create photo", zap.String("claim_id", photo.ClaimID), zap.Error(err))
		return fmt.Errorf("failed to create photo: %w", err)
	}

	return nil
}

// GetByClaimID lists a claim's photos in upload order
func (r *PhotoRepository) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimPhoto, error) {
	query := `
		SELECT id, claim_id, photo_url, photo_type, ai_analysis, uploaded_at
		FROM claim_photos
		WHERE claim_id = ?
		ORDER BY uploaded_at ASC, rowid ASC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, claimID)
	if err != nil {
		r.logger.Error("Failed to get photos by claim ID", zap.String("claim_id", claimID), zap.Error(err))
		return nil, fmt.Errorf("failed to get photos: %w", err)
	}
	defer rows.Close()

	var photos []*entity.ClaimPhoto
	for rows.Next() {
		var photo entity.ClaimPhoto
		var photoType, analysis sql.NullString

		if err := rows.Scan(
			&photo.ID,
			&photo.ClaimID,
			&photo.PhotoURL,
			&photoType,
			&analysis,
			&photo.UploadedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}

		photo.PhotoType = photoType.String
		photo.AIAnalysis = analysis.String
		photos = append(photos, &photo)
	}

	return photos, rows.Err()
}

var _ port.PhotoRepository = (*PhotoRepository)(nil)
