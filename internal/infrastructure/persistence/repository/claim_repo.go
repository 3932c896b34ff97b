package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/infrastructure/persistence/sqlite"
)


// ClaimRepository implements port.ClaimRepository
type ClaimRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *sql.DB, logger *zap.Logger) port.ClaimRepository {
	return &ClaimRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new claim
func (r *ClaimRepository) Create(ctx context.Context, claim *entity.Claim) error {
	query := `
		INSERT INTO claims (
			id, policy_number, claim_number, claimant_name, claimant_phone, claimant_email,
			incident_date, incident_location, incident_description,
			vehicle_vin, vehicle_make, vehicle_model, vehicle_year,
			status, estimated_damage_cost, approved_amount, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		claim.ID,
		claim.PolicyNumber,
		claim.ClaimNumber,
		claim.ClaimantName,
		claim.ClaimantPhone,
		claim.ClaimantEmail,
		claim.IncidentDate,
		claim.IncidentLocation,
		claim.IncidentDescription,
		nullString(claim.VehicleVIN),
		nullString(claim.VehicleMake),
		nullString(claim.VehicleModel),
		claim.VehicleYear,
		claim.Status,
		claim.EstimatedDamageCost,
		claim.ApprovedAmount,
		claim.CreatedAt,
		claim.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create claim", zap.String("claim_number", claim.ClaimNumber), zap.Error(err))
		return fmt.Errorf("failed to create claim: %w", err)
	}

	return nil
}

// GetByID retrieves a claim by ID without its photos
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	query := `
		SELECT id, policy_number, claim_number, claimant_name, claimant_phone, claimant_email,
			incident_date, incident_location, incident_description,
			vehicle_vin, vehicle_make, vehicle_model, vehicle_year,
			status, estimated_damage_cost, approved_amount, created_at, updated_at
		FROM claims
		WHERE id = ?
	`

	var (
		claim          entity.Claim
		incidentDate   sql.NullTime
		vin            sql.NullString
		vehicleMake    sql.NullString
		model          sql.NullString
		year           sql.NullInt64
		estimatedCost  sql.NullFloat64
		approvedAmount sql.NullFloat64
	)

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&claim.ID,
		&claim.PolicyNumber,
		&claim.ClaimNumber,
		&claim.ClaimantName,
		&claim.ClaimantPhone,
		&claim.ClaimantEmail,
		&incidentDate,
		&claim.IncidentLocation,
		&claim.IncidentDescription,
		&vin,
		&vehicleMake,
		&model,
		&year,
		&claim.Status,
		&estimatedCost,
		&approvedAmount,
		&claim.CreatedAt,
		&claim.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get claim by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get claim: %w", err)
	}

	if incidentDate.Valid {
		claim.IncidentDate = &incidentDate.Time
	}
	claim.VehicleVIN = vin.String
	claim.VehicleMake = vehicleMake.String
	claim.VehicleModel = model.String
	if year.Valid {
		y := int(year.Int64)
		claim.VehicleYear = &y
	}
	if estimatedCost.Valid {
		claim.EstimatedDamageCost = &estimatedCost.Float64
	}
	if approvedAmount.Valid {
		claim.ApprovedAmount = &approvedAmount.Float64
	}
	claim.Photos = []*entity.ClaimPhoto{}

	return &claim, nil
}

// UpdateStatus sets the claim status only if it is still from, and bumps updated_at
func (r *ClaimRepository) UpdateStatus(ctx context.Context, id, from, to string) error {
	query := `UPDATE claims SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		r.logger.Error("Failed to update status", zap.String("id", id), zap.String("status", to), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update claim %s from %q: %w", id, from, port.ErrStatusChanged)
	}

	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ port.ClaimRepository = (*ClaimRepository)(nil)
