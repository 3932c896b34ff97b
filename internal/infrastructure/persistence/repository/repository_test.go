package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/claims-intake/pkg/database"
)

func setupDB(t *testing.T) *database.DB {
	t.Helper()
	logger := zap.NewNop()

	db, err := database.New(database.Config{
		Path:         filepath.Join(t.TempDir(), "claims.db"),
		MaxOpenConns: 1,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.NewMigrator(db, logger).Migrate())
	return db
}

func sampleClaim(id string) *entity.Claim {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	incident := time.Date(2024, 2, 28, 17, 30, 0, 0, time.UTC)
	year := 2022
	cost := 1500.0

	return &entity.Claim{
		ID:                  id,
		PolicyNumber:        "POL-123456789",
		ClaimNumber:         "CLM-2024-" + id,
		ClaimantName:        "John Doe",
		ClaimantPhone:       "555-0123",
		ClaimantEmail:       "john.doe@example.com",
		IncidentDate:        &incident,
		IncidentLocation:    "New York, NY",
		IncidentDescription: "Rear-ended at a light",
		VehicleMake:         "Tesla",
		VehicleModel:        "Model 3",
		VehicleYear:         &year,
		Status:              entity.ClaimStatusNew,
		EstimatedDamageCost: &cost,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

func TestClaimRepository_CreateAndGet(t *testing.T) {
	db := setupDB(t)
	repo := NewClaimRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	claim := sampleClaim("AAA111")
	require.NoError(t, repo.Create(ctx, claim))

	got, err := repo.GetByID(ctx, "AAA111")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, claim.ClaimNumber, got.ClaimNumber)
	assert.Equal(t, claim.PolicyNumber, got.PolicyNumber)
	assert.Equal(t, "Tesla", got.VehicleMake)
	assert.Empty(t, got.VehicleVIN)
	require.NotNil(t, got.VehicleYear)
	assert.Equal(t, 2022, *got.VehicleYear)
	require.NotNil(t, got.EstimatedDamageCost)
	assert.Equal(t, 1500.0, *got.EstimatedDamageCost)
	assert.Nil(t, got.ApprovedAmount)
	require.NotNil(t, got.IncidentDate)
	assert.True(t, claim.IncidentDate.Equal(*got.IncidentDate))
	assert.NotNil(t, got.Photos)
}

func TestClaimRepository_GetMissing(t *testing.T) {
	db := setupDB(t)
	repo := NewClaimRepository(db.DB, zap.NewNop())

	got, err := repo.GetByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClaimRepository_DuplicateClaimNumber(t *testing.T) {
	db := setupDB(t)
	repo := NewClaimRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleClaim("AAA111")))

	dup := sampleClaim("BBB222")
	dup.ClaimNumber = "CLM-2024-AAA111"
	assert.Error(t, repo.Create(ctx, dup))
}

func TestClaimRepository_UpdateStatus(t *testing.T) {
	db := setupDB(t)
	repo := NewClaimRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleClaim("AAA111")))
	require.NoError(t, repo.UpdateStatus(ctx, "AAA111", entity.ClaimStatusNew, entity.ClaimStatusInReview))

	got, err := repo.GetByID(ctx, "AAA111")
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusInReview, got.Status)

	err = repo.UpdateStatus(ctx, "missing", entity.ClaimStatusNew, entity.ClaimStatusRejected)
	assert.True(t, errors.Is(err, port.ErrStatusChanged))
}

func TestClaimRepository_UpdateStatusRequiresExpectedStatus(t *testing.T) {
	db := setupDB(t)
	repo := NewClaimRepository(db.DB, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleClaim("AAA111")))
	require.NoError(t, repo.UpdateStatus(ctx, "AAA111", entity.ClaimStatusNew, entity.ClaimStatusAutoApproved))

	// a second writer that also read New must not overwrite the terminal status
	err := repo.UpdateStatus(ctx, "AAA111", entity.ClaimStatusNew, entity.ClaimStatusInReview)
	require.ErrorIs(t, err, port.ErrStatusChanged)

	got, err := repo.GetByID(ctx, "AAA111")
	require.NoError(t, err)
	assert.Equal(t, entity.ClaimStatusAutoApproved, got.Status)
}

func TestPhotoRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewClaimRepository(db.DB, zap.NewNop()).Create(ctx, sampleClaim("AAA111")))

	repo := NewPhotoRepository(db.DB, zap.NewNop())
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	photos := []*entity.ClaimPhoto{
		{ID: "p2", ClaimID: "AAA111", PhotoURL: "uploads/b.jpg", PhotoType: "image/jpeg", UploadedAt: base.Add(time.Minute)},
		{ID: "p1", ClaimID: "AAA111", PhotoURL: "uploads/a.jpg", AIAnalysis: `{"confidence":0.9}`, UploadedAt: base},
	}
	for _, p := range photos {
		require.NoError(t, repo.Create(ctx, p))
	}

	got, err := repo.GetByClaimID(ctx, "AAA111")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, `{"confidence":0.9}`, got[0].AIAnalysis)
	assert.Empty(t, got[0].PhotoType)
	assert.Equal(t, "p2", got[1].ID)
	assert.Equal(t, "image/jpeg", got[1].PhotoType)

	none, err := repo.GetByClaimID(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPhotoRepository_RequiresClaim(t *testing.T) {
	db := setupDB(t)
	repo := NewPhotoRepository(db.DB, zap.NewNop())

	err := repo.Create(context.Background(), &entity.ClaimPhoto{
		ID:         "p1",
		ClaimID:    "missing",
		PhotoURL:   "uploads/a.jpg",
		UploadedAt: time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestAuditLogRepository(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	require.NoError(t, NewClaimRepository(db.DB, zap.NewNop()).Create(ctx, sampleClaim("AAA111")))

	repo := NewAuditLogRepository(db.DB, zap.NewNop())
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, &entity.ClaimAuditLog{
		ID: "a1", ClaimID: "AAA111", Action: entity.AuditActionCreated,
		PerformedBy: entity.PerformedByAPI, Details: `{}`, CreatedAt: base,
	}))
	require.NoError(t, repo.Create(ctx, &entity.ClaimAuditLog{
		ID: "a2", ClaimID: "AAA111", Action: entity.AuditActionAutoAdjudicated,
		PerformedBy: entity.PerformedByGuardrailEngine, Details: `{"status":"Approved"}`, CreatedAt: base.Add(time.Second),
	}))

	entries, err := repo.GetByClaimID(ctx, "AAA111")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.AuditActionCreated, entries[0].Action)
	assert.Equal(t, entity.PerformedByGuardrailEngine, entries[1].PerformedBy)
	assert.JSONEq(t, `{"status":"Approved"}`, entries[1].Details)
}

func TestTransactionRollback(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	txManager := sqlite.NewDB(db.DB, logger)
	claims := NewClaimRepository(db.DB, logger)
	audit := NewAuditLogRepository(db.DB, logger)
	ctx := context.Background()

	boom := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claims.Create(txCtx, sampleClaim("AAA111")); err != nil {
			return err
		}
		if err := audit.Create(txCtx, &entity.ClaimAuditLog{
			ID: "a1", ClaimID: "AAA111", Action: entity.AuditActionCreated, CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := claims.GetByID(ctx, "AAA111")
	require.NoError(t, err)
	assert.Nil(t, got)

	entries, err := audit.GetByClaimID(ctx, "AAA111")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestTransactionCommit(t *testing.T) {
	db := setupDB(t)
	logger := zap.NewNop()
	txManager := sqlite.NewDB(db.DB, logger)
	claims := NewClaimRepository(db.DB, logger)
	ctx := context.Background()

	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := claims.Create(txCtx, sampleClaim("AAA111")); err != nil {
			return err
		}
		// nested calls join the outer transaction
		return txManager.WithTransaction(txCtx, func(inner context.Context) error {
			return claims.UpdateStatus(inner, "AAA111", entity.ClaimStatusNew, entity.ClaimStatusAutoApproved)
		})
	})
	require.NoError(t, err)

	got, err := claims.GetByID(ctx, "AAA111")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.ClaimStatusAutoApproved, got.Status)
}
