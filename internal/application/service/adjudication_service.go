package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/domain/claimflow"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/domain/event"
)

// AdjudicationRequest carries the signals computed outside this service
type AdjudicationRequest struct {
	FraudScore adjudication.Number

	// AIAnalysis overrides any analysis stored on the claim's photos
	AIAnalysis *adjudication.AIAnalysisSnapshot
}

// AdjudicationResult is the outcome of one adjudication run
type AdjudicationResult struct {
	ClaimID        string
	ClaimNumber    string
	Verdict        adjudication.Verdict
	PreviousStatus string
	NewStatus      string
	AuditLogID     string
}

// AdjudicationService runs the guardrail engine for stored claims
type AdjudicationService interface {
	Adjudicate(ctx context.Context, claimID string, req AdjudicationRequest) (*AdjudicationResult, error)
}

type adjudicationServiceImpl struct {
	engine       adjudication.Engine
	claimRepo    port.ClaimRepository
	photoRepo    port.PhotoRepository
	auditLogRepo port.AuditLogRepository
	policies     port.PolicyDirectory
	txManager    port.TransactionManager
	events       port.EventPublisher
	logger       Logger
}

// NewAdjudicationService creates a new AdjudicationService
func NewAdjudicationService(
	engine adjudication.Engine,
	claimRepo port.ClaimRepository,
	photoRepo port.PhotoRepository,
	auditLogRepo port.AuditLogRepository,
	policies port.PolicyDirectory,
	txManager port.TransactionManager,
	events port.EventPublisher,
	logger Logger,
) AdjudicationService {
	return &adjudicationServiceImpl{
		engine:       engine,
		claimRepo:    claimRepo,
		photoRepo:    photoRepo,
		auditLogRepo: auditLogRepo,
		policies:     policies,
		txManager:    txManager,
		events:       events,
		logger:       logger,
	}
}

// Adjudicate assembles the engine inputs for a claim, evaluates them, moves the
// claim through its lifecycle and appends an audit log entry in one transaction.
func (s *adjudicationServiceImpl) Adjudicate(ctx context.Context, claimID string, req AdjudicationRequest) (*AdjudicationResult, error) {
	claim, err := s.claimRepo.GetByID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to get claim", "error", err, "claim_id", claimID)
		return nil, fmt.Errorf("get claim: %w", err)
	}
	if claim == nil {
		return nil, ErrClaimNotFound
	}

	machine, err := claimflow.ForClaim(claim.Status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimClosed, err)
	}
	if machine.State().IsTerminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrClaimClosed, claim.Status)
	}

	// An unknown policy is not an error: the empty snapshot is rejected by the engine.
	policy, err := s.policies.Get(ctx, claim.PolicyNumber)
	if err != nil {
		s.logger.Error("Failed to look up policy", "error", err, "policy_number", claim.PolicyNumber)
		return nil, fmt.Errorf("look up policy: %w", err)
	}

	analysis, err := s.resolveAnalysis(ctx, claimID, req.AIAnalysis)
	if err != nil {
		return nil, err
	}

	claimSnap := claim.Snapshot()
	policySnap := policy.Snapshot()
	verdict := s.engine.Evaluate(claimSnap, policySnap, analysis, req.FraudScore)

	trigger, err := claimflow.TriggerFor(verdict.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(trigger); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClaimClosed, err)
	}

	result := &AdjudicationResult{
		ClaimID:        claim.ID,
		ClaimNumber:    claim.ClaimNumber,
		Verdict:        verdict,
		PreviousStatus: claim.Status,
		NewStatus:      machine.State().String(),
		AuditLogID:     uuid.NewString(),
	}

	details := entity.AdjudicationDetails{
		Status:         verdict.Status.String(),
		Reason:         verdict.Reason(),
		Guardrails:     guardrailNames(verdict),
		Reasons:        verdict.Reasons(),
		PreviousStatus: result.PreviousStatus,
		NewStatus:      result.NewStatus,
		Inputs:         describeInputs(claimSnap, policySnap, analysis, req.FraudScore),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		// another adjudication may have moved the claim since it was read
		err := s.claimRepo.UpdateStatus(txCtx, claim.ID, result.PreviousStatus, result.NewStatus)
		if errors.Is(err, port.ErrStatusChanged) {
			return fmt.Errorf("%w: %v", ErrClaimClosed, err)
		}
		if err != nil {
			return fmt.Errorf("update claim status: %w", err)
		}

		entry := &entity.ClaimAuditLog{
			ID:          result.AuditLogID,
			ClaimID:     claim.ID,
			Action:      entity.AuditActionAutoAdjudicated,
			PerformedBy: entity.PerformedByGuardrailEngine,
			Details:     mustJSON(details),
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.auditLogRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("create audit log: %w", err)
		}
		return nil
	})
	if errors.Is(err, ErrClaimClosed) {
		s.logger.Info("Claim adjudicated concurrently", "claim_id", claim.ID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.Error("Failed to record verdict", "error", err, "claim_id", claim.ID)
		return nil, err
	}

	publish(ctx, s.events, s.logger,
		event.ClaimAdjudicated(claim.ID, claim.ClaimNumber, verdict, result.PreviousStatus, result.NewStatus))

	s.logger.Info("Claim adjudicated",
		"claim_id", claim.ID,
		"claim_number", claim.ClaimNumber,
		"verdict", verdict.Status.String(),
		"guardrails", details.Guardrails,
		"previous_status", result.PreviousStatus,
		"new_status", result.NewStatus,
	)

	return result, nil
}

// resolveAnalysis prefers the supplied analysis, then the newest photo that carries one
func (s *adjudicationServiceImpl) resolveAnalysis(ctx context.Context, claimID string, supplied *adjudication.AIAnalysisSnapshot) (adjudication.AIAnalysisSnapshot, error) {
	if supplied != nil {
		return *supplied, nil
	}

	photos, err := s.photoRepo.GetByClaimID(ctx, claimID)
	if err != nil {
		s.logger.Error("Failed to get photos", "error", err, "claim_id", claimID)
		return adjudication.AIAnalysisSnapshot{}, fmt.Errorf("get photos: %w", err)
	}

	for i := len(photos) - 1; i >= 0; i-- {
		if analysis, ok := photos[i].Analysis(); ok {
			return analysis, nil
		}
	}
	return adjudication.AIAnalysisSnapshot{}, nil
}

func guardrailNames(v adjudication.Verdict) []string {
	names := make([]string, 0, len(v.Findings))
	for _, g := range v.Guardrails() {
		names = append(names, string(g))
	}
	return names
}

// describeInputs records the coerced values the engine compared against
func describeInputs(claim adjudication.ClaimSnapshot, policy adjudication.PolicySnapshot, analysis adjudication.AIAnalysisSnapshot, fraud adjudication.Number) map[string]string {
	format := func(n adjudication.Number) string {
		return strconv.FormatFloat(n.Float64(), 'f', -1, 64)
	}
	return map[string]string{
		"estimated_damage_cost": format(claim.EstimatedDamageCost),
		"policy_status":         policy.Status,
		"coverage_limit":        format(policy.CoverageLimit),
		"deductible":            format(policy.Deductible),
		"ai_confidence":         format(analysis.Confidence),
		"ai_red_flags":          strings.Join(analysis.RedFlags, ", "),
		"fraud_score":           format(fraud),
	}
}

// IsConflict reports whether err means the claim's state forbids the operation
func IsConflict(err error) bool {
	return errors.Is(err, ErrClaimClosed)
}
