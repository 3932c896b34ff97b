package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
)

// PolicyService serves policy lookups
type PolicyService interface {
	GetPolicy(ctx context.Context, policyNumber string) (*entity.Policy, error)
}

type policyServiceImpl struct {
	directory port.PolicyDirectory
	logger    Logger
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(directory port.PolicyDirectory, logger Logger) PolicyService {
	return &policyServiceImpl{
		directory: directory,
		logger:    logger,
	}
}

// GetPolicy returns ErrPolicyNotFound for unknown policy numbers
func (s *policyServiceImpl) GetPolicy(ctx context.Context, policyNumber string) (*entity.Policy, error) {
	policy, err := s.directory.Get(ctx, strings.TrimSpace(policyNumber))
	if err != nil {
		s.logger.Error("Failed to look up policy", "error", err, "policy_number", policyNumber)
		return nil, fmt.Errorf("look up policy: %w", err)
	}
	if policy == nil {
		return nil, ErrPolicyNotFound
	}
	return policy, nil
}
