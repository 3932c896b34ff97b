package policy

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/entity"
)

// FixtureFile is the root of a policy fixture YAML document
type FixtureFile struct {
	Policies []entity.Policy `yaml:"policies"`
}

// Builtin returns the demo policies every directory starts with
func Builtin() []entity.Policy {
	return []entity.Policy{
		{
			PolicyNumber:   "POL-123456789",
			HolderName:     "John Doe",
			Status:         entity.PolicyStatusActive,
			VehicleInfo:    "2022 Tesla Model 3",
			CoverageLimit:  50000.0,
			Deductible:     500.0,
			EffectiveDate:  "2024-01-01",
			ExpirationDate: "2025-01-01",
		},
		{
			PolicyNumber:   "POL-987654321",
			HolderName:     "Jane Smith",
			Status:         entity.PolicyStatusExpired,
			VehicleInfo:    "2019 Honda Civic",
			CoverageLimit:  30000.0,
			Deductible:     1000.0,
			EffectiveDate:  "2023-01-01",
			ExpirationDate: "2024-01-01",
		},
	}
}

// Directory is an in-memory stand-in for the policy administration system
type Directory struct {
	mu       sync.RWMutex
	policies map[string]entity.Policy
	logger   *zap.Logger
}

// NewDirectory creates a directory seeded with the built-in policies
func NewDirectory(logger *zap.Logger) *Directory {
	d := &Directory{
		policies: make(map[string]entity.Policy),
		logger:   logger,
	}
	for _, p := range Builtin() {
		d.policies[p.PolicyNumber] = p
	}
	return d
}

// LoadFixture merges the policies in a YAML file into the directory. Entries
// with a known policy number replace the existing one. A missing file is not
// an error.
func (d *Directory) LoadFixture(path string) (int, error) {
	if path == "" {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Info("Policy fixture not found, using built-in policies", zap.String("path", path))
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read policy fixture: %w", err)
	}

	var f FixtureFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("failed to unmarshal policy fixture: %w", err)
	}

	for i, p := range f.Policies {
		if strings.TrimSpace(p.PolicyNumber) == "" {
			return 0, fmt.Errorf("policy fixture entry %d: policy_number is required", i)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range f.Policies {
		p.PolicyNumber = strings.TrimSpace(p.PolicyNumber)
		d.policies[p.PolicyNumber] = p
	}

	d.logger.Info("Policy fixture loaded", zap.String("path", path), zap.Int("policies", len(f.Policies)))
	return len(f.Policies), nil
}

// Get returns a copy of the policy, or nil when the number is unknown
func (d *Directory) Get(ctx context.Context, policyNumber string) (*entity.Policy, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	p, ok := d.policies[policyNumber]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// Numbers lists the known policy numbers in sorted order
func (d *Directory) Numbers() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	numbers := make([]string, 0, len(d.policies))
	for n := range d.policies {
		numbers = append(numbers, n)
	}
	sort.Strings(numbers)
	return numbers
}

var _ port.PolicyDirectory = (*Directory)(nil)
