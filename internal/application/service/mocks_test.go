package service

import (
	"context"
	"sync"

	"github.com/garyjia/claims-intake/internal/application/port"
	"github.com/garyjia/claims-intake/internal/domain/adjudication"
	"github.com/garyjia/claims-intake/internal/domain/entity"
	"github.com/garyjia/claims-intake/internal/domain/event"
)

// Mock repositories

type mockClaimRepo struct {
	mu               sync.Mutex
	claims           map[string]*entity.Claim
	createFunc       func(ctx context.Context, claim *entity.Claim) error
	getByIDFunc      func(ctx context.Context, id string) (*entity.Claim, error)
	updateStatusFunc func(ctx context.Context, id, from, to string) error
}

func newMockClaimRepo(claims ...*entity.Claim) *mockClaimRepo {
	m := &mockClaimRepo{claims: make(map[string]*entity.Claim)}
	for _, c := range claims {
		m.claims[c.ID] = c
	}
	return m
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, claim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[claim.ID] = claim
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, nil
	}
	copied := *c
	return &copied, nil
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, id, from, to string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, from, to)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok || c.Status != from {
		return port.ErrStatusChanged
	}
	c.Status = to
	return nil
}

type mockPhotoRepo struct {
	photos     []*entity.ClaimPhoto
	createFunc func(ctx context.Context, photo *entity.ClaimPhoto) error
}

func (m *mockPhotoRepo) Create(ctx context.Context, photo *entity.ClaimPhoto) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, photo)
	}
	m.photos = append(m.photos, photo)
	return nil
}

func (m *mockPhotoRepo) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimPhoto, error) {
	var out []*entity.ClaimPhoto
	for _, p := range m.photos {
		if p.ClaimID == claimID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockAuditLogRepo struct {
	entries    []*entity.ClaimAuditLog
	createFunc func(ctx context.Context, entry *entity.ClaimAuditLog) error
}

func (m *mockAuditLogRepo) Create(ctx context.Context, entry *entity.ClaimAuditLog) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, entry)
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditLogRepo) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimAuditLog, error) {
	var out []*entity.ClaimAuditLog
	for _, e := range m.entries {
		if e.ClaimID == claimID {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockPolicyDirectory struct {
	policies map[string]*entity.Policy
	err      error
}

func (m *mockPolicyDirectory) Get(ctx context.Context, policyNumber string) (*entity.Policy, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.policies[policyNumber], nil
}

type mockStorage struct {
	files   map[string][]byte
	saveErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (m *mockStorage) Save(ctx context.Context, path string, content []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.files[path] = content
	return nil
}

func (m *mockStorage) Read(ctx context.Context, path string) ([]byte, error) {
	return m.files[path], nil
}

func (m *mockStorage) Exists(ctx context.Context, path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *mockStorage) Delete(ctx context.Context, path string) error {
	delete(m.files, path)
	return nil
}

func (m *mockStorage) GetFullPath(relativePath string) string {
	return "uploads/" + relativePath
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockPublisher struct {
	mu     sync.Mutex
	events []*event.Event
	err    error
}

func (m *mockPublisher) Publish(ctx context.Context, evt *event.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
	return m.err
}

func (m *mockPublisher) count(t event.Type) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, evt := range m.events {
		if evt.Type == t {
			n++
		}
	}
	return n
}

func (m *mockPublisher) verdicts() []adjudication.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []adjudication.Status
	for _, evt := range m.events {
		if v, ok := evt.Verdict(); ok {
			out = append(out, v.Status)
		}
	}
	return out
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func floatPtr(f float64) *float64 {
	return &f
}
