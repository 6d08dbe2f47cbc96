package mocks

import (
	"context"
	"sync"

	"github.com/you/nirogsvc/domain"
)

// MockOTPRepository implements domain.OTPRepository for testing. Without
// overrides it keeps records in memory, one per (phone, purpose).
type MockOTPRepository struct {
	ReplaceFunc           func(ctx context.Context, record *domain.OTPRecord) error
	FindActiveFunc        func(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error)
	IncrementAttemptsFunc func(ctx context.Context, record *domain.OTPRecord) (int, error)
	MarkVerifiedFunc      func(ctx context.Context, record *domain.OTPRecord) error

	mu      sync.Mutex
	records map[string]*domain.OTPRecord
}

// NewMockOTPRepository creates a new MockOTPRepository with default behaviors
func NewMockOTPRepository() *MockOTPRepository {
	return &MockOTPRepository{records: make(map[string]*domain.OTPRecord)}
}

func otpKey(phone, purpose string) string { return purpose + ":" + phone }

// Replace stores record, dropping any previous one for the pair
func (m *MockOTPRepository) Replace(ctx context.Context, record *domain.OTPRecord) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *record
	m.records[otpKey(record.Phone, record.Purpose)] = &cp
	return nil
}

// FindActive returns a copy of the unverified record for the pair
func (m *MockOTPRepository) FindActive(ctx context.Context, phone, purpose string) (*domain.OTPRecord, error) {
	if m.FindActiveFunc != nil {
		return m.FindActiveFunc(ctx, phone, purpose)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[otpKey(phone, purpose)]
	if !ok || rec.IsVerified {
		return nil, domain.ErrOTPNotFound
	}
	cp := *rec
	return &cp, nil
}

// IncrementAttempts bumps the attempt counter of the stored record
func (m *MockOTPRepository) IncrementAttempts(ctx context.Context, record *domain.OTPRecord) (int, error) {
	if m.IncrementAttemptsFunc != nil {
		return m.IncrementAttemptsFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[otpKey(record.Phone, record.Purpose)]
	if !ok || rec.ID != record.ID {
		return 0, domain.ErrOTPNotFound
	}
	rec.Attempts++
	return rec.Attempts, nil
}

// MarkVerified flags the stored record verified
func (m *MockOTPRepository) MarkVerified(ctx context.Context, record *domain.OTPRecord) error {
	if m.MarkVerifiedFunc != nil {
		return m.MarkVerifiedFunc(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[otpKey(record.Phone, record.Purpose)]
	if !ok || rec.ID != record.ID || rec.IsVerified {
		return domain.ErrOTPNotFound
	}
	rec.IsVerified = true
	return nil
}

// Stored returns the record held for the pair, verified or not (test helper)
func (m *MockOTPRepository) Stored(phone, purpose string) *domain.OTPRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[otpKey(phone, purpose)]
	if !ok {
		return nil
	}
	cp := *rec
	return &cp
}

// Compile-time interface compliance verification
var _ domain.OTPRepository = (*MockOTPRepository)(nil)
