package numbering

import (
	"context"
	"sync"
)

// MockGenerator is a test implementation of Generator.
// It keeps an in-memory counter per scope; use in unit tests to avoid
// database dependencies.
type MockGenerator struct {
	// NextFunc overrides the default behavior when set.
	NextFunc func(ctx context.Context, scopeKey string) (string, error)

	mu       sync.Mutex
	counters map[string]int64
	cfg      Config
}

// NewMockGenerator creates an in-memory generator with the default format.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		counters: make(map[string]int64),
		cfg:      DefaultConfig(),
	}
}

// Next implements Generator.
func (m *MockGenerator) Next(ctx context.Context, scopeKey string) (string, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, scopeKey)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[scopeKey]++
	cfg := m.cfg
	if cfg.Prefix == "" {
		cfg = DefaultConfig()
	}
	return cfg.Format(scopeKey, m.counters[scopeKey]), nil
}

// Issued returns how many numbers were issued for a scope.
func (m *MockGenerator) Issued(scopeKey string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[scopeKey]
}

// FailWith makes every call return err without issuing anything.
func (m *MockGenerator) FailWith(err error) {
	m.NextFunc = func(context.Context, string) (string, error) {
		return "", err
	}
}

// Ensure compile-time interface compliance.
var _ Generator = (*MockGenerator)(nil)
