package numerator

import (
	"context"
	"sync"
	"time"

	corenumerator "taxiledger/internal/core/numerator"
)

// Memory is a process-local Generator backing the in-memory data store.
// Numbers are sequential per key and do not survive restarts.
type Memory struct {
	mu   sync.Mutex
	seqs map[string]int64
}

// Ensure compile-time interface compliance.
var _ corenumerator.Generator = (*Memory)(nil)

// NewMemory creates an empty in-process generator.
func NewMemory() *Memory {
	return &Memory{seqs: make(map[string]int64)}
}

// GetNextNumber implements corenumerator.Generator. Strategy options are ignored.
func (m *Memory) GetNextNumber(_ context.Context, cfg corenumerator.Config, _ *corenumerator.Options, period time.Time) (string, error) {
	key := BuildKey(cfg, period)

	m.mu.Lock()
	m.seqs[key]++
	num := m.seqs[key]
	m.mu.Unlock()

	return Format(cfg, period, num), nil
}

// SetNextNumber implements corenumerator.Generator.
func (m *Memory) SetNextNumber(_ context.Context, cfg corenumerator.Config, period time.Time, value int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seqs[BuildKey(cfg, period)] = value
	return nil
}
