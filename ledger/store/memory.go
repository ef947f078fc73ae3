// Package store provides RunStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/batch-ledger/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu   sync.RWMutex
	runs []ledger.Run
	byID map[string]int
}

func NewMemory() *Memory {
	return &Memory{
		byID: make(map[string]int),
	}
}

// SaveRun appends a run. Append-only.
func (m *Memory) SaveRun(_ context.Context, run ledger.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[run.ID]; ok {
		return ledger.ErrDuplicateRun
	}

	// Keep runs ordered by CreatedAt; binary search for the insertion point.
	i := sort.Search(len(m.runs), func(i int) bool {
		return m.runs[i].CreatedAt.After(run.CreatedAt)
	})
	m.runs = append(m.runs, ledger.Run{})
	copy(m.runs[i+1:], m.runs[i:])
	m.runs[i] = run

	for j := i; j < len(m.runs); j++ {
		m.byID[m.runs[j].ID] = j
	}
	return nil
}

func (m *Memory) GetRun(_ context.Context, id string) (ledger.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return ledger.Run{}, ledger.ErrRunNotFound
	}
	return m.runs[i], nil
}

// ListRuns returns runs newest first.
func (m *Memory) ListRuns(_ context.Context, limit int) ([]ledger.Run, error) {
	return m.list(limit, func(ledger.Run) bool { return true }), nil
}

// ListRunsByAccount returns one account's runs, newest first.
func (m *Memory) ListRunsByAccount(_ context.Context, accountNumber string, limit int) ([]ledger.Run, error) {
	return m.list(limit, func(r ledger.Run) bool { return r.AccountNumber == accountNumber }), nil
}

func (m *Memory) list(limit int, keep func(ledger.Run) bool) []ledger.Run {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := []ledger.Run{}
	for i := len(m.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(result) == limit {
			break
		}
		if keep(m.runs[i]) {
			result = append(result, m.runs[i])
		}
	}
	return result
}
