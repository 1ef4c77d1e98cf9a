package queuestore

import (
	"context"
	"sync"
)

// Memory is the embedded in-process Store used by single-binary deployments
// and tests. State is ephemeral by design.
type Memory struct {
	mu     sync.RWMutex
	venues map[string][]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{venues: make(map[string][]string)}
}

// Append adds the account at the tail unless it is already present.
func (m *Memory) Append(ctx context.Context, venue, account string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.venues[venue] {
		if a == account {
			return false, nil
		}
	}
	m.venues[venue] = append(m.venues[venue], account)
	return true, nil
}

// RemoveAll removes every occurrence of the account.
func (m *Memory) RemoveAll(ctx context.Context, venue, account string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	seq := m.venues[venue]
	if len(seq) == 0 {
		return 0, nil
	}
	kept := seq[:0]
	removed := 0
	for _, a := range seq {
		if a == account {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if len(kept) == 0 {
		delete(m.venues, venue)
	} else {
		m.venues[venue] = kept
	}
	return removed, nil
}

// Snapshot returns a copy of the venue's sequence.
func (m *Memory) Snapshot(ctx context.Context, venue string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	seq := m.venues[venue]
	out := make([]string, len(seq))
	copy(out, seq)
	return out, nil
}
