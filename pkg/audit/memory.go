package audit

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStorage implements Storage with an in-memory slice. It backs tests
// and deployments that do not want a database file.
type MemoryStorage struct {
	mu      sync.RWMutex
	records []*Record
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Store appends a copy of the record.
func (m *MemoryStorage) Store(ctx context.Context, record *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	clone := *record
	m.records = append(m.records, &clone)
	return nil
}

// Count returns the number of records created before cutoff.
func (m *MemoryStorage) Count(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if cutoff.IsZero() {
		return int64(len(m.records)), nil
	}

	var count int64
	for _, r := range m.records {
		if r.CreatedAt.Before(cutoff) {
			count++
		}
	}
	return count, nil
}

// DeleteBefore removes records created before cutoff.
func (m *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	var deleted int64
	for _, r := range m.records {
		if r.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return deleted, nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryStorage) Recent(ctx context.Context, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	out := make([]*Record, len(m.records))
	copy(out, m.records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStorage) Close() error {
	return nil
}
