package adapter

import (
	"context"
	"sync"
	"time"
)

// Record maps a settled intent to the escrow it produced. Advisory only:
// lookups and audits read it, swap correctness never depends on it.
type Record struct {
	IntentID  string    `json:"intentId"`
	Escrow    string    `json:"escrow"`
	ChainID   int       `json:"chainId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RecordStore abstracts persistence of settlement records. The adapter also
// uses presence of a record as its idempotency check.
type RecordStore interface {
	Get(ctx context.Context, intentID string) (*Record, error)
	Save(ctx context.Context, record Record) error
}

// MemoryStore is mostly for testing and single-process deployments.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Record),
	}
}

func (m *MemoryStore) Get(_ context.Context, intentID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.data[intentID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) Save(_ context.Context, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[record.IntentID] = record
	return nil
}
