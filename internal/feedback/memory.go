package feedback

import (
	"context"
	"sync"

	"github.com/Veraticus/finshare-ai/internal/model"
	"github.com/Veraticus/finshare-ai/internal/service"
)

var _ service.FeedbackRepository = (*MemoryRepository)(nil)

// MemoryRepository keeps feedback in process memory.
type MemoryRepository struct {
	records map[string][]model.FeedbackRecord
	mu      sync.RWMutex
}

// NewMemoryRepository creates an empty in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string][]model.FeedbackRecord)}
}

// Append stores the record and returns the user's record count.
func (r *MemoryRepository) Append(_ context.Context, record model.FeedbackRecord) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.UserID] = append(r.records[record.UserID], record)
	return len(r.records[record.UserID]), nil
}

// Examples returns a copy of the user's records.
func (r *MemoryRepository) Examples(_ context.Context, userID string) ([]model.FeedbackRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.records[userID]
	out := make([]model.FeedbackRecord, len(records))
	copy(out, records)
	return out, nil
}
