package inmemory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dvloznov/receipt-tracker/internal/domain"
	"github.com/dvloznov/receipt-tracker/internal/store"
)

// Store is an in-memory implementation of RecordStore. It is safe for
// concurrent use and hands out copies, so a caller can never mutate stored
// state through a returned record. Data is lost on restart.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.Record
}

// NewStore creates an empty in-memory record store.
func NewStore() *Store {
	return &Store{
		records: make(map[string]domain.Record),
	}
}

// Save implements RecordStore. It inserts or replaces a record by ID.
func (s *Store) Save(ctx context.Context, rec domain.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = cloneRecord(rec)
	return nil
}

// Get implements RecordStore.
func (s *Store) Get(ctx context.Context, id string) (domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.records[id]
	if !exists {
		return domain.Record{}, fmt.Errorf("record not found: %s", id)
	}
	return cloneRecord(rec), nil
}

// List implements RecordStore. Results are ordered by upload time, oldest
// first, with ID as a tie-break so pagination is deterministic.
func (s *Store) List(ctx context.Context, filter store.Filter) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Record
	for _, rec := range s.records {
		if filter.VendorContains != "" &&
			!strings.Contains(strings.ToLower(rec.Vendor.Value), strings.ToLower(filter.VendorContains)) {
			continue
		}
		if filter.Category != nil && rec.Category.Value != *filter.Category {
			continue
		}
		if !filter.From.IsZero() && rec.TransactionDate.Value.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && rec.TransactionDate.Value.After(filter.To) {
			continue
		}
		result = append(result, cloneRecord(rec))
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].UploadedAt.Equal(result[j].UploadedAt) {
			return result[i].UploadedAt.Before(result[j].UploadedAt)
		}
		return result[i].ID < result[j].ID
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Record{}, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(result) {
		result = result[:filter.Limit]
	}
	return result, nil
}

// Snapshot implements RecordStore.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Record, error) {
	return s.List(ctx, store.Filter{})
}

// cloneRecord deep-copies the record's audit slice; every other field is a
// value.
func cloneRecord(rec domain.Record) domain.Record {
	out := rec
	out.Audit = append([]domain.AuditNote(nil), rec.Audit...)
	return out
}

// Ensure Store implements RecordStore.
var _ store.RecordStore = (*Store)(nil)
