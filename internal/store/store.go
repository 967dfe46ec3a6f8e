// Package store defines the record persistence collaborator consumed by the
// service layer. The engine itself only ever sees read-only snapshots.
package store

import (
	"context"
	"time"

	"github.com/dvloznov/receipt-tracker/internal/domain"
)

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	VendorContains string
	Category       *domain.Category
	From           time.Time
	To             time.Time
	Limit          int
	Offset         int
}

// RecordStore is the persistence interface for extracted records.
type RecordStore interface {
	// Save inserts or replaces a record by ID.
	Save(ctx context.Context, rec domain.Record) error
	// Get retrieves a record by ID.
	Get(ctx context.Context, id string) (domain.Record, error)
	// List retrieves records matching the filter.
	List(ctx context.Context, filter Filter) ([]domain.Record, error)
	// Snapshot returns a copy of every stored record, suitable as read-only
	// input to the search, sort and aggregation engines.
	Snapshot(ctx context.Context) ([]domain.Record, error)
}
