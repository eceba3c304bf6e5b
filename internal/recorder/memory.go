package recorder

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// MemoryRecorder is an in-process ledger. It keeps the append-only
// contract of the database-backed recorders (duplicates persist,
// insertion order is preserved) without any durability, which makes it
// suitable for tests and dry runs only.
// Safe for concurrent use by multiple goroutines.
type MemoryRecorder struct {
	mu      sync.Mutex
	records []dbshift.AppliedMigration
}

// NewMemoryRecorder creates an empty in-memory ledger.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// EnsureSchemaTable is a no-op for the in-memory ledger.
func (r *MemoryRecorder) EnsureSchemaTable(ctx context.Context) error {
	return nil
}

// RecordApplied appends a record unconditionally.
func (r *MemoryRecorder) RecordApplied(ctx context.Context, app, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, dbshift.AppliedMigration{
		ID:      uuid.New(),
		App:     app,
		Name:    name,
		Applied: time.Now().UTC(),
	})
	return nil
}

// RecordUnapplied removes every record for (app, name).
func (r *MemoryRecorder) RecordUnapplied(ctx context.Context, app, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.App != app || rec.Name != name {
			kept = append(kept, rec)
		}
	}
	r.records = kept
	return nil
}

// IsApplied reports whether at least one record exists for (app, name).
func (r *MemoryRecorder) IsApplied(ctx context.Context, app, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.App == app && rec.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// AppliedMigrations returns all records in insertion order.
func (r *MemoryRecorder) AppliedMigrations(ctx context.Context) ([]dbshift.AppliedMigration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dbshift.AppliedMigration, len(r.records))
	copy(out, r.records)
	return out, nil
}
