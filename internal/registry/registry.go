// Package registry provides an in-process migration source combining a
// statically enumerated migration list with runtime-registered
// migrations. The registry is an explicit object constructed by the host
// application at startup and injected into consumers; there is no hidden
// process-wide global.
package registry

import (
	"fmt"
	"sync"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// Registry holds compiled-in and runtime-registered migrations and
// serves them as a dbshift.MigrationSource. Safe for concurrent use:
// reads and writes are guarded by a read/write lock.
type Registry struct {
	mu         sync.RWMutex
	migrations []*dbshift.Migration
	byKey      map[dbshift.MigrationKey]*dbshift.Migration
}

// New creates a registry seeded with a statically enumerated migration
// list (typically assembled by build-time codegen or hand-maintained
// per-app lists). Seeding failures are programming errors and panic.
func New(builtin ...*dbshift.Migration) *Registry {
	r := &Registry{byKey: map[dbshift.MigrationKey]*dbshift.Migration{}}
	for _, m := range builtin {
		if err := r.Add(m); err != nil {
			panic(fmt.Sprintf("registry: seeding builtin migrations: %v", err))
		}
	}
	return r
}

// Add registers a migration at runtime. Registration order is the
// registry's canonical order. Duplicate identities are rejected.
func (r *Registry) Add(m *dbshift.Migration) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("register %s.%s: %w", m.AppLabel, m.Name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := m.Key()
	if _, ok := r.byKey[key]; ok {
		return fmt.Errorf("migration %s already registered", key)
	}
	r.byKey[key] = m
	r.migrations = append(r.migrations, m)
	return nil
}

// AllMigrations returns registered migrations in registration order.
func (r *Registry) AllMigrations() ([]*dbshift.Migration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*dbshift.Migration, len(r.migrations))
	copy(out, r.migrations)
	return out, nil
}

// Get looks up a registered migration by identity.
func (r *Registry) Get(app, name string) (*dbshift.Migration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byKey[dbshift.MigrationKey{AppLabel: app, Name: name}]
	return m, ok
}

// Len returns the number of registered migrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.migrations)
}

// Merged is a MigrationSource concatenating several sources, in order.
// The host wires a registry in front of (or behind) a disk loader to
// combine compiled-in and on-disk migrations.
type Merged struct {
	sources []dbshift.MigrationSource
}

// Merge combines sources into one. Earlier sources occupy earlier
// positions in the canonical order; duplicate identities across sources
// are an error.
func Merge(sources ...dbshift.MigrationSource) *Merged {
	return &Merged{sources: sources}
}

// AllMigrations returns the concatenation of all sources' migrations.
func (m *Merged) AllMigrations() ([]*dbshift.Migration, error) {
	var out []*dbshift.Migration
	seen := map[dbshift.MigrationKey]bool{}
	for _, src := range m.sources {
		migrations, err := src.AllMigrations()
		if err != nil {
			return nil, err
		}
		for _, migration := range migrations {
			key := migration.Key()
			if seen[key] {
				return nil, fmt.Errorf("migration %s supplied by more than one source", key)
			}
			seen[key] = true
			out = append(out, migration)
		}
	}
	return out, nil
}
