package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// node is one migration in the graph with its outgoing dependency edges.
type node struct {
	key          dbshift.MigrationKey
	dependencies []dbshift.MigrationKey
	replaces     []dbshift.MigrationKey
}

// Graph is a directed dependency graph over migration keys.
type Graph struct {
	nodes map[dbshift.MigrationKey]*node
	// replacedBy maps a squashed-away migration to its replacement. The
	// engine records replacement metadata but performs no compaction.
	replacedBy map[dbshift.MigrationKey]dbshift.MigrationKey
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:      map[dbshift.MigrationKey]*node{},
		replacedBy: map[dbshift.MigrationKey]dbshift.MigrationKey{},
	}
}

// FromMigrations builds a graph from a migration set using each
// migration's declared dependencies.
func FromMigrations(migrations []*dbshift.Migration) *Graph {
	g := New()
	for _, m := range migrations {
		g.AddMigration(m)
	}
	return g
}

// FromResolvedMigrations builds a graph after resolving each migration's
// swappable and optional dependencies against ctx. Unsatisfied optional
// dependencies contribute no edge.
func FromResolvedMigrations(migrations []*dbshift.Migration, ctx dbshift.ResolutionContext) *Graph {
	g := New()
	for _, m := range migrations {
		resolved := m.ResolvedDependencies(ctx)
		deps := make([]dbshift.MigrationKey, 0, len(resolved))
		for _, d := range resolved {
			deps = append(deps, dbshift.MigrationKey{AppLabel: d[0], Name: d[1]})
		}
		replaces := make([]dbshift.MigrationKey, 0, len(m.Replaces))
		for _, r := range m.Replaces {
			replaces = append(replaces, dbshift.MigrationKey{AppLabel: r[0], Name: r[1]})
		}
		g.Add(m.Key(), deps, replaces)
	}
	return g
}

// AddMigration inserts a migration's key, dependency edges, and
// replacement metadata.
func (g *Graph) AddMigration(m *dbshift.Migration) {
	deps := make([]dbshift.MigrationKey, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		deps = append(deps, dbshift.MigrationKey{AppLabel: d[0], Name: d[1]})
	}
	replaces := make([]dbshift.MigrationKey, 0, len(m.Replaces))
	for _, r := range m.Replaces {
		replaces = append(replaces, dbshift.MigrationKey{AppLabel: r[0], Name: r[1]})
	}
	g.Add(m.Key(), deps, replaces)
}

// Add inserts a key with explicit dependency and replacement edges.
func (g *Graph) Add(key dbshift.MigrationKey, dependencies, replaces []dbshift.MigrationKey) {
	g.nodes[key] = &node{key: key, dependencies: dependencies, replaces: replaces}
	for _, replaced := range replaces {
		g.replacedBy[replaced] = key
	}
}

// Has reports whether the key is present.
func (g *Graph) Has(key dbshift.MigrationKey) bool {
	_, ok := g.nodes[key]
	return ok
}

// Len returns the number of migrations in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// Dependencies returns the declared dependencies of key, or nil when the
// key is unknown.
func (g *Graph) Dependencies(key dbshift.MigrationKey) []dbshift.MigrationKey {
	if n, ok := g.nodes[key]; ok {
		return n.dependencies
	}
	return nil
}

// Dependents returns every migration that directly depends on key,
// sorted for determinism.
func (g *Graph) Dependents(key dbshift.MigrationKey) []dbshift.MigrationKey {
	var out []dbshift.MigrationKey
	for _, n := range g.nodes {
		for _, dep := range n.dependencies {
			if dep == key {
				out = append(out, n.key)
				break
			}
		}
	}
	sortKeys(out)
	return out
}

// RootNodes returns migrations with no dependencies, sorted.
func (g *Graph) RootNodes() []dbshift.MigrationKey {
	var out []dbshift.MigrationKey
	for _, n := range g.nodes {
		if len(n.dependencies) == 0 {
			out = append(out, n.key)
		}
	}
	sortKeys(out)
	return out
}

// LeafNodes returns migrations no other migration depends on, sorted.
func (g *Graph) LeafNodes() []dbshift.MigrationKey {
	depended := map[dbshift.MigrationKey]bool{}
	for _, n := range g.nodes {
		for _, dep := range n.dependencies {
			depended[dep] = true
		}
	}
	var out []dbshift.MigrationKey
	for _, n := range g.nodes {
		if !depended[n.key] {
			out = append(out, n.key)
		}
	}
	sortKeys(out)
	return out
}

// IsReplaced reports whether key has been squashed into a replacement
// migration.
func (g *Graph) IsReplaced(key dbshift.MigrationKey) bool {
	_, ok := g.replacedBy[key]
	return ok
}

// Replacement returns the migration that replaces key, if any.
func (g *Graph) Replacement(key dbshift.MigrationKey) (dbshift.MigrationKey, bool) {
	rep, ok := g.replacedBy[key]
	return rep, ok
}

// TopologicalSort flattens the graph into an apply order where every
// dependency precedes its dependents. Among migrations that become ready
// at the same time the lexicographically smallest (app, name) goes first,
// so the plan is identical across runs. A dependency on a key absent
// from the graph, or a cycle, yields dbshift.ErrDependency.
func (g *Graph) TopologicalSort() ([]dbshift.MigrationKey, error) {
	inDegree := make(map[dbshift.MigrationKey]int, len(g.nodes))
	for key := range g.nodes {
		inDegree[key] = 0
	}

	for _, n := range g.nodes {
		for _, dep := range n.dependencies {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("%s depends on unknown migration %s: %w",
					n.key, dep, dbshift.ErrDependency)
			}
			inDegree[n.key]++
		}
	}

	var ready []dbshift.MigrationKey
	for key, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, key)
		}
	}
	sortKeys(ready)

	result := make([]dbshift.MigrationKey, 0, len(g.nodes))
	for len(ready) > 0 {
		key := ready[0]
		ready = ready[1:]
		result = append(result, key)

		var unlocked []dbshift.MigrationKey
		for _, n := range g.nodes {
			for _, dep := range n.dependencies {
				if dep == key {
					inDegree[n.key]--
					if inDegree[n.key] == 0 {
						unlocked = append(unlocked, n.key)
					}
				}
			}
		}
		if len(unlocked) > 0 {
			ready = append(ready, unlocked...)
			sortKeys(ready)
		}
	}

	if len(result) != len(g.nodes) {
		var remaining []string
		for key, degree := range inDegree {
			if degree > 0 {
				remaining = append(remaining, key.String())
			}
		}
		sort.Strings(remaining)
		return nil, fmt.Errorf("circular dependency involving %s: %w",
			strings.Join(remaining, ", "), dbshift.ErrDependency)
	}

	return result, nil
}

func sortKeys(keys []dbshift.MigrationKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
