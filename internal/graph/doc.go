// Package graph resolves migration dependencies.
//
// A Graph is built from (app, name) keys and their declared dependency
// edges. TopologicalSort produces an apply order in which every
// dependency precedes its dependents, breaking ties lexicographically on
// (app label, name) so repeated runs over the same migration set produce
// an identical plan. Cycles and unresolved dependencies surface as
// dbshift.ErrDependency, never as a silent partial order.
package graph
