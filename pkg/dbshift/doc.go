// Package dbshift defines the public contracts of the dbshift
// schema-migration engine: the Migration and Operation model, the
// ProjectState reconstruction types, and the interfaces implemented
// under internal/ (MigrationSource, Recorder, SchemaEditor, Connector).
//
// The engine represents schema evolution as an ordered sequence of
// versioned, dependency-linked migrations, persists which migrations
// have been applied, replays applied history into a ProjectState, and
// renders backend-specific DDL text. Executing that DDL against a live
// connection is delegated to external callers.
package dbshift
