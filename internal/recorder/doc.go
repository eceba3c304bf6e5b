// Package recorder implements the applied-migration ledger.
//
// The ledger is append-only: RecordApplied stores a new row
// unconditionally, so re-recording a migration leaves two rows for one
// logical migration. IsApplied answers membership, not row counts.
// Durability of the applied flag is the recorder's one hard requirement.
//
// Writes must be serialized externally across concurrent
// migration-application processes (e.g. via an advisory database lock);
// the recorder itself provides no distributed locking.
//
// Implementations:
//   - MemoryRecorder: mutex-guarded in-process ledger for tests and dry runs
//   - PostgresRecorder: pgx-backed ledger table
//   - SQLRecorder: database/sql ledger for MySQL and SQLite
package recorder
