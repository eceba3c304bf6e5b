// Package retry provides automatic retry with exponential backoff for
// transient database failures, used when connecting to the ledger
// database.
//
// Error classification and backoff are pluggable. The
// PostgreSQLErrorClassifier recognizes transient PostgreSQL conditions
// (connection failures, deadlocks, resource exhaustion) plus common
// network-level errors.
package retry
