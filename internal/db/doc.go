// Package db establishes pgx connection pools for the ledger database.
// Standard password auth and cloud IAM token auth (AWS RDS, Google Cloud
// SQL, Azure Entra ID) are supported; transient connection failures are
// retried with exponential backoff.
package db
