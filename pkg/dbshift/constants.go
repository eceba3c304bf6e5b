package dbshift

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess           = 0  // Command completed successfully
	ExitGeneralError      = 1  // Unknown or unclassified error
	ExitUsageError        = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic             = 3  // Internal panic (unexpected crash)
	ExitConfigError       = 10 // Invalid configuration or parameters
	ExitConnectionError   = 11 // Failed to connect to the ledger database
	ExitParseError        = 12 // Malformed migration file
	ExitDependencyError   = 13 // Cycle or unresolved migration dependency
	ExitMigrationNotFound = 14 // Requested migration does not exist
	ExitBackendError      = 15 // Unknown or unsupported database backend
)

const (
	// DefaultLedgerTable is the table the recorder uses to persist applied
	// migrations.
	DefaultLedgerTable = "dbshift_migrations"

	// DefaultMigrationsDir is the migrations root scanned by the disk
	// loader when the project config does not override it.
	DefaultMigrationsDir = "migrations"

	// DefaultRetryInitialDelay is the default initial delay before the
	// first ledger-connection retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between ledger
	// connection retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of ledger
	// connection retry attempts.
	DefaultRetryMaxAttempts = 3
)
