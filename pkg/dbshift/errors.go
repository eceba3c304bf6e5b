package dbshift

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	state, err := loader.BuildCurrentState(ctx)
//	if errors.Is(err, dbshift.ErrDependency) {
//	    // Handle a cycle or unresolved dependency
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrDependency indicates a cycle or an unresolved migration dependency.
	ErrDependency = errors.New("dependency error")

	// ErrMigrationNotFound indicates the requested migration does not exist
	// in the source.
	ErrMigrationNotFound = errors.New("migration not found")

	// ErrAmbiguousPrefix indicates a name prefix matched more than one
	// migration within an app.
	ErrAmbiguousPrefix = errors.New("ambiguous migration prefix")

	// ErrExecutionNotSupported indicates DDL execution was attempted on a
	// builder-only schema editor. Execution belongs to an external
	// connection, not this layer.
	ErrExecutionNotSupported = errors.New("execution not supported")

	// ErrUnknownBackend indicates a connection-string scheme that maps to
	// no supported database backend.
	ErrUnknownBackend = errors.New("unknown database backend")

	// ErrUnsupportedBackend indicates a recognized backend for which no
	// schema editor is available in this build.
	ErrUnsupportedBackend = errors.New("unsupported database backend")

	// ErrConnectionFailed indicates the ledger database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested ledger authentication
	// method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ParseError describes a malformed migration file. Index is the position
// of the offending file within the scan, so batch loads can point at the
// exact entry that failed.
type ParseError struct {
	Path  string
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse migration file %s (index %d): %v", e.Path, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var parseErr *ParseError
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfigError
	case errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrDependency):
		return ExitDependencyError
	case errors.As(err, &parseErr):
		return ExitParseError
	case errors.Is(err, ErrMigrationNotFound), errors.Is(err, ErrAmbiguousPrefix):
		return ExitMigrationNotFound
	case errors.Is(err, ErrUnknownBackend), errors.Is(err, ErrUnsupportedBackend):
		return ExitBackendError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	}

	// Check for common connection error patterns
	errStr := err.Error()
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
