package schema

import (
	"fmt"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// NewEditor returns the editor for the given backend. Unknown backends
// return ErrUnsupportedBackend rather than panicking.
func NewEditor(backend dbshift.DatabaseType) (dbshift.SchemaEditor, error) {
	switch backend {
	case dbshift.DatabasePostgres:
		return NewPostgresEditor(), nil
	case dbshift.DatabaseMySQL:
		return NewMySQLEditor(), nil
	case dbshift.DatabaseSQLite:
		return NewSQLiteEditor(), nil
	default:
		return nil, fmt.Errorf("schema editor for %q: %w", backend, dbshift.ErrUnsupportedBackend)
	}
}

// EditorForURL selects an editor from a connection-string scheme prefix.
func EditorForURL(url string) (dbshift.SchemaEditor, error) {
	backend, err := dbshift.ParseDatabaseType(url)
	if err != nil {
		return nil, err
	}
	return NewEditor(backend)
}
