package dbshift

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DatabaseType identifies a supported database backend.
type DatabaseType string

const (
	DatabasePostgres DatabaseType = "postgres"
	DatabaseMySQL    DatabaseType = "mysql"
	DatabaseSQLite   DatabaseType = "sqlite"
)

// ParseDatabaseType maps a connection-string scheme prefix to a backend:
// postgres:// and postgresql:// select PostgreSQL, mysql:// selects MySQL,
// sqlite:// selects SQLite. Any other scheme is ErrUnknownBackend.
func ParseDatabaseType(connString string) (DatabaseType, error) {
	switch {
	case strings.HasPrefix(connString, "postgres://"),
		strings.HasPrefix(connString, "postgresql://"):
		return DatabasePostgres, nil
	case strings.HasPrefix(connString, "mysql://"):
		return DatabaseMySQL, nil
	case strings.HasPrefix(connString, "sqlite://"):
		return DatabaseSQLite, nil
	}
	return "", fmt.Errorf("connection string %q: %w", connString, ErrUnknownBackend)
}

// MigrationKey identifies a migration as (app label, migration name).
// The pair is unique within a full migration set.
type MigrationKey struct {
	AppLabel string `json:"app_label"`
	Name     string `json:"name"`
}

func (k MigrationKey) String() string {
	return k.AppLabel + "." + k.Name
}

// Less orders keys lexicographically by (app label, name). The graph uses
// this ordering to break topological-sort ties deterministically.
func (k MigrationKey) Less(other MigrationKey) bool {
	if k.AppLabel != other.AppLabel {
		return k.AppLabel < other.AppLabel
	}
	return k.Name < other.Name
}

// ColumnDefinition describes a single column of a table as declared by a
// migration operation.
type ColumnDefinition struct {
	Name           string  `json:"name"`
	TypeDefinition string  `json:"type_definition"`
	NotNull        bool    `json:"not_null,omitempty"`
	PrimaryKey     bool    `json:"primary_key,omitempty"`
	Unique         bool    `json:"unique,omitempty"`
	AutoIncrement  bool    `json:"auto_increment,omitempty"`
	Default        *string `json:"default,omitempty"`
}

// SwappableDependency resolves to different apps based on a runtime
// setting (the swappable-model pattern). When the setting is present its
// value is "app.Model" and the app part wins; otherwise DefaultApp is used.
type SwappableDependency struct {
	SettingKey   string `json:"setting_key"`
	DefaultApp   string `json:"default_app"`
	DefaultModel string `json:"default_model,omitempty"`
	Name         string `json:"migration_name"`
}

// Resolve returns the concrete (app, migration name) pair for the given
// setting value, which may be empty.
func (d SwappableDependency) Resolve(settingValue string) (string, string) {
	app := d.DefaultApp
	if settingValue != "" {
		if idx := strings.Index(settingValue, "."); idx > 0 {
			app = settingValue[:idx]
		} else {
			app = settingValue
		}
	}
	return app, d.Name
}

// DependencyCondition gates an optional dependency.
type DependencyCondition struct {
	// AppInstalled requires the named app to be installed.
	AppInstalled string `json:"app_installed,omitempty"`
	// SettingEnabled requires the named setting to be truthy.
	SettingEnabled string `json:"setting_enabled,omitempty"`
	// FeatureEnabled requires the named feature flag.
	FeatureEnabled string `json:"feature_enabled,omitempty"`
}

// OptionalDependency is enforced only when its condition holds in the
// resolution context; otherwise it is dropped from the graph edges.
type OptionalDependency struct {
	AppLabel  string              `json:"app_label"`
	Name      string              `json:"migration_name"`
	Condition DependencyCondition `json:"condition"`
}

// ResolutionContext carries the runtime facts needed to resolve swappable
// and optional dependencies: installed apps, settings, and feature flags.
type ResolutionContext struct {
	InstalledApps map[string]bool
	Settings      map[string]string
	Features      map[string]bool
}

// Satisfied reports whether the optional dependency applies in ctx.
func (d OptionalDependency) Satisfied(ctx ResolutionContext) bool {
	c := d.Condition
	switch {
	case c.AppInstalled != "":
		return ctx.InstalledApps[c.AppInstalled]
	case c.SettingEnabled != "":
		return isTruthy(ctx.Settings[c.SettingEnabled])
	case c.FeatureEnabled != "":
		return ctx.Features[c.FeatureEnabled]
	}
	return false
}

func isTruthy(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Migration is an immutable, named, dependency-aware bundle of operations.
// Identity is (AppLabel, Name).
type Migration struct {
	AppLabel   string      `json:"app_label"`
	Name       string      `json:"name"`
	Operations []Operation `json:"operations"`

	// Dependencies are (app, name) pairs that must be applied before this
	// migration.
	Dependencies [][2]string `json:"dependencies,omitempty"`

	// Replaces carries squash metadata. The engine records it but performs
	// no squash-graph compaction.
	Replaces [][2]string `json:"replaces,omitempty"`

	Atomic  bool  `json:"atomic"`
	Initial *bool `json:"initial,omitempty"`

	// StateOnly migrations mutate tracked state without emitting DDL;
	// DatabaseOnly migrations emit DDL without touching tracked state.
	StateOnly    bool `json:"state_only,omitempty"`
	DatabaseOnly bool `json:"database_only,omitempty"`

	SwappableDependencies []SwappableDependency `json:"swappable_dependencies,omitempty"`
	OptionalDependencies  []OptionalDependency  `json:"optional_dependencies,omitempty"`
}

// Key returns the migration's identity.
func (m *Migration) Key() MigrationKey {
	return MigrationKey{AppLabel: m.AppLabel, Name: m.Name}
}

// Validate checks that the migration carries the fields every consumer
// relies on. It returns a multi-error if multiple validation failures occur.
func (m *Migration) Validate() error {
	var errs []error

	if m.AppLabel == "" {
		errs = append(errs, fmt.Errorf("app_label is required: %w", ErrInvalidConfig))
	}
	if m.Name == "" {
		errs = append(errs, fmt.Errorf("name is required: %w", ErrInvalidConfig))
	}
	for i, dep := range m.Dependencies {
		if dep[0] == "" || dep[1] == "" {
			errs = append(errs, fmt.Errorf("dependency %d is incomplete: %w", i, ErrInvalidConfig))
		}
	}
	if m.StateOnly && m.DatabaseOnly {
		errs = append(errs, fmt.Errorf("state_only and database_only are mutually exclusive: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// ResolvedDependencies flattens required, swappable, and optional
// dependencies into concrete (app, name) pairs for the given context.
// Unsatisfied optional dependencies are dropped.
func (m *Migration) ResolvedDependencies(ctx ResolutionContext) [][2]string {
	deps := make([][2]string, 0, len(m.Dependencies))
	deps = append(deps, m.Dependencies...)
	for _, sw := range m.SwappableDependencies {
		app, name := sw.Resolve(ctx.Settings[sw.SettingKey])
		deps = append(deps, [2]string{app, name})
	}
	for _, opt := range m.OptionalDependencies {
		if opt.Satisfied(ctx) {
			deps = append(deps, [2]string{opt.AppLabel, opt.Name})
		}
	}
	return deps
}

// AppliedMigration is one row of the applied-migration ledger.
// Rows are append-only and never deduplicated; callers must not assume
// row count equals migration count.
type AppliedMigration struct {
	ID      uuid.UUID `json:"id"`
	App     string    `json:"app"`
	Name    string    `json:"name"`
	Applied time.Time `json:"applied"`
}
