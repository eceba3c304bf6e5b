package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// DiskLoader scans a migrations root directory and parses migration
// files into dbshift.Migration values. It implements
// dbshift.MigrationSource once LoadDisk has run.
type DiskLoader struct {
	root   string
	logger dbshift.Logger

	loaded     bool
	migrations []*dbshift.Migration
	byKey      map[dbshift.MigrationKey]*dbshift.Migration
	byApp      map[string][]*dbshift.Migration
}

// NewDiskLoader creates a loader rooted at the given directory.
// Panics if logger is nil.
func NewDiskLoader(root string, logger dbshift.Logger) *DiskLoader {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &DiskLoader{
		root:   root,
		logger: logger,
		byKey:  map[dbshift.MigrationKey]*dbshift.Migration{},
		byApp:  map[string][]*dbshift.Migration{},
	}
}

// skipEntry reports whether a directory entry is a private or temporary
// artifact that the loader must ignore.
func skipEntry(name string) bool {
	if name == "__pycache__" {
		return true
	}
	return strings.HasPrefix(name, ".") ||
		strings.HasPrefix(name, "_") ||
		strings.HasPrefix(name, "~")
}

// LoadDisk scans the root directory and parses every migration file.
// Apps and files are visited in sorted name order, so the loader's
// canonical migration order is stable across runs. The first unreadable
// entry or malformed file aborts the load.
func (l *DiskLoader) LoadDisk() error {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return fmt.Errorf("read migrations root %s: %w", l.root, err)
	}

	l.migrations = nil
	l.byKey = map[dbshift.MigrationKey]*dbshift.Migration{}
	l.byApp = map[string][]*dbshift.Migration{}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	fileIndex := 0
	for _, entry := range entries {
		if !entry.IsDir() || skipEntry(entry.Name()) {
			continue
		}
		appLabel := entry.Name()
		if err := l.loadApp(appLabel, &fileIndex); err != nil {
			return err
		}
	}

	l.loaded = true
	l.logger.Verbose("loaded %d migrations from %s", len(l.migrations), l.root)
	return nil
}

func (l *DiskLoader) loadApp(appLabel string, fileIndex *int) error {
	appDir := filepath.Join(l.root, appLabel)
	files, err := os.ReadDir(appDir)
	if err != nil {
		return fmt.Errorf("read app directory %s: %w", appDir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, file := range files {
		name := file.Name()
		if file.IsDir() || skipEntry(name) || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(appDir, name)
		migration, err := l.parseFile(path, appLabel, *fileIndex)
		if err != nil {
			return err
		}
		*fileIndex++

		key := migration.Key()
		if existing, ok := l.byKey[key]; ok {
			return fmt.Errorf("duplicate migration %s (first defined by %s_*)",
				key, existing.Name)
		}
		l.byKey[key] = migration
		l.byApp[appLabel] = append(l.byApp[appLabel], migration)
		l.migrations = append(l.migrations, migration)
	}
	return nil
}

func (l *DiskLoader) parseFile(path, appLabel string, index int) (*dbshift.Migration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read migration file %s: %w", path, err)
	}

	var migration dbshift.Migration
	if err := json.Unmarshal(data, &migration); err != nil {
		return nil, &dbshift.ParseError{Path: path, Index: index, Err: err}
	}

	// The directory and file name are authoritative when the file body
	// omits its own identity.
	if migration.AppLabel == "" {
		migration.AppLabel = appLabel
	}
	if migration.Name == "" {
		migration.Name = strings.TrimSuffix(filepath.Base(path), ".json")
	}

	if err := migration.Validate(); err != nil {
		return nil, &dbshift.ParseError{Path: path, Index: index, Err: err}
	}
	return &migration, nil
}

func (l *DiskLoader) ensureLoaded() error {
	if l.loaded {
		return nil
	}
	return l.LoadDisk()
}

// AllMigrations returns every parsed migration in the loader's canonical
// order (apps sorted by name, files sorted within each app).
func (l *DiskLoader) AllMigrations() ([]*dbshift.Migration, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]*dbshift.Migration, len(l.migrations))
	copy(out, l.migrations)
	return out, nil
}

// HasMigrations reports whether the app contributed at least one
// migration.
func (l *DiskLoader) HasMigrations(app string) (bool, error) {
	if err := l.ensureLoaded(); err != nil {
		return false, err
	}
	return len(l.byApp[app]) > 0, nil
}

// GetMigration looks up a single migration by identity.
func (l *DiskLoader) GetMigration(app, name string) (*dbshift.Migration, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	m, ok := l.byKey[dbshift.MigrationKey{AppLabel: app, Name: name}]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", app, name, dbshift.ErrMigrationNotFound)
	}
	return m, nil
}

// AppMigrations returns the app's migrations in file order.
func (l *DiskLoader) AppMigrations(app string) ([]*dbshift.Migration, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	out := make([]*dbshift.Migration, len(l.byApp[app]))
	copy(out, l.byApp[app])
	return out, nil
}

// MigrationsByPrefix returns the app's migrations whose name starts with
// prefix, in file order.
func (l *DiskLoader) MigrationsByPrefix(app, prefix string) ([]*dbshift.Migration, error) {
	if err := l.ensureLoaded(); err != nil {
		return nil, err
	}
	var out []*dbshift.Migration
	for _, m := range l.byApp[app] {
		if strings.HasPrefix(m.Name, prefix) {
			out = append(out, m)
		}
	}
	return out, nil
}

// MigrationByPrefix resolves an abbreviated name like "0001" to exactly
// one migration. An exact name always wins. A prefix matching more than
// one migration is ErrAmbiguousPrefix, naming the candidates.
func (l *DiskLoader) MigrationByPrefix(app, prefix string) (*dbshift.Migration, error) {
	if m, err := l.GetMigration(app, prefix); err == nil {
		return m, nil
	}
	matches, err := l.MigrationsByPrefix(app, prefix)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%s.%s: %w", app, prefix, dbshift.ErrMigrationNotFound)
	case 1:
		return matches[0], nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return nil, fmt.Errorf("prefix %q matches %s: %w",
		prefix, strings.Join(names, ", "), dbshift.ErrAmbiguousPrefix)
}
