// Package config loads the dbshift.yaml project file and the optional
// .env environment file next to it.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	URL            string `yaml:"url,omitempty"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

type ProjectConfig struct {
	// MigrationsDir is the migrations root, relative to the config file.
	MigrationsDir string `yaml:"migrations_dir,omitempty"`

	// ExtraMigrationDirs lists additional migration roots, typically
	// vendored apps shipping their own migrations. All roots are merged
	// into one source; a migration identity may come from only one root.
	ExtraMigrationDirs []string `yaml:"extra_migration_dirs,omitempty"`

	// LedgerTable overrides the default applied-migrations table name.
	LedgerTable string `yaml:"ledger_table,omitempty"`

	Connection ConnectionConfig  `yaml:"connection"`
	Params     map[string]string `yaml:"params"`

	// InstalledApps and Settings feed swappable and optional dependency
	// resolution.
	InstalledApps []string          `yaml:"installed_apps,omitempty"`
	Settings      map[string]string `yaml:"settings,omitempty"`
	Features      map[string]bool   `yaml:"features,omitempty"`
}

const ConfigFileName = "dbshift.yaml"

// Load reads dbshift.yaml from the given directory. A .env file in the
// same directory is loaded into the process environment first, so
// DATABASE_URL and cloud credentials can stay out of the YAML.
func Load(sourcePath string) (*ProjectConfig, error) {
	// Missing .env is fine; a malformed one is not worth failing over
	// either, since the YAML may be self-contained.
	_ = godotenv.Load(filepath.Join(sourcePath, ".env"))

	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Connection.URL == "" {
		cfg.Connection.URL = os.Getenv("DATABASE_URL")
	}
	return &cfg, nil
}
