package cli

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/velora-dev/dbshift/internal/config"
	"github.com/velora-dev/dbshift/internal/db"
	"github.com/velora-dev/dbshift/internal/loader"
	"github.com/velora-dev/dbshift/internal/recorder"
	"github.com/velora-dev/dbshift/internal/registry"
	"github.com/velora-dev/dbshift/pkg/dbshift"
	_ "modernc.org/sqlite"
)

// project bundles everything a command needs: the parsed config, the
// disk loader, and lazily-opened ledger access.
type project struct {
	dir    string
	config *config.ProjectConfig
	logger dbshift.Logger
}

func openProject(dir string, logger dbshift.Logger) (*project, error) {
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", dbshift.ErrInvalidConfig, err)
	}
	return &project{dir: dir, config: cfg, logger: logger}, nil
}

func (p *project) migrationsRoot() string {
	root := p.config.MigrationsDir
	if root == "" {
		root = dbshift.DefaultMigrationsDir
	}
	if !filepath.IsAbs(root) {
		root = filepath.Join(p.dir, root)
	}
	return root
}

func (p *project) newLoader() (*loader.DiskLoader, error) {
	l := loader.NewDiskLoader(p.migrationsRoot(), p.logger)
	if err := l.LoadDisk(); err != nil {
		return nil, err
	}
	return l, nil
}

// newSource builds the project's migration source. The primary root and
// any extra_migration_dirs roots are loaded separately and merged; the
// merge rejects a migration identity supplied by more than one root.
func (p *project) newSource() (dbshift.MigrationSource, error) {
	primary, err := p.newLoader()
	if err != nil {
		return nil, err
	}
	if len(p.config.ExtraMigrationDirs) == 0 {
		return primary, nil
	}

	sources := []dbshift.MigrationSource{primary}
	for _, dir := range p.config.ExtraMigrationDirs {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.dir, dir)
		}
		extra := loader.NewDiskLoader(dir, p.logger)
		if err := extra.LoadDisk(); err != nil {
			return nil, err
		}
		sources = append(sources, extra)
	}
	return registry.Merge(sources...), nil
}

func (p *project) resolutionContext() dbshift.ResolutionContext {
	installed := make(map[string]bool, len(p.config.InstalledApps))
	for _, app := range p.config.InstalledApps {
		installed[app] = true
	}
	return dbshift.ResolutionContext{
		InstalledApps: installed,
		Settings:      p.config.Settings,
		Features:      p.config.Features,
	}
}

// openRecorder connects to the ledger database named by the config.
// The returned cleanup closes the underlying pool or handle.
func (p *project) openRecorder(ctx context.Context) (dbshift.Recorder, func(), error) {
	rawURL := p.config.Connection.URL
	if rawURL == "" && p.config.Connection.Host != "" {
		rawURL = db.BuildConnectionString(p.connectionConfig())
	}
	if rawURL == "" {
		return nil, nil, fmt.Errorf("%w: no database URL configured (set connection.url or DATABASE_URL)", dbshift.ErrInvalidConfig)
	}

	backend, err := dbshift.ParseDatabaseType(rawURL)
	if err != nil {
		return nil, nil, err
	}

	switch backend {
	case dbshift.DatabasePostgres:
		return p.openPostgresRecorder(ctx, rawURL)
	case dbshift.DatabaseMySQL:
		dsn, err := mysqlDSN(rawURL)
		if err != nil {
			return nil, nil, err
		}
		return p.openSQLRecorder(ctx, "mysql", dsn, backend)
	case dbshift.DatabaseSQLite:
		path := strings.TrimPrefix(rawURL, "sqlite://")
		return p.openSQLRecorder(ctx, "sqlite", path, backend)
	default:
		return nil, nil, fmt.Errorf("ledger backend %q: %w", backend, dbshift.ErrUnsupportedBackend)
	}
}

func (p *project) openPostgresRecorder(ctx context.Context, rawURL string) (dbshift.Recorder, func(), error) {
	connConfig, err := db.ParseConnectionString(rawURL)
	if err != nil {
		return nil, nil, err
	}
	applyAuthConfig(connConfig, p.config.Connection)

	connector, err := db.NewConnector(connConfig)
	if err != nil {
		return nil, nil, err
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", dbshift.ErrConnectionFailed, err)
	}

	rec := recorder.NewPostgresRecorder(pool, p.config.LedgerTable)
	if err := rec.EnsureSchemaTable(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return rec, pool.Close, nil
}

func (p *project) openSQLRecorder(ctx context.Context, driver, dsn string, backend dbshift.DatabaseType) (dbshift.Recorder, func(), error) {
	handle, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", dbshift.ErrConnectionFailed, err)
	}

	rec := recorder.NewSQLRecorder(handle, backend, p.config.LedgerTable)
	if err := rec.EnsureSchemaTable(ctx); err != nil {
		handle.Close()
		return nil, nil, err
	}
	return rec, func() { handle.Close() }, nil
}

func (p *project) connectionConfig() *dbshift.ConnectionConfig {
	conn := p.config.Connection
	cc := &dbshift.ConnectionConfig{
		Host:     conn.Host,
		Port:     conn.Port,
		Database: conn.Database,
		Username: conn.Username,
		SSLMode:  conn.SSLMode,
	}
	if cc.Port == 0 {
		cc.Port = 5432
	}
	applyAuthConfig(cc, conn)
	return cc
}

func applyAuthConfig(cc *dbshift.ConnectionConfig, conn config.ConnectionConfig) {
	switch strings.ToLower(conn.AuthMethod) {
	case "", "standard":
		cc.AuthMethod = dbshift.AuthMethodStandard
	case "aws_iam":
		cc.AuthMethod = dbshift.AuthMethodAWSIAM
		cc.AWSRegion = conn.AWSRegion
	case "google_iam":
		cc.AuthMethod = dbshift.AuthMethodGoogleIAM
		cc.GoogleInstance = conn.GoogleInstance
	case "azure_entra":
		cc.AuthMethod = dbshift.AuthMethodAzureEntraID
		cc.AzureTenantID = conn.AzureTenantID
		cc.AzureClientID = conn.AzureClientID
		// The secret stays out of the YAML. The Azure SDK convention name
		// is read instead; a .env next to dbshift.yaml can supply it.
		cc.AzureClientSecret = os.Getenv("AZURE_CLIENT_SECRET")
	}
}

// mysqlDSN converts a mysql:// URL into the DSN form the go-sql-driver
// expects: user:pass@tcp(host:port)/dbname?params.
func mysqlDSN(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL URL: %w", err)
	}

	host := u.Hostname()
	if host == "" {
		host = "localhost"
	}
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	var creds string
	if u.User != nil {
		creds = u.User.Username()
		if pass, ok := u.User.Password(); ok {
			creds += ":" + pass
		}
		creds += "@"
	}

	dsn := fmt.Sprintf("%stcp(%s:%s)/%s", creds, host, port, strings.TrimPrefix(u.Path, "/"))
	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}
	return dsn, nil
}
