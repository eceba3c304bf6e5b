package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velora-dev/dbshift/internal/retry"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

const (
	// DefaultMaxConns limits concurrent connections; the ledger workload
	// is a handful of short statements so a small pool suffices.
	DefaultMaxConns = 5

	// DefaultMinConns keeps one connection warm between statements.
	DefaultMinConns = 1

	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
}

func newRetryExecutor() *retry.Executor {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(dbshift.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(dbshift.DefaultRetryInitialDelay),
		retry.WithMaxDelay(dbshift.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(classifier, strategy)
}

// StandardConnector connects with username/password authentication and
// retries transient failures.
type StandardConnector struct {
	config        *dbshift.ConnectionConfig
	retryExecutor *retry.Executor
}

func NewStandardConnector(config *dbshift.ConnectionConfig) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: newRetryExecutor(),
	}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.config.Host, c.config.Port, c.config.Database)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

// NewConnector selects a Connector implementation from the config's
// AuthMethod.
func NewConnector(config *dbshift.ConnectionConfig) (dbshift.Connector, error) {
	switch config.AuthMethod {
	case dbshift.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case dbshift.AuthMethodAWSIAM:
		return newAWSConnector(config)
	case dbshift.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case dbshift.AuthMethodAzureEntraID:
		return newAzureConnector(config)
	default:
		return nil, fmt.Errorf("auth method %v: %w", config.AuthMethod, dbshift.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError adds actionable guidance to raw pgx connection
// errors before they reach the operator.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused"):
		return fmt.Errorf("connection refused to %s (is PostgreSQL running? check: pg_isready -h %s -p %d): %w",
			addr, host, port, err)
	case strings.Contains(errStr, "no such host"):
		return fmt.Errorf("cannot resolve host %q: %w", host, err)
	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf("password authentication failed for database %q: %w", database, err)
	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf("database %q does not exist (create it with: createdb %s): %w", database, database, err)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf("connection timed out to %s: %w", addr, err)
	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf("too many connections to database %q: %w", database, err)
	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

func newAWSConnector(config *dbshift.ConnectionConfig) (dbshift.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM"), nil
}

func newGoogleConnector(config *dbshift.ConnectionConfig) (dbshift.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires an instance connection name (project:region:instance)")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username")
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

func newAzureConnector(config *dbshift.ConnectionConfig) (dbshift.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure"), nil
}
