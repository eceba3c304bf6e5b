package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/velora-dev/dbshift/internal/retry"
	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// TokenBasedConnector connects using short-lived tokens (AWS IAM, Azure
// Entra ID) acquired from a TokenProvider and passed as the password.
type TokenBasedConnector struct {
	config        *dbshift.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector wraps a TokenProvider for a given cloud.
// providerName labels error messages (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(config *dbshift.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(),
		providerName:  providerName,
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		// Tokens are short-lived, so each attempt acquires a fresh one.
		token, _, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		configWithToken := *c.config
		configWithToken.Password = token

		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&configWithToken))
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
