package db

import (
	"context"
	"time"
)

// TokenProvider acquires short-lived authentication tokens used as the
// PostgreSQL password for cloud IAM auth.
type TokenProvider interface {
	// GetToken returns a token and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)
}
