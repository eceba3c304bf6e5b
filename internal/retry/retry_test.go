package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoff_Progression(t *testing.T) {
	b := NewExponentialBackoff(3,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Minute),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
}

func TestExponentialBackoff_CapsAtMaxDelay(t *testing.T) {
	b := NewExponentialBackoff(100,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(1*time.Minute),
		WithJitter(0),
	)

	for attempt := 0; attempt <= 100; attempt++ {
		assert.LessOrEqual(t, b.NextDelay(attempt), 1*time.Minute, "attempt %d", attempt)
	}
	assert.Equal(t, 1*time.Minute, b.NextDelay(50))
}

func TestExponentialBackoff_JitterStaysWithinBounds(t *testing.T) {
	b := NewExponentialBackoff(3,
		WithInitialDelay(100*time.Millisecond),
		WithJitter(0.1),
		WithJitterFunc(func() float64 { return 1.0 }),
	)

	// jitterFunc=1.0 maps to the +10% extreme
	assert.Equal(t, 110*time.Millisecond, b.NextDelay(0))
}

func TestClassifier_TransientPgCodes(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	for _, code := range []string{"08006", "53300", "57P03", "40001", "40P01", "55P03"} {
		err := &pgconn.PgError{Code: code}
		assert.True(t, c.IsTransient(err), "code %s", code)
	}
}

func TestClassifier_FatalPgCodes(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	// Syntax errors and constraint violations must not be retried.
	for _, code := range []string{"42601", "23505", "28P01"} {
		err := &pgconn.PgError{Code: code}
		assert.False(t, c.IsTransient(err), "code %s", code)
	}
}

func TestClassifier_MessagePatterns(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	assert.True(t, c.IsTransient(errors.New("dial tcp: connection refused")))
	assert.True(t, c.IsTransient(errors.New("unexpected EOF")))
	assert.False(t, c.IsTransient(errors.New("relation does not exist")))
	assert.False(t, c.IsTransient(nil))
}

func TestExecutor_SucceedsAfterTransientFailures(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(5, WithInitialDelay(1*time.Millisecond), WithJitter(0)),
	)

	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestExecutor_FatalErrorStopsImmediately(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(5, WithInitialDelay(1*time.Millisecond), WithJitter(0)),
	)

	fatal := errors.New("syntax error at or near SELECT")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return fatal
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestExecutor_ExhaustsAttempts(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(2, WithInitialDelay(1*time.Millisecond), WithJitter(0)),
	)

	transient := errors.New("connection reset by peer")
	calls := 0
	err := executor.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return transient
	})

	assert.ErrorIs(t, err, transient)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestExecutor_RespectsContextCancellation(t *testing.T) {
	executor := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(-1, WithInitialDelay(50*time.Millisecond), WithJitter(0)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := executor.Execute(ctx, func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecutor_OnRetryCallback(t *testing.T) {
	base := NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(2, WithInitialDelay(1*time.Millisecond), WithJitter(0)),
	)

	var attempts []int
	executor := base.WithOnRetry(func(attempt int, err error, delay time.Duration) {
		attempts = append(attempts, attempt)
	})

	_ = executor.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	assert.Equal(t, []int{0, 1}, attempts)
	assert.Nil(t, base.onRetry)
}
