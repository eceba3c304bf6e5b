package retry

import (
	"context"
	"time"

	"github.com/velora-dev/dbshift/pkg/dbshift"
)

// Executor orchestrates retry attempts with backoff and error
// classification. Safe for concurrent use; WithOnRetry returns a new
// instance so callers can attach callbacks without shared state.
type Executor struct {
	classifier dbshift.ErrorClassifier
	strategy   dbshift.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor creates a retry executor. Panics if classifier or
// strategy is nil.
func NewExecutor(classifier dbshift.ErrorClassifier, strategy dbshift.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// WithOnRetry returns a new Executor that invokes callback before each
// retry wait. The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs the operation, retrying transient failures until the
// strategy's attempt budget is exhausted or the context is cancelled.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	maxAttempts := e.strategy.MaxAttempts()

	lastErr := operation(ctx)
	if lastErr == nil {
		return nil
	}
	if !e.classifier.IsTransient(lastErr) {
		return lastErr
	}

	for attempt := 0; maxAttempts < 0 || attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}
		if !e.classifier.IsTransient(lastErr) {
			return lastErr
		}
	}

	return lastErr
}
