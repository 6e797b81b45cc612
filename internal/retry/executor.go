package retry

import (
	"context"
	"time"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// Executor runs an operation until it succeeds, fails fatally, or the
// strategy runs out of attempts. Safe for concurrent use.
type Executor struct {
	classifier edseed.ErrorClassifier
	strategy   edseed.BackoffStrategy
	onRetry    func(attempt int, err error, delay time.Duration)
}

// NewExecutor panics if classifier or strategy is nil.
func NewExecutor(classifier edseed.ErrorClassifier, strategy edseed.BackoffStrategy) *Executor {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if strategy == nil {
		panic("strategy cannot be nil")
	}
	return &Executor{classifier: classifier, strategy: strategy}
}

// NewDefaultExecutor uses the PostgreSQL classifier and the default
// attempt count and delays.
func NewDefaultExecutor() *Executor {
	return NewExecutor(
		NewPostgreSQLErrorClassifier(),
		NewExponentialBackoff(edseed.DefaultRetryMaxAttempts,
			WithInitialDelay(edseed.DefaultRetryInitialDelay),
			WithMaxDelay(edseed.DefaultRetryMaxDelay),
		),
	)
}

// WithOnRetry returns a copy of e that calls callback before each retry.
// The receiver is not modified.
func (e *Executor) WithOnRetry(callback func(attempt int, err error, delay time.Duration)) *Executor {
	clone := *e
	clone.onRetry = callback
	return &clone
}

// Execute runs operation and returns the error of the last attempt.
func (e *Executor) Execute(ctx context.Context, operation func(ctx context.Context) error) error {
	err := operation(ctx)
	maxAttempts := e.strategy.MaxAttempts()

	for attempt := 0; err != nil && e.classifier.IsTransient(err); attempt++ {
		if maxAttempts >= 0 && attempt >= maxAttempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		delay := e.strategy.NextDelay(attempt)
		if e.onRetry != nil {
			e.onRetry(attempt, err, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		err = operation(ctx)
	}
	return err
}
