package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(attempts int) *ExponentialBackoff {
	return NewExponentialBackoff(attempts, WithInitialDelay(time.Millisecond), WithJitter(0))
}

// flakyOperation fails with err for the first failures invocations.
type flakyOperation struct {
	calls    int
	failures int
	err      error
}

func (f *flakyOperation) run(context.Context) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func TestExecutor_SucceedsAfterTransientFailures(t *testing.T) {
	op := &flakyOperation{failures: 2, err: &pgconn.PgError{Code: "08006"}}
	var retries []int

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(3)).
		WithOnRetry(func(attempt int, err error, delay time.Duration) { retries = append(retries, attempt) }).
		Execute(context.Background(), op.run)

	require.NoError(t, err)
	assert.Equal(t, 3, op.calls)
	assert.Equal(t, []int{0, 1}, retries)
}

func TestExecutor_GivesUpAfterMaxAttempts(t *testing.T) {
	op := &flakyOperation{failures: 10, err: errors.New("connection refused")}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(2)).Execute(context.Background(), op.run)

	assert.EqualError(t, err, "connection refused")
	assert.Equal(t, 3, op.calls, "initial attempt plus two retries")
}

func TestExecutor_FatalErrorNotRetried(t *testing.T) {
	op := &flakyOperation{failures: 10, err: &pgconn.PgError{Code: "23505", Message: "duplicate key"}}

	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(5)).Execute(context.Background(), op.run)

	var pgErr *pgconn.PgError
	require.True(t, errors.As(err, &pgErr))
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_NoRetries(t *testing.T) {
	op := &flakyOperation{failures: 1, err: errors.New("broken pipe")}
	err := NewExecutor(NewPostgreSQLErrorClassifier(), fastBackoff(0)).Execute(context.Background(), op.run)
	assert.Error(t, err)
	assert.Equal(t, 1, op.calls)
}

func TestExecutor_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	op := func(context.Context) error {
		cancel()
		return errors.New("connection reset by peer")
	}

	strategy := NewExponentialBackoff(5, WithInitialDelay(time.Hour), WithJitter(0))
	err := NewExecutor(NewPostgreSQLErrorClassifier(), strategy).Execute(ctx, op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewExecutor_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewExecutor(nil, fastBackoff(1)) })
	assert.Panics(t, func() { NewExecutor(NewPostgreSQLErrorClassifier(), nil) })
	assert.NotNil(t, NewDefaultExecutor())
}

func TestExponentialBackoff_NextDelay(t *testing.T) {
	b := NewExponentialBackoff(5,
		WithInitialDelay(100*time.Millisecond),
		WithMaxDelay(time.Second),
		WithJitter(0),
	)

	assert.Equal(t, 100*time.Millisecond, b.NextDelay(0))
	assert.Equal(t, 200*time.Millisecond, b.NextDelay(1))
	assert.Equal(t, 400*time.Millisecond, b.NextDelay(2))
	assert.Equal(t, time.Second, b.NextDelay(10), "capped at max delay")
	assert.Equal(t, 5, b.MaxAttempts())
}

func TestExponentialBackoff_Jitter(t *testing.T) {
	high := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithRandom(func() float64 { return 1.0 }))
	low := NewExponentialBackoff(1, WithInitialDelay(time.Second), WithJitter(0.1), WithRandom(func() float64 { return 0.0 }))

	assert.Equal(t, 1100*time.Millisecond, high.NextDelay(0))
	assert.Equal(t, 900*time.Millisecond, low.NextDelay(0))
}

func TestExponentialBackoff_Multiplier(t *testing.T) {
	b := NewExponentialBackoff(3, WithInitialDelay(10*time.Millisecond), WithMultiplier(3), WithJitter(0))
	assert.Equal(t, 90*time.Millisecond, b.NextDelay(2))
}

func TestPostgreSQLErrorClassifier(t *testing.T) {
	c := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection exception class", &pgconn.PgError{Code: "08001"}, true},
		{"too many connections", &pgconn.PgError{Code: "53300"}, true},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, true},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", &pgconn.PgError{Code: "40P01"}, true},
		{"lock not available", &pgconn.PgError{Code: "55P03"}, true},
		{"unique violation", &pgconn.PgError{Code: "23505"}, false},
		{"check violation", &pgconn.PgError{Code: "23514"}, false},
		{"undefined column", &pgconn.PgError{Code: "42703"}, false},
		{"wrapped pg error", fmt.Errorf("upsert: %w", &pgconn.PgError{Code: "08006"}), true},
		{"refused", &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}, true},
		{"reset", &net.OpError{Op: "read", Err: syscall.ECONNRESET}, true},
		{"other op error", &net.OpError{Op: "dial", Err: syscall.EACCES}, false},
		{"message", errors.New("server closed the connection unexpectedly"), true},
		{"deadline", context.DeadlineExceeded, false},
		{"plain", errors.New("value too long for type character varying(8)"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsTransient(tt.err))
		})
	}
}
