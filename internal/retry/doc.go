// Package retry re-runs operations that fail for transient reasons, with
// exponential backoff between attempts.
//
// It guards the two places a load talks to PostgreSQL: opening the pool
// and sending an upsert. A refused batch caused by bad data is not
// transient and is returned at once, leaving the per-record fallback to
// the loader.
//
//	executor := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
