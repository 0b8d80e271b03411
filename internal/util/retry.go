package util

import (
	"context"
	"errors"
)

// RetryWithContext calls fn until it succeeds, up to maxTries attempts.
// The loop stops early when ctx is done or fn fails with a context
// error. maxTries below 1 is treated as a single attempt.
func RetryWithContext[T any](ctx context.Context, maxTries int, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for range max(maxTries, 1) {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		lastErr = err
	}
	return zero, lastErr
}

// Retry is RetryWithContext without cancellation.
func Retry[T any](maxTries int, fn func() (T, error)) (T, error) {
	return RetryWithContext(context.Background(), maxTries, func(context.Context) (T, error) {
		return fn()
	})
}

// RetryErrWithContext retries a function that only reports an error.
func RetryErrWithContext(ctx context.Context, maxTries int, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, maxTries, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryErr is RetryErrWithContext without cancellation.
func RetryErr(maxTries int, fn func() error) error {
	return RetryErrWithContext(context.Background(), maxTries, func(context.Context) error {
		return fn()
	})
}
