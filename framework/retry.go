package framework

import (
	"fmt"
	"time"
)

// BackoffPolicy computes the delay before the given retry attempt. Attempts
// are numbered from 1; the policy is consulted after attempt n fails and
// before attempt n+1 starts.
type BackoffPolicy func(attempt int) time.Duration

// ConstantBackoff waits the same amount of time between every attempt.
func ConstantBackoff(d time.Duration) BackoffPolicy {
	return func(int) time.Duration { return d }
}

// LinearBackoff waits attempt*d between attempts.
func LinearBackoff(d time.Duration) BackoffPolicy {
	return func(attempt int) time.Duration { return time.Duration(attempt) * d }
}

// Retry runs op up to maxAttempts times, sleeping per the backoff policy
// between attempts, and returns nil as soon as one attempt succeeds. If
// every attempt fails it returns the last error, wrapped with the attempt
// count. Retry policy belongs at the call site that owns the operation;
// the clients themselves never retry.
func Retry(op func() error, maxAttempts int, backoff BackoffPolicy) error {
	if maxAttempts < 1 {
		return fmt.Errorf("retry: maxAttempts must be at least 1, got %d", maxAttempts)
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if lastErr = op(); lastErr == nil {
			return nil
		}
		if attempt < maxAttempts && backoff != nil {
			time.Sleep(backoff(attempt))
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
