package resilience

import (
	"context"
	stderrors "errors"
	"math"
	"math/rand"
	"time"

	apperrors "github.com/postsync/faultkit/errors"
	"github.com/postsync/faultkit/logger"
)

// RetryConfig configures the retry executor.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the computed backoff delay.
	MaxDelay time.Duration
	// ExponentialBase is the backoff growth factor.
	ExponentialBase float64
	// Jitter randomizes each delay into [delay/2, delay) to avoid
	// synchronized retry storms across callers.
	Jitter bool
	// RetryIf filters which errors are retried. Nil retries everything.
	RetryIf func(error) bool
	// OnRetry is called before each backoff sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
}

// DefaultRetryConfig returns sensible defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		BaseDelay:       time.Second,
		MaxDelay:        60 * time.Second,
		ExponentialBase: 2.0,
		Jitter:          true,
	}
}

// Retry executes fn up to cfg.MaxAttempts times, sleeping between failures
// with bounded exponential backoff. It returns on the first success. The
// final error is returned unchanged, never wrapped. Errors rejected by
// cfg.RetryIf short-circuit without any sleep.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T

	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.ExponentialBase <= 0 {
		cfg.ExponentialBase = 2.0
	}

	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		default:
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		delay := Backoff(attempt, cfg)
		if hint, ok := retryAfterHint(err); ok && hint > delay {
			delay = hint
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err, delay)
		}
		logger.Get("resilience").Warn("retrying after error", logger.Fields(
			logger.FieldAttempt, attempt+1,
			logger.FieldMaxAttempts, cfg.MaxAttempts,
			logger.FieldDelay, delay.String(),
			logger.FieldError, err.Error(),
		))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// RetryFunc executes a function that returns only an error.
func RetryFunc(ctx context.Context, cfg RetryConfig, fn func() error) error {
	_, err := Retry(ctx, cfg, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Backoff computes the delay that follows the given zero-based attempt:
// min(base * expBase^attempt, max). With jitter enabled the capped delay is
// multiplied by a uniform factor in [0.5, 1.0), so a jittered delay never
// exceeds the deterministic one.
func Backoff(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.BaseDelay) * math.Pow(cfg.ExponentialBase, float64(attempt))
	if cfg.MaxDelay > 0 && delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		delay *= 0.5 + rand.Float64()*0.5
	}
	return time.Duration(delay)
}

// retryAfterHint extracts a server-suggested wait from rate limit errors.
func retryAfterHint(err error) (time.Duration, bool) {
	var rl *apperrors.APIRateLimitError
	if stderrors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter, true
	}
	return 0, false
}

// Match builds an error filter that accepts errors of one taxonomy type,
// the Go rendition of an "only retry these types" list:
//
//	cfg.RetryIf = resilience.MatchAny(
//	    resilience.Match[*errors.APIRateLimitError](),
//	    resilience.Match[*errors.ContentGenerationError](),
//	)
func Match[T error]() func(error) bool {
	return func(err error) bool {
		var target T
		return stderrors.As(err, &target)
	}
}

// MatchAny combines filters; an error passes if any filter accepts it.
func MatchAny(matchers ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, m := range matchers {
			if m(err) {
				return true
			}
		}
		return false
	}
}
