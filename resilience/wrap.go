package resilience

import (
	"context"
)

// Operation is a fallible call protected by the resilience layers.
type Operation[T any] func(ctx context.Context) (T, error)

// WithRetry wraps op with the retry executor.
func WithRetry[T any](cfg RetryConfig, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return Retry(ctx, cfg, func() (T, error) {
			return op(ctx)
		})
	}
}

// WithCircuitBreaker gates op behind the service's shared breaker from reg.
func WithCircuitBreaker[T any](reg *Registry, service string, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		return Do(reg.Get(service), func() (T, error) {
			return op(ctx)
		})
	}
}

// WithRateLimit makes op wait for a limiter token before running.
func WithRateLimit[T any](rl *RateLimiter, op Operation[T]) Operation[T] {
	return func(ctx context.Context) (T, error) {
		if err := rl.Wait(ctx); err != nil {
			var zero T
			return zero, err
		}
		return op(ctx)
	}
}

// Protect composes the canonical chain for a service call: circuit breaker
// outside, retry inside, raw operation innermost. The breaker gate is
// evaluated once per call; when open, the whole retry sequence is skipped
// and only a CircuitBreakerError is returned. When closed or half-open, the
// retry executor may invoke op several times and only the final escaping
// error reaches the breaker.
func Protect[T any](reg *Registry, service string, cfg RetryConfig, op Operation[T]) Operation[T] {
	return WithCircuitBreaker(reg, service, WithRetry(cfg, op))
}
