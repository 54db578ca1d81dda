// Package resilience protects calls to unreliable external services.
//
// It provides three layers that compose explicitly, outermost first:
//
//   - CircuitBreaker: fails fast once a service is clearly unhealthy
//   - Retry: re-invokes transient failures with bounded exponential backoff
//   - RateLimiter: client-side token bucket for services with known quotas
//
// The canonical stacking for a service call is breaker outside, retry
// inside, so an open breaker skips the entire retry sequence:
//
//	fetch := resilience.Protect(registry, "reddit", resilience.DefaultRetryConfig(),
//	    func(ctx context.Context) ([]Post, error) {
//	        return client.FetchPosts(ctx)
//	    })
//	posts, err := fetch(ctx)
//
// Breakers are shared per service name through a Registry, so every caller
// hitting the same service contributes to the same failure count.
package resilience
