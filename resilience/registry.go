package resilience

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/postsync/faultkit/observability"
)

// Registry owns one circuit breaker per service name. Breakers are created
// lazily on first use and live for the registry's lifetime; identical
// service names anywhere in the process share one breaker and therefore one
// failure count.
//
// Construct isolated registries in tests; use Default for the shared
// process-wide one.
type Registry struct {
	mu        sync.RWMutex
	breakers  map[string]*CircuitBreaker
	configFor func(service string) CircuitBreakerConfig
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBreakerConfig overrides how configs are built for new breakers.
func WithBreakerConfig(fn func(service string) CircuitBreakerConfig) RegistryOption {
	return func(r *Registry) { r.configFor = fn }
}

// NewRegistry creates an empty breaker registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		breakers:  make(map[string]*CircuitBreaker),
		configFor: DefaultCircuitBreakerConfig,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the breaker for a service, creating it on first use.
func (r *Registry) Get(service string) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[service]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[service]; ok {
		return cb
	}
	cb = NewCircuitBreaker(r.configFor(service))
	r.breakers[service] = cb
	return cb
}

// Names returns the sorted service names with registered breakers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.breakers))
	for name := range r.breakers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckHealth reports degraded when any breaker is open. Per-breaker states
// are included in the details map.
func (r *Registry) CheckHealth(ctx context.Context) observability.Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	details := make(map[string]string, len(r.breakers))
	open := 0
	for name, cb := range r.breakers {
		state := cb.State()
		details[name] = state.String()
		if state == StateOpen {
			open++
		}
	}

	health := observability.Health{
		Name:    "circuit_breakers",
		Status:  observability.HealthStatusUp,
		Details: details,
	}
	if open > 0 {
		health.Status = observability.HealthStatusDegraded
		health.Message = fmt.Sprintf("%d circuit breaker(s) open", open)
	}
	return health
}

// --- Default registry ---

var defaultRegistry = NewRegistry()

// Default returns the shared process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// GetCircuitBreaker returns the breaker for a service from the default
// registry, creating it on first use.
func GetCircuitBreaker(service string) *CircuitBreaker {
	return defaultRegistry.Get(service)
}
