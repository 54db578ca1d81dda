package resilience

import (
	"fmt"
	"sync"
	"time"

	apperrors "github.com/postsync/faultkit/errors"
	"github.com/postsync/faultkit/logger"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed allows requests to pass through.
	StateClosed State = iota
	// StateOpen rejects all requests without invoking the operation.
	StateOpen
	// StateHalfOpen allows trial requests to test recovery.
	StateHalfOpen
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig configures a circuit breaker.
type CircuitBreakerConfig struct {
	// Name identifies this breaker, normally the service name.
	Name string
	// FailureThreshold is the number of matching failures before opening.
	FailureThreshold int
	// RecoveryTimeout is how long an open breaker waits before allowing a
	// half-open trial call.
	RecoveryTimeout time.Duration
	// IsFailure decides which errors count against the breaker. Errors it
	// rejects pass through without touching breaker state. Defaults to
	// matching ExternalServiceError.
	IsFailure func(error) bool
	// OnStateChange is called after every state transition.
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig returns the defaults used for service breakers.
// Note that only ExternalServiceError counts as a failure: rate limit and
// content generation errors pass through without tripping the breaker.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: 5,
		RecoveryTimeout:  60 * time.Second,
		IsFailure:        Match[*apperrors.ExternalServiceError](),
	}
}

// CircuitBreaker gates calls to one external service. After
// FailureThreshold matching failures it opens and rejects calls with a
// CircuitBreakerError until RecoveryTimeout has elapsed, then allows a
// half-open trial: success closes the breaker, failure reopens it.
//
// All state transitions happen under a mutex, so the threshold is exact
// under concurrent load. The wrapped operation itself runs outside the
// lock.
type CircuitBreaker struct {
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           State
	failures        int
	lastFailureTime time.Time
}

// NewCircuitBreaker creates a circuit breaker in the closed state.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.FailureThreshold < 1 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 60 * time.Second
	}
	if config.IsFailure == nil {
		config.IsFailure = Match[*apperrors.ExternalServiceError]()
	}

	return &CircuitBreaker{
		config: config,
		state:  StateClosed,
	}
}

// Execute runs fn through the breaker. When the breaker is open and the
// recovery timeout has not elapsed, fn is never invoked and a
// CircuitBreakerError is returned.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.beforeCall(); err != nil {
		return err
	}

	err := fn()
	cb.afterCall(err)
	return err
}

// Do runs a function with a typed result through the breaker.
func Do[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var result T
	err := cb.Execute(func() error {
		var fnErr error
		result, fnErr = fn()
		return fnErr
	})
	return result, err
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current consecutive failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// LastFailureTime returns when the breaker last recorded a failure, zero if
// it never has.
func (cb *CircuitBreaker) LastFailureTime() time.Time {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastFailureTime
}

// Reset forces the breaker back to closed with a zero failure count.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.toState(StateClosed)
	cb.failures = 0
}

// beforeCall evaluates the gate. It returns a CircuitBreakerError when the
// call must be rejected, transitioning open breakers to half-open once the
// recovery timeout has elapsed.
func (cb *CircuitBreaker) beforeCall() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}

	if time.Since(cb.lastFailureTime) >= cb.config.RecoveryTimeout {
		cb.toState(StateHalfOpen)
		return nil
	}

	return apperrors.NewCircuitOpen(
		fmt.Sprintf("circuit breaker is open for %s", cb.config.Name))
}

// afterCall records the call result. Only errors matching IsFailure touch
// breaker state; anything else passes through untouched.
func (cb *CircuitBreaker) afterCall(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state == StateHalfOpen {
			cb.toState(StateClosed)
		}
		cb.failures = 0
		return
	}

	if !cb.config.IsFailure(err) {
		return
	}

	cb.failures++
	cb.lastFailureTime = time.Now()

	if cb.failures >= cb.config.FailureThreshold {
		cb.toState(StateOpen)
	}
}

// toState transitions to a new state. Callers must hold cb.mu.
func (cb *CircuitBreaker) toState(to State) {
	if cb.state == to {
		return
	}

	from := cb.state
	cb.state = to

	logger.Get("resilience").Info("circuit breaker state changed", logger.Fields(
		"breaker", cb.config.Name,
		"from", from.String(),
		"to", to.String(),
		"failures", cb.failures,
	))

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.config.Name, from, to)
	}
}
