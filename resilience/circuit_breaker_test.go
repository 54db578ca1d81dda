package resilience

import (
	stderrors "errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/postsync/faultkit/errors"
)

func testBreakerConfig(name string) CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig(name)
	cfg.FailureThreshold = 2
	cfg.RecoveryTimeout = 20 * time.Millisecond
	return cfg
}

func serviceDown() error {
	return apperrors.NewExternalService("service unavailable", "openai")
}

func TestCircuitBreakerOpensAtThreshold(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))

	if cb.State() != StateClosed {
		t.Fatalf("initial state = %v, want closed", cb.State())
	}

	cb.Execute(serviceDown)
	if cb.State() != StateClosed {
		t.Errorf("state after 1 failure = %v, want closed", cb.State())
	}
	if cb.Failures() != 1 {
		t.Errorf("failures = %d, want 1", cb.Failures())
	}

	cb.Execute(serviceDown)
	if cb.State() != StateOpen {
		t.Errorf("state after 2 failures = %v, want open", cb.State())
	}
}

func TestCircuitBreakerFailsFastWhenOpen(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))
	cb.Execute(serviceDown)
	cb.Execute(serviceDown)

	calls := 0
	err := cb.Execute(func() error {
		calls++
		return nil
	})
	if calls != 0 {
		t.Errorf("calls = %d, want 0 while open", calls)
	}

	var cbErr *apperrors.CircuitBreakerError
	if !stderrors.As(err, &cbErr) {
		t.Fatalf("err = %v, want CircuitBreakerError", err)
	}
	if cbErr.Category != apperrors.CategorySystem {
		t.Errorf("category = %v, want system", cbErr.Category)
	}
}

func TestCircuitBreakerRecovers(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))
	cb.Execute(serviceDown)
	cb.Execute(serviceDown)

	time.Sleep(25 * time.Millisecond)

	err := cb.Execute(func() error { return nil })
	if err != nil {
		t.Fatalf("trial call failed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("state after successful trial = %v, want closed", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("failures = %d, want 0 after recovery", cb.Failures())
	}
}

func TestCircuitBreakerReopensOnHalfOpenFailure(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))
	cb.Execute(serviceDown)
	cb.Execute(serviceDown)

	time.Sleep(25 * time.Millisecond)

	calls := 0
	cb.Execute(func() error {
		calls++
		return serviceDown()
	})
	if calls != 1 {
		t.Errorf("calls = %d, want the trial call to be invoked", calls)
	}
	if cb.State() != StateOpen {
		t.Errorf("state after failed trial = %v, want open", cb.State())
	}
}

func TestCircuitBreakerIgnoresNonMatchingErrors(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))

	for i := 0; i < 5; i++ {
		err := cb.Execute(func() error {
			return apperrors.NewValidation("bad input", "prompt")
		})
		var ve *apperrors.ValidationError
		if !stderrors.As(err, &ve) {
			t.Fatalf("err = %v, want the ValidationError passed through", err)
		}
	}

	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed after non-matching errors", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("failures = %d, want 0", cb.Failures())
	}
}

func TestCircuitBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))

	cb.Execute(serviceDown)
	cb.Execute(func() error { return nil })
	if cb.Failures() != 0 {
		t.Errorf("failures = %d, want 0 after success", cb.Failures())
	}

	// The streak starts over, so one more failure must not open it.
	cb.Execute(serviceDown)
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed", cb.State())
	}
}

func TestCircuitBreakerDo(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))

	result, err := Do(cb, func() (string, error) {
		return "generated content", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "generated content" {
		t.Errorf("result = %q, want %q", result, "generated content")
	}

	cb.Execute(serviceDown)
	cb.Execute(serviceDown)

	result, err = Do(cb, func() (string, error) {
		return "never", nil
	})
	if err == nil {
		t.Fatal("expected fail-fast error while open")
	}
	if result != "" {
		t.Errorf("result = %q, want zero value", result)
	}
}

func TestCircuitBreakerOnStateChange(t *testing.T) {
	type transition struct{ from, to State }
	var got []transition

	cfg := testBreakerConfig("openai")
	cfg.OnStateChange = func(name string, from, to State) {
		if name != "openai" {
			t.Errorf("name = %q, want openai", name)
		}
		got = append(got, transition{from, to})
	}

	cb := NewCircuitBreaker(cfg)
	cb.Execute(serviceDown)
	cb.Execute(serviceDown)
	time.Sleep(25 * time.Millisecond)
	cb.Execute(func() error { return nil })

	want := []transition{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if len(got) != len(want) {
		t.Fatalf("transitions = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("transition[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCircuitBreakerReset(t *testing.T) {
	cb := NewCircuitBreaker(testBreakerConfig("openai"))
	cb.Execute(serviceDown)
	cb.Execute(serviceDown)

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed after reset", cb.State())
	}
	if cb.Failures() != 0 {
		t.Errorf("failures = %d, want 0 after reset", cb.Failures())
	}

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Errorf("call after reset failed: %v", err)
	}
}

func TestCircuitBreakerConcurrent(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("openai")
	cfg.FailureThreshold = 1000
	cb := NewCircuitBreaker(cfg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if (n+j)%2 == 0 {
					cb.Execute(func() error { return nil })
				} else {
					cb.Execute(serviceDown)
				}
			}
		}(i)
	}
	wg.Wait()

	if cb.State() != StateClosed {
		t.Errorf("state = %v, want closed below threshold", cb.State())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
