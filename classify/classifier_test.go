package classify

import (
	stderrors "errors"
	"fmt"
	"testing"

	apperrors "github.com/postsync/faultkit/errors"
)

func TestClassify_NilError(t *testing.T) {
	c := New()
	if got := c.Classify(nil, apperrors.NewContext("reddit", "fetch")); got != nil {
		t.Errorf("expected nil for nil error, got %v", got)
	}
}

func TestClassify_AlreadyClassifiedReturnedUnchanged(t *testing.T) {
	c := New()
	original := apperrors.NewRateLimit("quota", 0)

	got := c.Classify(original, apperrors.NewContext("openai", "complete"))
	if got != apperrors.Classified(original) {
		t.Error("expected the same instance back, not a re-wrap")
	}
	if got.Base() != original.Base() {
		t.Error("expected identical base error")
	}
}

func TestClassify_GenericRateLimit(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("unknown_service", "call")

	got := c.Classify(fmt.Errorf("Rate limit exceeded, try later"), ctx)

	rl, ok := got.(*apperrors.APIRateLimitError)
	if !ok {
		t.Fatalf("expected *APIRateLimitError, got %T", got)
	}
	if rl.Base().Category != apperrors.CategoryRateLimit {
		t.Errorf("expected rate_limit category, got %s", rl.Base().Category)
	}
}

func TestClassify_GenericAuthentication(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("unknown_service", "call")

	got := c.Classify(fmt.Errorf("401 Unauthorized"), ctx)

	if _, ok := got.(*apperrors.AuthenticationError); !ok {
		t.Fatalf("expected *AuthenticationError, got %T", got)
	}
	if got.Base().Recoverable {
		t.Error("authentication errors should not be recoverable")
	}
}

func TestClassify_GenericNetwork(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("reddit", "fetch_posts")

	got := c.Classify(fmt.Errorf("dial tcp: connection refused"), ctx)

	es, ok := got.(*apperrors.ExternalServiceError)
	if !ok {
		t.Fatalf("expected *ExternalServiceError, got %T", got)
	}
	if es.ServiceName != "reddit" {
		t.Errorf("expected service name from context, got %s", es.ServiceName)
	}
}

func TestClassify_FallbackIsSystem(t *testing.T) {
	c := New()
	cause := fmt.Errorf("entirely novel failure")
	ctx := apperrors.NewContext("scheduler", "run")

	got := c.Classify(cause, ctx)

	if got.Base().Category != apperrors.CategorySystem {
		t.Errorf("expected system category, got %s", got.Base().Category)
	}
	if !stderrors.Is(got, cause) {
		t.Error("expected original cause preserved in the chain")
	}
	if got.Base().Context == nil || got.Base().Context.Service != "scheduler" {
		t.Error("expected context attached to fallback classification")
	}
}

func TestClassify_ServiceRules(t *testing.T) {
	c := New()

	tests := []struct {
		service string
		message string
		want    string
	}{
		{"openai", "rate limit reached for gpt-4", "*errors.APIRateLimitError"},
		{"openai", "maximum context length exceeded", "*errors.ValidationError"},
		{"google", "quota exceeded for quota metric", "*errors.APIRateLimitError"},
		{"google", "response blocked by safety settings", "*errors.ContentGenerationError"},
		{"reddit", "received 429 from api", "*errors.APIRateLimitError"},
		{"linkedin", "request throttled", "*errors.APIRateLimitError"},
		{"twitter", "rate limit exceeded", "*errors.APIRateLimitError"},
	}

	for _, tt := range tests {
		ctx := apperrors.NewContext(tt.service, "op")
		got := c.Classify(fmt.Errorf("%s", tt.message), ctx)
		if typeName := fmt.Sprintf("%T", got); typeName != tt.want {
			t.Errorf("%s %q: expected %s, got %s", tt.service, tt.message, tt.want, typeName)
		}
	}
}

func TestClassify_OpenAIValidationField(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("openai", "complete")

	got := c.Classify(fmt.Errorf("token limit exceeded"), ctx)

	ve, ok := got.(*apperrors.ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", got)
	}
	if ve.Field != "prompt_length" {
		t.Errorf("expected field prompt_length, got %s", ve.Field)
	}
}

func TestClassify_ServiceRuleFallsThroughToGeneric(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("openai", "complete")

	// No openai-specific match, but generic network rule applies.
	got := c.Classify(fmt.Errorf("request timeout"), ctx)

	if _, ok := got.(*apperrors.ExternalServiceError); !ok {
		t.Fatalf("expected *ExternalServiceError, got %T", got)
	}
}

func TestRegister_CustomRule(t *testing.T) {
	c := New()
	c.Register("mastodon", func(err error, ctx apperrors.Context) apperrors.Classified {
		return apperrors.NewExternalService(err.Error(), "mastodon")
	})

	got := c.Classify(fmt.Errorf("boost failed"), apperrors.NewContext("mastodon", "boost"))
	es, ok := got.(*apperrors.ExternalServiceError)
	if !ok {
		t.Fatalf("expected *ExternalServiceError, got %T", got)
	}
	if es.ServiceName != "mastodon" {
		t.Errorf("expected mastodon, got %s", es.ServiceName)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	c := New()
	ctx := apperrors.NewContext("other", "op")

	got := c.Classify(fmt.Errorf("TOO MANY REQUESTS"), ctx)
	if _, ok := got.(*apperrors.APIRateLimitError); !ok {
		t.Fatalf("expected *APIRateLimitError, got %T", got)
	}
}
