package validation

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	apperrors "github.com/postsync/faultkit/errors"
)

type retryInput struct {
	MaxAttempts int     `mapstructure:"max_attempts" validate:"required,min=1"`
	Base        float64 `mapstructure:"exponential_base" validate:"gt=0"`
	Strategy    string  `mapstructure:"strategy" validate:"omitempty,oneof=retry_with_backoff fallback_service graceful_degradation"`
}

func TestValidateStructPasses(t *testing.T) {
	err := Validate(retryInput{MaxAttempts: 3, Base: 2.0})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateStructFails(t *testing.T) {
	err := Validate(retryInput{MaxAttempts: 0, Base: 0, Strategy: "give_up"})
	if err == nil {
		t.Fatal("expected a ValidationError")
	}

	var ve *apperrors.ValidationError
	if !stderrors.As(err, &ve) {
		t.Fatalf("err = %T, want ValidationError", err)
	}
	if ve.Field != "max_attempts" {
		t.Errorf("field = %q, want max_attempts", ve.Field)
	}
	if !strings.Contains(ve.Message, "max_attempts is required") {
		t.Errorf("message %q should name max_attempts", ve.Message)
	}
	if !strings.Contains(ve.Message, "strategy must be one of") {
		t.Errorf("message %q should name the strategy failure", ve.Message)
	}
}

func TestValidatorCollectsErrors(t *testing.T) {
	v := New()
	v.Required("title", "")
	v.MinLength("body", "hi", 10)
	v.Range("priority", 9, 1, 5)

	err := v.Error()
	if err == nil {
		t.Fatal("expected a ValidationError")
	}

	var ve *apperrors.ValidationError
	if !stderrors.As(err, &ve) {
		t.Fatalf("err = %T, want ValidationError", err)
	}
	if ve.Field != "title" {
		t.Errorf("field = %q, want the first failing field", ve.Field)
	}
	for _, want := range []string{"title is required", "body must be at least 10", "priority must be between 1 and 5"} {
		if !strings.Contains(ve.Message, want) {
			t.Errorf("message %q missing %q", ve.Message, want)
		}
	}
}

func TestValidatorPasses(t *testing.T) {
	v := New()
	v.Required("title", "hello")
	v.OneOf("strategy", "fallback_service", []string{"retry_with_backoff", "fallback_service"})
	v.Custom(true, "anything", "never fails")

	if err := v.Error(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateUUID(t *testing.T) {
	want := uuid.New()
	got, err := ValidateUUID("request_id", want.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("uuid = %v, want %v", got, want)
	}

	if _, err := ValidateUUID("request_id", ""); err == nil {
		t.Error("empty value should fail")
	}
	if _, err := ValidateUUID("request_id", "not-a-uuid"); err == nil {
		t.Error("malformed value should fail")
	}
}

func TestRequiredUUID(t *testing.T) {
	v := New()
	v.RequiredUUID("request_id", uuid.Nil.String())
	if v.Error() == nil {
		t.Error("nil UUID should fail")
	}
}
