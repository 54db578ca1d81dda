// Package classify maps arbitrary raised errors into the faultkit taxonomy.
// Classification is keyword-based: each service registers a rule that sniffs
// the error message, with a generic fallback for everything else. It is
// fragile by nature; collaborators that can raise pre-typed taxonomy errors
// should do so and skip classification entirely.
package classify

import (
	"fmt"
	"strings"
	"sync"

	apperrors "github.com/postsync/faultkit/errors"
)

// Rule inspects a raw error in the context of one service and returns a
// typed taxonomy error, or nil when the rule does not apply.
type Rule func(err error, ctx apperrors.Context) apperrors.Classified

// Classifier turns raw errors into taxonomy errors using per-service rules
// and generic fallbacks. The zero value is not usable; call New.
type Classifier struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

// New creates a Classifier with rules for the services the platform talks
// to: openai, google, reddit, linkedin and twitter.
func New() *Classifier {
	c := &Classifier{rules: make(map[string]Rule)}
	c.Register("openai", classifyOpenAI)
	c.Register("google", classifyGoogle)
	c.Register("reddit", classifyReddit)
	c.Register("linkedin", classifyLinkedIn)
	c.Register("twitter", classifyTwitter)
	return c
}

// Register installs or replaces the rule for a service.
func (c *Classifier) Register(service string, rule Rule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules[service] = rule
}

// Classify maps err into the taxonomy. Already-classified errors are
// returned unchanged. Classification is pure and never panics; a nil error
// classifies to nil.
func (c *Classifier) Classify(err error, ctx apperrors.Context) apperrors.Classified {
	if err == nil {
		return nil
	}

	if classified, ok := err.(apperrors.Classified); ok {
		return classified
	}

	c.mu.RLock()
	rule := c.rules[ctx.Service]
	c.mu.RUnlock()

	if rule != nil {
		if classified := rule(err, ctx); classified != nil {
			return classified
		}
	}

	msg := strings.ToLower(err.Error())

	if containsAny(msg, "rate limit", "quota", "too many requests") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("Rate limit exceeded: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}

	if containsAny(msg, "unauthorized", "forbidden", "invalid token", "auth") {
		return apperrors.NewAuthentication(
			fmt.Sprintf("Authentication error: %v", err),
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}

	if containsAny(msg, "connection", "timeout", "network", "dns") {
		return apperrors.NewExternalService(
			fmt.Sprintf("Network error: %v", err), ctx.Service,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}

	return apperrors.New(err.Error(), apperrors.WithContext(ctx), apperrors.WithCause(err))
}

func classifyOpenAI(err error, ctx apperrors.Context) apperrors.Classified {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "rate limit") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("OpenAI rate limit: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	if containsAny(msg, "context length", "token limit") {
		return apperrors.NewValidation(
			fmt.Sprintf("OpenAI input too long: %v", err), "prompt_length",
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	return nil
}

func classifyGoogle(err error, ctx apperrors.Context) apperrors.Classified {
	msg := strings.ToLower(err.Error())

	if containsAny(msg, "quota", "rate limit") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("Google API quota exceeded: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	if containsAny(msg, "safety", "blocked") {
		return apperrors.NewContentGeneration(
			fmt.Sprintf("Content blocked by safety filter: %v", err),
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	return nil
}

func classifyReddit(err error, ctx apperrors.Context) apperrors.Classified {
	msg := strings.ToLower(err.Error())

	if containsAny(msg, "429", "rate limit") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("Reddit rate limit: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	return nil
}

func classifyLinkedIn(err error, ctx apperrors.Context) apperrors.Classified {
	msg := strings.ToLower(err.Error())

	if containsAny(msg, "throttle", "rate limit") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("LinkedIn rate limit: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	return nil
}

func classifyTwitter(err error, ctx apperrors.Context) apperrors.Classified {
	msg := strings.ToLower(err.Error())

	if containsAny(msg, "rate limit", "429") {
		return apperrors.NewRateLimit(
			fmt.Sprintf("Twitter rate limit: %v", err), 0,
			apperrors.WithContext(ctx), apperrors.WithCause(err),
		)
	}
	return nil
}

func containsAny(s string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}
