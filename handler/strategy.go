package handler

import (
	"context"

	apperrors "github.com/postsync/faultkit/errors"
)

// Strategy names a recovery hook. The handler defines the dispatch
// contract only; implementations are registered by the application.
type Strategy string

const (
	// StrategyRetryWithBackoff re-runs the failed operation later.
	StrategyRetryWithBackoff Strategy = "retry_with_backoff"
	// StrategyFallbackService routes the work to an alternate provider.
	StrategyFallbackService Strategy = "fallback_service"
	// StrategyGracefulDegradation returns a reduced but usable result.
	StrategyGracefulDegradation Strategy = "graceful_degradation"
)

// StrategyFunc attempts recovery from a classified error. The returned
// value becomes HandleError's result. An error here means recovery itself
// failed; it is logged and discarded, never propagated.
type StrategyFunc func(ctx context.Context, err apperrors.Classified) (any, error)
