package handler

import (
	"context"

	apperrors "github.com/postsync/faultkit/errors"
	"github.com/postsync/faultkit/resilience"
)

// Wrap decorates an operation so that any escaping error is reported
// through the handler before the caller sees it. The error is re-raised
// unchanged; only the reporting side effects happen here. Stack this as
// the outermost layer, outside the circuit breaker:
//
//	op := handler.Wrap(h, "openai", "generate_content", handler.StrategyFallbackService,
//	    resilience.Protect(reg, "openai", retryCfg, rawOp))
func Wrap[T any](h *Handler, service, operation string, strategy Strategy, op resilience.Operation[T]) resilience.Operation[T] {
	return func(ctx context.Context) (T, error) {
		result, err := op(ctx)
		if err != nil {
			h.HandleError(ctx, err, apperrors.NewContext(service, operation), strategy)
		}
		return result, err
	}
}
