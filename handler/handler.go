package handler

import (
	"context"
	"sync"

	"github.com/postsync/faultkit/classify"
	apperrors "github.com/postsync/faultkit/errors"
	"github.com/postsync/faultkit/logger"
	"github.com/postsync/faultkit/observability"
)

// Sink receives the metrics and alerts the handler emits.
// observability.ErrorMonitor satisfies it; tests substitute a capture.
type Sink interface {
	TrackMetric(ctx context.Context, name string, value float64, metricType observability.MetricType, labels map[string]string, description string)
	TriggerAlert(ctx context.Context, alert observability.Alert)
}

// Handler classifies, logs and reports escaped errors.
type Handler struct {
	classifier *classify.Classifier
	log        *logger.Logger
	sink       Sink

	mu         sync.RWMutex
	strategies map[Strategy]StrategyFunc
}

// Option configures a Handler.
type Option func(*Handler)

// WithClassifier replaces the default classifier.
func WithClassifier(c *classify.Classifier) Option {
	return func(h *Handler) { h.classifier = c }
}

// WithLogger replaces the default logger.
func WithLogger(log *logger.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithSink sets the metrics and alert sink. Without one, metric emission
// is skipped.
func WithSink(sink Sink) Option {
	return func(h *Handler) { h.sink = sink }
}

// New creates a Handler with a default classifier and logger.
func New(opts ...Option) *Handler {
	h := &Handler{
		classifier: classify.New(),
		log:        logger.Get("handler"),
		strategies: make(map[Strategy]StrategyFunc),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterStrategy installs the implementation behind a strategy name.
func (h *Handler) RegisterStrategy(name Strategy, fn StrategyFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.strategies[name] = fn
}

// HandleError processes an escaped error: classify, log, emit metrics and
// alerts, and dispatch recovery if the error is recoverable and a strategy
// was named. It returns the recovery result, or nil when no recovery ran.
//
// HandleError never panics and never returns an error. Any failure inside
// it is logged and swallowed so the caller's own error path stays intact.
func (h *Handler) HandleError(ctx context.Context, err error, errctx apperrors.Context, strategy Strategy) (result any) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("panic while handling error", logger.Fields(
				"panic", r,
				logger.FieldService, errctx.Service,
				logger.FieldOperation, errctx.Operation,
			))
			result = nil
		}
	}()

	if err == nil {
		return nil
	}

	cerr := h.classifier.Classify(err, errctx)
	base := cerr.Base()

	h.logError(base, errctx)
	h.emitMetrics(ctx, base, errctx)
	observability.SetSpanError(ctx, cerr)

	if base.Recoverable && strategy != "" {
		return h.recover(ctx, cerr, strategy)
	}
	return nil
}

// logError writes the classified error at a level derived from severity.
// Critical errors log at error level; the error_severity field is what
// alerting keys on.
func (h *Handler) logError(base *apperrors.AppError, errctx apperrors.Context) {
	fields := logger.Fields(
		logger.FieldCategory, string(base.Category),
		logger.FieldSeverity, string(base.Severity),
		logger.FieldRecoverable, base.Recoverable,
		logger.FieldError, base.Error(),
	)
	for k, v := range errctx.Fields() {
		fields[k] = v
	}

	switch base.Severity.LogLevel() {
	case "error":
		h.log.Error(base.Message, fields)
	case "warn":
		h.log.Warn(base.Message, fields)
	default:
		h.log.Info(base.Message, fields)
	}
}

func (h *Handler) emitMetrics(ctx context.Context, base *apperrors.AppError, errctx apperrors.Context) {
	if h.sink == nil {
		return
	}

	labels := map[string]string{
		"category": string(base.Category),
		"severity": string(base.Severity),
		"service":  errctx.Service,
	}
	h.sink.TrackMetric(ctx, "errors_total", 1, observability.MetricCounter,
		labels, "Total errors handled")
	h.sink.TrackMetric(ctx, "error_rate", 1, observability.MetricRate,
		labels, "Error rate by category, severity and service")

	if base.Severity == apperrors.SeverityCritical {
		h.sink.TriggerAlert(ctx, observability.Alert{
			Name:     "critical_error",
			Severity: observability.AlertCritical,
			Message:  base.Message,
			Metric:   "errors_total",
			Value:    1,
			Labels:   labels,
		})
	}
}

// recover dispatches to the named strategy. Strategy failures are logged
// and reported as nil; recovery must never add a second error to the
// caller's plate.
func (h *Handler) recover(ctx context.Context, cerr apperrors.Classified, strategy Strategy) any {
	h.mu.RLock()
	fn, ok := h.strategies[strategy]
	h.mu.RUnlock()

	if !ok || fn == nil {
		h.log.Warn("no implementation registered for recovery strategy", logger.Fields(
			"strategy", string(strategy),
		))
		return nil
	}

	result, err := fn(ctx, cerr)
	if err != nil {
		h.log.Warn("recovery strategy failed", logger.Fields(
			"strategy", string(strategy),
			logger.FieldError, err.Error(),
		))
		return nil
	}
	return result
}
