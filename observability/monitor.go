package observability

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/postsync/faultkit/logger"
)

// MetricType identifies how a tracked value should be recorded.
type MetricType string

const (
	// MetricCounter is a monotonically increasing count.
	MetricCounter MetricType = "counter"
	// MetricGauge is a point-in-time value.
	MetricGauge MetricType = "gauge"
	// MetricHistogram records a value distribution.
	MetricHistogram MetricType = "histogram"
	// MetricRate counts occurrences; the rate itself is derived by the
	// metrics backend from the counter over time.
	MetricRate MetricType = "rate"
)

// AlertSeverity ranks alerts for routing.
type AlertSeverity string

const (
	AlertInfo     AlertSeverity = "info"
	AlertWarning  AlertSeverity = "warning"
	AlertError    AlertSeverity = "error"
	AlertCritical AlertSeverity = "critical"
)

// Alert is a named condition worth paging or notifying on. Metric, Value
// and Threshold are optional and describe the measurement that tripped the
// alert.
type Alert struct {
	Name      string
	Severity  AlertSeverity
	Message   string
	Metric    string
	Value     float64
	Threshold float64
	Labels    map[string]string
	Timestamp time.Time
}

// ErrorMonitor records error metrics and alerts through OpenTelemetry.
// Instruments are created lazily on first use and cached by name, so
// callers can track ad hoc metric names without pre-registration.
//
// All methods are fire and forget: instrument creation or recording
// failures are logged and swallowed, never surfaced to the caller. Error
// reporting must not itself become an error source.
type ErrorMonitor struct {
	meter metric.Meter
	log   *logger.Logger

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	gauges     map[string]metric.Float64Gauge
	histograms map[string]metric.Float64Histogram
	alertTotal metric.Int64Counter
}

// NewErrorMonitor creates a monitor recording on the given meter.
func NewErrorMonitor(meter metric.Meter) *ErrorMonitor {
	return &ErrorMonitor{
		meter:      meter,
		log:        logger.Get("observability"),
		counters:   make(map[string]metric.Float64Counter),
		gauges:     make(map[string]metric.Float64Gauge),
		histograms: make(map[string]metric.Float64Histogram),
	}
}

// TrackMetric records one metric sample. Rate metrics share the counter
// instrument; the backend derives the rate.
func (m *ErrorMonitor) TrackMetric(ctx context.Context, name string, value float64, metricType MetricType, labels map[string]string, description string) {
	attrs := metric.WithAttributes(labelAttributes(labels)...)

	switch metricType {
	case MetricCounter, MetricRate:
		c, err := m.counter(name, description)
		if err != nil {
			m.logInstrumentError(name, err)
			return
		}
		c.Add(ctx, value, attrs)
	case MetricGauge:
		g, err := m.gauge(name, description)
		if err != nil {
			m.logInstrumentError(name, err)
			return
		}
		g.Record(ctx, value, attrs)
	case MetricHistogram:
		h, err := m.histogram(name, description)
		if err != nil {
			m.logInstrumentError(name, err)
			return
		}
		h.Record(ctx, value, attrs)
	default:
		m.log.Warn("unknown metric type", logger.Fields(
			"metric", name,
			"type", string(metricType),
		))
	}
}

// TriggerAlert logs the alert and counts it in alerts_total. Routing to a
// pager or chat integration is left to the metrics backend's alerting
// rules.
func (m *ErrorMonitor) TriggerAlert(ctx context.Context, alert Alert) {
	if alert.Timestamp.IsZero() {
		alert.Timestamp = time.Now().UTC()
	}

	fields := logger.Fields(
		"alert", alert.Name,
		"alert_severity", string(alert.Severity),
	)
	if alert.Metric != "" {
		fields["metric"] = alert.Metric
		fields["value"] = alert.Value
		fields["threshold"] = alert.Threshold
	}
	for k, v := range alert.Labels {
		fields[k] = v
	}

	switch alert.Severity {
	case AlertCritical, AlertError:
		m.log.Error(alert.Message, fields)
	default:
		m.log.Warn(alert.Message, fields)
	}

	counter, err := m.alertCounter()
	if err != nil {
		m.logInstrumentError("alerts_total", err)
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("alert", alert.Name),
		attribute.String("severity", string(alert.Severity)),
	))
}

func (m *ErrorMonitor) counter(name, description string) (metric.Float64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[name]; ok {
		return c, nil
	}
	c, err := m.meter.Float64Counter(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	m.counters[name] = c
	return c, nil
}

func (m *ErrorMonitor) gauge(name, description string) (metric.Float64Gauge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.gauges[name]; ok {
		return g, nil
	}
	g, err := m.meter.Float64Gauge(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	m.gauges[name] = g
	return g, nil
}

func (m *ErrorMonitor) histogram(name, description string) (metric.Float64Histogram, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if h, ok := m.histograms[name]; ok {
		return h, nil
	}
	h, err := m.meter.Float64Histogram(name, metric.WithDescription(description))
	if err != nil {
		return nil, err
	}
	m.histograms[name] = h
	return h, nil
}

func (m *ErrorMonitor) alertCounter() (metric.Int64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.alertTotal != nil {
		return m.alertTotal, nil
	}
	c, err := m.meter.Int64Counter("alerts_total",
		metric.WithDescription("Total alerts triggered"))
	if err != nil {
		return nil, err
	}
	m.alertTotal = c
	return c, nil
}

func (m *ErrorMonitor) logInstrumentError(name string, err error) {
	m.log.Warn("creating metric instrument failed", logger.Fields(
		"metric", name,
		logger.FieldError, err.Error(),
	))
}

func labelAttributes(labels map[string]string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for k, v := range labels {
		attrs = append(attrs, attribute.String(k, v))
	}
	return attrs
}
