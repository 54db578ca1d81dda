package observability

import (
	"context"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDefaultTracerConfig(t *testing.T) {
	cfg := DefaultTracerConfig("postsync")

	if cfg.ServiceName != "postsync" {
		t.Errorf("expected ServiceName 'postsync', got %s", cfg.ServiceName)
	}
	if cfg.Endpoint != "localhost:4318" {
		t.Errorf("expected Endpoint 'localhost:4318', got %s", cfg.Endpoint)
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("expected SampleRate 1.0, got %f", cfg.SampleRate)
	}
	if !cfg.Insecure {
		t.Error("expected Insecure to be true")
	}
}

func TestDefaultMeterConfig(t *testing.T) {
	cfg := DefaultMeterConfig("postsync")

	if cfg.ServiceName != "postsync" {
		t.Errorf("expected ServiceName 'postsync', got %s", cfg.ServiceName)
	}
	if cfg.Interval != 15*time.Second {
		t.Errorf("expected Interval 15s, got %v", cfg.Interval)
	}
}

func TestErrorMonitorTrackMetric(t *testing.T) {
	monitor := NewErrorMonitor(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()
	labels := map[string]string{"category": "rate_limit", "service": "openai"}

	monitor.TrackMetric(ctx, "errors_total", 1, MetricCounter, labels, "Total errors handled")
	monitor.TrackMetric(ctx, "error_rate", 1, MetricRate, labels, "Error rate")
	monitor.TrackMetric(ctx, "queue_depth", 12, MetricGauge, nil, "Pending posts")
	monitor.TrackMetric(ctx, "publish_duration", 0.25, MetricHistogram, labels, "Publish latency")

	// Unknown types are logged and dropped, never panic.
	monitor.TrackMetric(ctx, "bogus", 1, MetricType("summary"), nil, "")
}

func TestErrorMonitorReusesInstruments(t *testing.T) {
	monitor := NewErrorMonitor(noop.NewMeterProvider().Meter("test"))
	ctx := context.Background()

	monitor.TrackMetric(ctx, "errors_total", 1, MetricCounter, nil, "Total errors")
	monitor.TrackMetric(ctx, "errors_total", 1, MetricCounter, nil, "Total errors")

	if len(monitor.counters) != 1 {
		t.Errorf("counters cached = %d, want 1", len(monitor.counters))
	}
}

func TestErrorMonitorTriggerAlert(t *testing.T) {
	monitor := NewErrorMonitor(noop.NewMeterProvider().Meter("test"))

	monitor.TriggerAlert(context.Background(), Alert{
		Name:     "critical_error",
		Severity: AlertCritical,
		Message:  "openai is down",
		Labels:   map[string]string{"service": "openai"},
	})
	monitor.TriggerAlert(context.Background(), Alert{
		Name:     "rate_limited",
		Severity: AlertWarning,
		Message:  "reddit throttling requests",
	})
}

func TestStartSpanRecordsAttributes(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	ctx, span := tp.Tracer("test").Start(context.Background(), "content.generate")
	SetSpanAttribute(ctx, "service.name", "openai")
	SetSpanAttribute(ctx, "attempt", 2)
	SetSpanError(ctx, context.DeadlineExceeded)
	span.End()

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("spans recorded = %d, want 1", len(spans))
	}
	got := spans[0]
	if got.Name() != "content.generate" {
		t.Errorf("span name = %q, want content.generate", got.Name())
	}
	if len(got.Events()) == 0 {
		t.Error("expected an error event on the span")
	}

	found := false
	for _, attr := range got.Attributes() {
		if string(attr.Key) == "service.name" && attr.Value.AsString() == "openai" {
			found = true
		}
	}
	if !found {
		t.Error("expected service.name attribute on the span")
	}
}

func TestSetSpanErrorWithoutSpan(t *testing.T) {
	// Must not panic when the context carries no recording span.
	SetSpanError(context.Background(), context.Canceled)
	SetSpanAttribute(context.Background(), "key", "value")
}

func TestNewServiceHealth(t *testing.T) {
	sh := NewServiceHealth("postsync", "1.0.0")

	if sh.Service != "postsync" {
		t.Errorf("service = %q, want postsync", sh.Service)
	}
	if sh.Status != HealthStatusUp {
		t.Errorf("status = %v, want up", sh.Status)
	}
	if !sh.Healthy() {
		t.Error("fresh service health should be healthy")
	}
}

func TestServiceHealthAggregation(t *testing.T) {
	sh := NewServiceHealth("postsync", "1.0.0")

	sh.AddComponent(Health{Name: "scheduler", Status: HealthStatusUp})
	if sh.Status != HealthStatusUp {
		t.Errorf("status = %v, want up", sh.Status)
	}

	sh.AddComponent(Health{Name: "circuit_breakers", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDegraded {
		t.Errorf("status = %v, want degraded", sh.Status)
	}

	sh.AddComponent(Health{Name: "database", Status: HealthStatusDown})
	if sh.Status != HealthStatusDown {
		t.Errorf("status = %v, want down", sh.Status)
	}

	// A later degraded component must not mask a down service.
	sh.AddComponent(Health{Name: "cache", Status: HealthStatusDegraded})
	if sh.Status != HealthStatusDown {
		t.Errorf("status = %v, want down", sh.Status)
	}
	if sh.Healthy() {
		t.Error("down service should not report healthy")
	}
}
