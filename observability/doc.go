// Package observability provides OpenTelemetry tracing and metrics plus the
// error monitor that the handler layer reports into.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("postsync"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "content.generate")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("postsync"))
//	defer mp.Shutdown(ctx)
//
//	monitor := observability.NewErrorMonitor(observability.Meter("postsync"))
//	monitor.TrackMetric(ctx, "errors_total", 1, observability.MetricCounter,
//	    map[string]string{"category": "rate_limit"}, "Total errors handled")
//
// Health:
//
//	health := observability.NewServiceHealth("postsync", "1.0.0")
//	health.AddComponent(registry.CheckHealth(ctx))
package observability
