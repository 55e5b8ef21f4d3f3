// Package observability provides OpenTelemetry tracing and metrics for the
// transcript processing pipeline.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("murmur"))
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribe)
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("murmur"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("murmur"))
//	metrics.RecordStage(ctx, "transcribe", "ok", duration)
//
// Health checks roll up the component registry:
//
//	health := observability.CollectHealth(ctx, "murmur", "1.0.0", registry)
package observability
