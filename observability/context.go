package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// StageContext holds observability context for one pipeline stage execution.
type StageContext struct {
	ServiceName string
	Stage       string
	EntryID     string
	JobID       string
	StartTime   time.Time
	Metrics     *Metrics
}

// NewStageContext creates a stage context for the given pipeline stage.
// If metrics is nil, metric recording is silently skipped.
func NewStageContext(serviceName, stage, entryID, jobID string, metrics *Metrics) *StageContext {
	return &StageContext{
		ServiceName: serviceName,
		Stage:       stage,
		EntryID:     entryID,
		JobID:       jobID,
		StartTime:   time.Now(),
		Metrics:     metrics,
	}
}

// stageContextKey is the context key for StageContext.
type stageContextKey struct{}

// WithStageContext stores a StageContext in the context.
func WithStageContext(ctx context.Context, sc *StageContext) context.Context {
	return context.WithValue(ctx, stageContextKey{}, sc)
}

// StageContextFromContext retrieves the StageContext from context, or nil.
func StageContextFromContext(ctx context.Context) *StageContext {
	if sc, ok := ctx.Value(stageContextKey{}).(*StageContext); ok {
		return sc
	}
	return nil
}

// StartStageSpan starts a traced span annotated with the stage identity.
func (sc *StageContext) StartStageSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	ctx, span := StartSpan(ctx, spanName)
	span.SetAttributes(
		attribute.String(AttrServiceName, sc.ServiceName),
		attribute.String(AttrStage, sc.Stage),
		attribute.String(AttrEntryID, sc.EntryID),
	)
	if sc.JobID != "" {
		span.SetAttributes(attribute.String(AttrJobID, sc.JobID))
	}
	return ctx, span
}

// EndStage ends the span and records stage metrics.
func (sc *StageContext) EndStage(ctx context.Context, span trace.Span, status string, err error) {
	duration := time.Since(sc.StartTime)

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	span.End()

	if sc.Metrics != nil {
		sc.Metrics.RecordStage(ctx, sc.Stage, status, duration)
	}
}

// Duration returns the elapsed time since the stage started.
func (sc *StageContext) Duration() time.Duration {
	return time.Since(sc.StartTime)
}
