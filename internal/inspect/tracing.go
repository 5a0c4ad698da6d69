package inspect

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanPrefix namespaces inspector spans
const SpanPrefix = "inspect."

// startSpan opens a span for one inspector operation
func (i *Inspector) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	ctx, span := i.tracer.Start(ctx, SpanPrefix+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, span, time.Now()
}

// finish records the outcome of an operation on its span and metrics
func (i *Inspector) finish(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	duration := time.Since(start)
	span.SetAttributes(attribute.Float64("inspect.duration_seconds", duration.Seconds()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	i.metrics.RecordOperation(ctx, operation, duration, err)
}
