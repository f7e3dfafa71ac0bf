// Package telemetry wraps OpenTelemetry tracing and latency metrics for the repository operations.
// Spans and measurements go to the globally registered providers, so nothing is exported unless
// the application installs an SDK.
package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

//nolint:gochecknoglobals // OpenTelemetry attribute keys must be global for reuse
var (
	AttrPackageKey   = attribute.Key("i18n_package")
	AttrOperationKey = attribute.Key("i18n_operation")
	AttrStatusKey    = attribute.Key("i18n_status")
	AttrTableKey     = attribute.Key("i18n_table")
)

type contextKey string

const (
	startTimeContextKey contextKey = "spanStartTimeCtxKey"
	operationContextKey contextKey = "operationCtxKey"
)

type tracer struct {
	name           string
	tracer         trace.Tracer
	latencyMeasure metric.Float64Histogram
}

// NewTracer creates a tracer named after the instrumented package.
func NewTracer(name string, options ...trace.TracerOption) Tracer {
	return &tracer{
		name:           name,
		tracer:         otel.Tracer(name, options...),
		latencyMeasure: LatencyMeasure(name),
	}
}

// Start creates a span for operation. The caller ends it with End.
//
//nolint:spancheck // spans are returned to the caller, which ends them
func (t *tracer) Start(
	ctx context.Context,
	operation string,
	options ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	options = append(options, trace.WithAttributes(AttrOperationKey.String(operation)))

	sCtx, span := t.tracer.Start(ctx, t.name+"/"+operation, options...)
	sCtx = context.WithValue(sCtx, startTimeContextKey, time.Now())
	return context.WithValue(sCtx, operationContextKey, operation), span
}

// End completes span, marking it failed when err is set, and records the operation latency.
func (t *tracer) End(ctx context.Context, span trace.Span, err error, options ...trace.SpanEndOption) {
	if err != nil {
		options = append(options, trace.WithStackTrace(true))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(options...)

	startTime, ok := ctx.Value(startTimeContextKey).(time.Time)
	if !ok {
		return
	}

	operation, _ := ctx.Value(operationContextKey).(string)
	t.latencyMeasure.Record(ctx, float64(time.Since(startTime).Milliseconds()),
		metric.WithAttributes(
			AttrStatusKey.String(ErrorCode(err)),
			AttrOperationKey.String(operation)))
}

// ErrorCode classifies err for the status attribute.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline exceeded"
	default:
		return "err"
	}
}
