package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced unit of work such as a login.
type Operation struct {
	span  trace.Span
	start time.Time
}

// StartOperation opens a span named name and returns the derived context.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name, trace.WithAttributes(attrs...))
	return ctx, &Operation{span: span, start: time.Now()}
}

// SetAttributes adds attributes to the operation span.
func (o *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	o.span.SetAttributes(attrs...)
}

// End closes the span with the outcome. A non-nil err marks the span as failed;
// only its message is recorded, never request payloads.
func (o *Operation) End(outcome string, err error) {
	o.span.SetAttributes(attribute.String(AttrOutcome, outcome))
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, outcome)
	} else {
		o.span.SetStatus(codes.Ok, "")
	}
	o.span.End()
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.start)
}
