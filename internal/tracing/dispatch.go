// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used for courier spans.
const InstrumentationName = "github.com/tombee/courier"

// Tracer returns the courier tracer from the global provider. Without an
// installed SDK this is a no-op tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// DispatchSpan wraps an OpenTelemetry span covering one plugin dispatch.
type DispatchSpan struct {
	span trace.Span
}

// StartDispatch creates a span for delivering event to plugin.
func StartDispatch(ctx context.Context, tracer trace.Tracer, plugin, event string) (context.Context, *DispatchSpan) {
	if tracer == nil {
		tracer = Tracer()
	}
	attrs := []attribute.KeyValue{
		attribute.String("courier.plugin", plugin),
		attribute.String("courier.event", event),
	}
	if id := FromContextOrEmpty(ctx); id != "" {
		attrs = append(attrs, attribute.String("courier.correlation_id", id.String()))
	}

	ctx, span := tracer.Start(ctx, fmt.Sprintf("dispatch %s/%s", plugin, event),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &DispatchSpan{span: span}
}

// SetState records the final dispatch state on the span.
func (d *DispatchSpan) SetState(state string) {
	if d == nil || d.span == nil {
		return
	}
	d.span.SetAttributes(attribute.String("courier.state", state))
}

// Succeed marks the span as successful.
func (d *DispatchSpan) Succeed() {
	if d == nil || d.span == nil {
		return
	}
	d.span.SetStatus(codes.Ok, "")
}

// Fail records err and marks the span as failed with the given kind.
func (d *DispatchSpan) Fail(kind string, err error) {
	if d == nil || d.span == nil || err == nil {
		return
	}
	d.span.SetAttributes(attribute.String("courier.failure_kind", kind))
	d.span.RecordError(err)
	d.span.SetStatus(codes.Error, kind)
}

// End marks the span as complete.
func (d *DispatchSpan) End() {
	if d == nil || d.span == nil {
		return
	}
	d.span.End()
}

// TraceID returns the trace ID as a string, empty for a no-op span.
func (d *DispatchSpan) TraceID() string {
	if d == nil || d.span == nil || !d.span.SpanContext().HasTraceID() {
		return ""
	}
	return d.span.SpanContext().TraceID().String()
}
