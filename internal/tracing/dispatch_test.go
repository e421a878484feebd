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
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	rec := tracetest.NewSpanRecorder()
	return rec, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
}

func attrValue(attrs []attribute.KeyValue, key string) string {
	for _, kv := range attrs {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

func TestStartDispatch_Success(t *testing.T) {
	rec, tp := newRecorder()
	id := NewCorrelationID()
	ctx := ToContext(context.Background(), id)

	_, span := StartDispatch(ctx, tp.Tracer("test"), "slack", "verification")
	if span.TraceID() == "" {
		t.Error("expected a trace ID from the SDK tracer")
	}
	span.SetState("succeeded")
	span.Succeed()
	span.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	s := spans[0]
	if s.Name() != "dispatch slack/verification" {
		t.Errorf("span name = %q", s.Name())
	}
	if got := attrValue(s.Attributes(), "courier.correlation_id"); got != id.String() {
		t.Errorf("correlation attribute = %q, want %q", got, id)
	}
	if got := attrValue(s.Attributes(), "courier.state"); got != "succeeded" {
		t.Errorf("state attribute = %q", got)
	}
	if s.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", s.Status().Code)
	}
}

func TestStartDispatch_Failure(t *testing.T) {
	rec, tp := newRecorder()

	_, span := StartDispatch(context.Background(), tp.Tracer("test"), "webhook", "issue_impact_change")
	span.Fail("timeout", errors.New("deadline exceeded"))
	span.End()

	s := rec.Ended()[0]
	if s.Status().Code != codes.Error || s.Status().Description != "timeout" {
		t.Errorf("status = %v %q", s.Status().Code, s.Status().Description)
	}
	if got := attrValue(s.Attributes(), "courier.failure_kind"); got != "timeout" {
		t.Errorf("failure kind = %q", got)
	}
	if len(s.Events()) == 0 {
		t.Error("expected the error to be recorded as an event")
	}
}

func TestDispatchSpan_NilSafe(t *testing.T) {
	var span *DispatchSpan
	span.SetState("x")
	span.Succeed()
	span.Fail("x", errors.New("x"))
	span.End()
	if span.TraceID() != "" {
		t.Error("nil span should have empty trace ID")
	}
}

func TestSetup(t *testing.T) {
	t.Run("none", func(t *testing.T) {
		p, err := Setup(context.Background(), Config{})
		if err != nil {
			t.Fatal(err)
		}
		if err := p.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})

	t.Run("stdout", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := Setup(context.Background(), Config{Exporter: ExporterStdout, Writer: &buf})
		if err != nil {
			t.Fatal(err)
		}
		_, span := StartDispatch(context.Background(), nil, "webhook", "verification")
		span.End()
		if err := p.Shutdown(context.Background()); err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(buf.Bytes(), []byte("dispatch webhook/verification")) {
			t.Errorf("expected exported span in output, got %q", buf.String())
		}
	})

	t.Run("otlp requires endpoint", func(t *testing.T) {
		if _, err := Setup(context.Background(), Config{Exporter: ExporterOTLPHTTP}); err == nil {
			t.Error("expected error without endpoint")
		}
		if _, err := Setup(context.Background(), Config{Exporter: ExporterOTLPGRPC}); err == nil {
			t.Error("expected error without endpoint")
		}
	})

	t.Run("unknown exporter", func(t *testing.T) {
		if _, err := Setup(context.Background(), Config{Exporter: "zipkin"}); err == nil {
			t.Error("expected error for unknown exporter")
		}
	})
}
