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

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/plugin"
	"github.com/tombee/courier/internal/tracing"
	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
	"github.com/tombee/courier/pkg/security"
)

// DefaultDeadline bounds every dispatch unless Options overrides it.
const DefaultDeadline = 20 * time.Second

// Options configures a Dispatcher.
type Options struct {
	// Deadline is the hard wall-clock limit for one dispatch.
	Deadline time.Duration

	// HTTP is the base configuration for instance clients. A zero value
	// uses httpclient.DefaultConfig.
	HTTP httpclient.Config

	// Guard vets outbound destinations. Nil uses a guard with the system
	// resolver.
	Guard *security.Guard

	Logger *slog.Logger
	Tracer trace.Tracer
}

// Dispatcher delivers events to registered plugins.
// It is safe for concurrent use; every dispatch gets its own Instance.
type Dispatcher struct {
	registry *plugin.Registry
	deadline time.Duration
	http     httpclient.Config
	guard    *security.Guard
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Request describes one delivery.
type Request struct {
	Plugin  string
	Event   plugin.Event
	Config  map[string]any
	Payload map[string]any

	// Log receives plugin log lines and failure detail. Nil discards.
	Log func(string)
}

// Outcome is the result of a successful dispatch.
type Outcome struct {
	Plugin        string
	Event         plugin.Event
	State         State
	CorrelationID string
	Identifiers   plugin.Result
	Duration      time.Duration
}

// HasResource reports whether the vendor returned any identifiers.
func (o *Outcome) HasResource() bool {
	return o != nil && len(o.Identifiers) > 0
}

// New creates a Dispatcher over registry.
func New(registry *plugin.Registry, opts Options) *Dispatcher {
	if registry == nil {
		registry = plugin.Default
	}
	if opts.Deadline <= 0 {
		opts.Deadline = DefaultDeadline
	}
	if opts.HTTP.Timeout == 0 && opts.HTTP.MaxResponseBytes == 0 {
		opts.HTTP = httpclient.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Guard == nil {
		opts.Guard = security.NewGuard(security.WithLogger(opts.Logger))
	}
	return &Dispatcher{
		registry: registry,
		deadline: opts.Deadline,
		http:     opts.HTTP,
		guard:    opts.Guard,
		logger:   log.WithComponent(opts.Logger, "dispatch"),
		tracer:   opts.Tracer,
	}
}

// Deadline returns the configured per-dispatch limit.
func (d *Dispatcher) Deadline() time.Duration {
	return d.deadline
}

type handlerResult struct {
	result plugin.Result
	err    error
}

// Dispatch delivers req and classifies the outcome. Every failure is a
// *Failure; the returned Outcome is nil in that case.
//
// Dispatch returns no later than the deadline even when the handler ignores
// cancellation. The instance is closed before Dispatch returns, so a handler
// still running afterwards cannot open new connections.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (*Outcome, error) {
	start := time.Now()
	ctx, corrID := tracing.Ensure(ctx)
	logger := log.WithDispatch(d.logger, req.Plugin, req.Event.String(), corrID.String())

	sink := log.LineFunc(log.Discard)
	if req.Log != nil {
		sink = req.Log
	}

	ctx, span := tracing.StartDispatch(ctx, d.tracer, req.Plugin, req.Event.String())
	defer span.End()

	metricPlugin := req.Plugin
	fail := func(err error) (*Outcome, error) {
		kind, state, code := classify(err)
		f := &Failure{
			Plugin:        req.Plugin,
			Event:         req.Event,
			Kind:          kind,
			State:         state,
			StatusCode:    code,
			CorrelationID: corrID.String(),
			Err:           err,
		}
		d.finish(metricPlugin, req.Event, logger, span, f.State, f.Kind, start, err)
		if kind == KindDisplayable {
			sink(f.UserMessage())
		} else {
			sink(fmt.Sprintf("dispatch failed (%s, correlation %s): %v", kind, corrID, err))
		}
		return nil, f
	}

	def, err := d.registry.Get(req.Plugin)
	if err != nil {
		metricPlugin = unknownPluginLabel
		return fail(err)
	}
	handler, ok := def.Handler(req.Event)
	if !ok {
		return fail(fmt.Errorf("%w: %s/%s", ErrNoHandler, req.Plugin, req.Event))
	}

	inst := plugin.NewInstance(plugin.InstanceConfig{
		Definition: def,
		Event:      req.Event,
		Config:     req.Config,
		Payload:    req.Payload,
		Log:        sink,
		NewClient: func() (*httpclient.Client, error) {
			cfg := d.http
			cfg.Guard = d.guard
			cfg.Logger = logger
			return httpclient.New(cfg)
		},
	})
	defer inst.Close()

	logger.Debug("dispatching", log.StateKey, StateDispatching)

	dctx, cancel := context.WithTimeout(ctx, d.deadline)
	defer cancel()

	done := make(chan handlerResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("plugin handler panicked",
					"panic", r,
					"stack", string(debug.Stack()),
				)
				done <- handlerResult{err: fmt.Errorf("plugin handler panicked: %v", r)}
			}
		}()
		res, err := handler(dctx, inst)
		done <- handlerResult{result: res, err: err}
	}()

	var r handlerResult
	select {
	case r = <-done:
		// A handler that ignored cancellation can finish in the same instant
		// the deadline fires; an overrun is never reported as success.
		if r.err == nil && errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			r.err = context.Cause(dctx)
		}
	case <-dctx.Done():
		r.err = d.interrupted(ctx, dctx)
	}

	if r.err != nil {
		if errors.Is(dctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil &&
			!couriererrors.IsDisplayable(r.err) {
			r.err = d.timeoutError(r.err)
		}
		return fail(r.err)
	}

	outcome := &Outcome{
		Plugin:        req.Plugin,
		Event:         req.Event,
		State:         StateSucceeded,
		CorrelationID: corrID.String(),
		Identifiers:   r.result,
		Duration:      time.Since(start),
	}
	if outcome.Identifiers == nil {
		outcome.Identifiers = plugin.NoResource
	}
	d.finish(metricPlugin, req.Event, logger, span, StateSucceeded, "", start, nil)
	return outcome, nil
}

// interrupted reports why the dispatch context ended before the handler did.
func (d *Dispatcher) interrupted(parent, dctx context.Context) error {
	if parent.Err() != nil {
		return fmt.Errorf("dispatch cancelled: %w", context.Cause(parent))
	}
	return d.timeoutError(context.Cause(dctx))
}

func (d *Dispatcher) timeoutError(cause error) error {
	return &couriererrors.TimeoutError{Operation: "dispatch", Duration: d.deadline, Cause: cause}
}

func (d *Dispatcher) finish(pluginID string, event plugin.Event, logger *slog.Logger, span *tracing.DispatchSpan, state State, kind Kind, start time.Time, err error) {
	elapsed := time.Since(start)
	recordDispatch(pluginID, event.String(), state, kind, elapsed)

	span.SetState(string(state))
	attrs := []any{log.StateKey, state, log.DurationKey, elapsed.Milliseconds()}
	switch {
	case err == nil:
		span.Succeed()
		logger.Info("dispatch succeeded", attrs...)
	case state == StateFailedDisplayable:
		span.Fail(string(kind), err)
		logger.Info("dispatch failed with displayable error", append(attrs, "kind", kind, log.Error(err))...)
	default:
		span.Fail(string(kind), err)
		logger.Error("dispatch failed", append(attrs, "kind", kind, log.Error(err))...)
	}
}
