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

/*
Package tracing provides correlation IDs and OpenTelemetry spans for
courier dispatches.

# Correlation IDs

Every dispatch carries a correlation ID. Ensure attaches a fresh one to a
context when none is present; CorrelationMiddleware accepts or generates one
for each API request and echoes it in the X-Correlation-ID response header.
The same ID is sent to vendors and attached to every log line and span for
that dispatch.

# Spans

StartDispatch opens one span per dispatch named "dispatch <plugin>/<event>".
The final state and failure kind are recorded as span attributes:

	ctx, span := tracing.StartDispatch(ctx, nil, "slack", "issue_impact_change")
	defer span.End()
	...
	span.SetState("succeeded")
	span.Succeed()

# Exporters

Setup installs a global tracer provider for the configured exporter:

	provider, err := tracing.Setup(ctx, tracing.Config{
	    Exporter:    tracing.ExporterOTLPHTTP,
	    Endpoint:    "localhost:4318",
	    ServiceName: "courier",
	})
	defer provider.Shutdown(context.Background())

With the "none" exporter the global no-op provider is left in place and
spans cost nothing.
*/
package tracing
