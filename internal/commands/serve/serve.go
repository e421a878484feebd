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

// Package serve implements the serve command, which runs the HTTP dispatch
// API until interrupted.
package serve

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tombee/courier/internal/commands/shared"
	"github.com/tombee/courier/internal/server"
	"github.com/tombee/courier/internal/tracing"
)

// newRuntime is replaced in tests.
var newRuntime = shared.NewRuntime

// NewCommand creates the serve command.
func NewCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP dispatch API",
		Long: `Run the courier HTTP API.

The server exposes plugin schemas under /v1/plugins, dispatch endpoints for
plugins and configured destinations, /healthz and Prometheus metrics on
/metrics. It shuts down gracefully on SIGINT or SIGTERM.

Examples:
  # Listen on the configured address (default 127.0.0.1:8484)
  courier serve

  # Override the listen address
  courier serve --addr 0.0.0.0:9000`,
		Annotations: map[string]string{
			"group": "server",
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if addr != "" {
				rt.Config.Server.Addr = addr
			}
			return run(ctx, rt, nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

// run serves until ctx is done. ready, when set, receives the bound address.
func run(ctx context.Context, rt *shared.Runtime, ready func(addr string)) error {
	if _, err := rt.Config.ResolveDestinations(rt.Registry); err != nil {
		return shared.NewConfigError("invalid destinations", err)
	}

	v, _, _ := shared.GetVersion()
	provider, err := tracing.Setup(ctx, rt.Config.TracingSetup(v))
	if err != nil {
		return shared.NewConfigError("failed to configure tracing", err)
	}

	srv := server.New(server.Config{
		Addr:              rt.Config.Server.Addr,
		ShutdownTimeout:   rt.Config.Server.ShutdownTimeout,
		ReadHeaderTimeout: rt.Config.Server.ReadHeaderTimeout,
		Destinations:      rt.Config.Destinations,
	}, rt.Registry, rt.Dispatcher, rt.Logger)

	ln, err := net.Listen("tcp", rt.Config.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", rt.Config.Server.Addr, err)
	}
	if ready != nil {
		ready(ln.Addr().String())
	}

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return srv.Serve(gctx, ln)
	})
	group.Go(func() error {
		<-gctx.Done()
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(flushCtx); err != nil {
			rt.Logger.Warn("failed to flush traces", "error", err)
		}
		return nil
	})
	return group.Wait()
}
