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

// Package dispatch implements the dispatch command, which delivers a single
// event through a plugin or a configured destination.
package dispatch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tombee/courier/internal/commands/completion"
	"github.com/tombee/courier/internal/commands/shared"
	dispatcher "github.com/tombee/courier/internal/dispatch"
	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/plugin"
)

// newRuntime is replaced in tests.
var newRuntime = shared.NewRuntime

type options struct {
	event        string
	destination  string
	settings     []string
	settingsFile string
	payloadFile  string
}

// Response is the JSON output of a successful dispatch.
type Response struct {
	shared.JSONResponse
	Plugin        string            `json:"plugin"`
	Destination   string            `json:"destination,omitempty"`
	Event         string            `json:"event"`
	State         string            `json:"state"`
	CorrelationID string            `json:"correlation_id"`
	Identifiers   map[string]string `json:"identifiers,omitempty"`
	DurationMS    int64             `json:"duration_ms"`
	Log           []string          `json:"log,omitempty"`
}

// NewCommand creates the dispatch command.
func NewCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "dispatch [plugin]",
		Short: "Deliver one event",
		Long: `Deliver a single event through a plugin or a configured destination.

Settings come from the destination in the config file, then --settings-file,
then --set, later sources winning. The payload is read from --payload as
YAML or JSON.

Examples:
  # Test a Slack webhook
  courier dispatch slack --set url=https://hooks.slack.com/services/T/B/X

  # Send an impact change through a configured destination
  courier dispatch --destination ops-pager --event issue_impact_change --payload issue.yaml`,
		Annotations: map[string]string{
			"group": "dispatch",
		},
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completion.CompletePluginIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.event, "event", "e", string(plugin.EventVerification), "Event kind to deliver")
	cmd.Flags().StringVarP(&opts.destination, "destination", "d", "", "Configured destination to deliver through")
	cmd.Flags().StringArrayVar(&opts.settings, "set", nil, "Plugin setting as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.settingsFile, "settings-file", "", "YAML or JSON file of plugin settings")
	cmd.Flags().StringVarP(&opts.payloadFile, "payload", "p", "", "YAML or JSON file with the event payload")

	_ = cmd.RegisterFlagCompletionFunc("event", completion.CompleteEvents)
	_ = cmd.RegisterFlagCompletionFunc("destination", completion.CompleteDestinationNames)

	return cmd
}

func run(ctx context.Context, cmd *cobra.Command, args []string, opts options) error {
	if (len(args) == 0) == (opts.destination == "") {
		return shared.NewInvalidInputError("specify either a plugin or --destination", nil)
	}

	event, err := plugin.ParseEvent(opts.event)
	if err != nil {
		return shared.NewInvalidInputError("invalid --event", err)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}

	req := dispatcher.Request{Event: event, Config: map[string]any{}}
	if opts.destination != "" {
		dest, ok := rt.Config.Destinations[opts.destination]
		if !ok {
			return shared.NewInvalidInputError(fmt.Sprintf("unknown destination %q", opts.destination), nil)
		}
		def, err := rt.Registry.Get(dest.Plugin)
		if err != nil {
			return shared.NewConfigError(fmt.Sprintf("destination %s", opts.destination), err)
		}
		if event != plugin.EventVerification && !dest.Receives(def, event) {
			return shared.NewInvalidInputError(fmt.Sprintf("destination %s does not receive %s", opts.destination, event), nil)
		}
		req.Plugin = def.Identifier()
		mergeInto(req.Config, dest.Config)
	} else {
		def, err := rt.Registry.Get(args[0])
		if err != nil {
			return shared.NewInvalidInputError("unknown plugin", err)
		}
		req.Plugin = def.Identifier()
	}

	if opts.settingsFile != "" {
		fileSettings, err := readMap(opts.settingsFile)
		if err != nil {
			return shared.NewInvalidInputError("failed to read --settings-file", err)
		}
		mergeInto(req.Config, fileSettings)
	}
	for _, kv := range opts.settings {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return shared.NewInvalidInputError(fmt.Sprintf("invalid --set %q, expected key=value", kv), nil)
		}
		req.Config[strings.TrimSpace(key)] = value
	}
	if opts.payloadFile != "" {
		req.Payload, err = readMap(opts.payloadFile)
		if err != nil {
			return shared.NewInvalidInputError("failed to read --payload", err)
		}
	}

	var capture log.Capture
	req.Log = log.Tee(capture.Sink(), log.Sink(rt.Logger, slog.String(log.DestinationKey, opts.destination)))

	out, err := rt.Dispatcher.Dispatch(ctx, req)
	if err != nil {
		if shared.GetJSON() {
			_ = shared.EmitJSONError(cmd.OutOrStdout(), "dispatch", []shared.JSONError{shared.ToJSONError(err)})
			return &shared.ExitError{Code: shared.ExitDispatchFailed}
		}
		printLog(cmd.ErrOrStderr(), capture.Lines())
		return shared.NewDispatchError("dispatch failed", err)
	}

	if shared.GetJSON() {
		return shared.EmitJSON(cmd.OutOrStdout(), Response{
			JSONResponse:  shared.NewResponse("dispatch", true),
			Plugin:        out.Plugin,
			Destination:   opts.destination,
			Event:         out.Event.String(),
			State:         string(out.State),
			CorrelationID: out.CorrelationID,
			Identifiers:   out.Identifiers,
			DurationMS:    out.Duration.Milliseconds(),
			Log:           capture.Lines(),
		})
	}

	printLog(cmd.ErrOrStderr(), capture.Lines())
	printOutcome(cmd.OutOrStdout(), out)
	return nil
}

func printOutcome(w io.Writer, out *dispatcher.Outcome) {
	fmt.Fprintln(w, shared.RenderOK(fmt.Sprintf("Delivered %s to %s %s",
		out.Event, out.Plugin, shared.Muted.Render("("+out.Duration.Round(time.Millisecond).String()+")"))))

	keys := make([]string, 0, len(out.Identifiers))
	for k := range out.Identifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s %s\n", shared.RenderLabel(k+":"), out.Identifiers[k])
	}
	fmt.Fprintf(w, "  %s %s\n", shared.RenderLabel("correlation id:"), out.CorrelationID)
}

// printLog writes plugin log lines when --verbose is set.
func printLog(w io.Writer, lines []string) {
	if !shared.GetVerbose() || len(lines) == 0 {
		return
	}
	fmt.Fprintln(w, shared.Header.Render("Plugin log"))
	for _, line := range lines {
		fmt.Fprintf(w, "  %s %s\n", shared.Muted.Render(shared.SymbolInfo), line)
	}
}

func readMap(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mergeInto(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
