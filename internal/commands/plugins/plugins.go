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

// Package plugins implements the plugins command, which lists and inspects
// the bundled integrations.
package plugins

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tombee/courier/internal/commands/completion"
	"github.com/tombee/courier/internal/commands/shared"
	"github.com/tombee/courier/internal/plugin"
)

type listResponse struct {
	shared.JSONResponse
	Plugins []*plugin.Definition `json:"plugins"`
}

type showResponse struct {
	shared.JSONResponse
	Plugin *plugin.Definition `json:"plugin"`
}

// NewCommand creates the plugins command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "plugins",
		Aliases: []string{"plugin"},
		Short:   "List bundled plugins",
		Long: `List the plugins courier can dispatch to.

Examples:
  # List plugins
  courier plugins

  # Show the configuration schema of one plugin
  courier plugins show pagerduty

  # Machine-readable schema for a settings UI
  courier plugins show slack --json`,
		Annotations: map[string]string{
			"group": "plugins",
		},
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := shared.NewRegistry()
			if err != nil {
				return err
			}
			return runList(cmd.OutOrStdout(), reg)
		},
	}

	cmd.AddCommand(newShowCommand())
	return cmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show <plugin>",
		Short:             "Show a plugin's configuration schema",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completion.CompletePluginIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := shared.NewRegistry()
			if err != nil {
				return err
			}
			def, err := reg.Get(args[0])
			if err != nil {
				return shared.NewInvalidInputError("unknown plugin", err)
			}
			return runShow(cmd.OutOrStdout(), def)
		},
	}
}

func runList(w io.Writer, reg *plugin.Registry) error {
	defs := reg.List()

	if shared.GetJSON() {
		return shared.EmitJSON(w, listResponse{
			JSONResponse: shared.NewResponse("plugins", true),
			Plugins:      defs,
		})
	}

	fmt.Fprintf(w, "%s\n\n", shared.Header.Render("Plugins"))
	fmt.Fprintf(w, "%s %s %s\n",
		shared.Bold.Render(fmt.Sprintf("%-12s", "ID")),
		shared.Bold.Render(fmt.Sprintf("%-12s", "TITLE")),
		shared.Bold.Render("EVENTS"))
	for _, def := range defs {
		fmt.Fprintf(w, "%-12s %s %s\n",
			shared.Truncate(def.Identifier(), 12),
			shared.Muted.Render(fmt.Sprintf("%-12s", shared.Truncate(def.Title(), 12))),
			joinEvents(def.Events(), def))
	}
	return nil
}

func runShow(w io.Writer, def *plugin.Definition) error {
	if shared.GetJSON() {
		return shared.EmitJSON(w, showResponse{
			JSONResponse: shared.NewResponse("plugins show", true),
			Plugin:       def,
		})
	}

	fmt.Fprintf(w, "%s %s\n", shared.Header.Render(def.Title()), shared.Muted.Render("("+def.Identifier()+")"))
	if d := def.Description(); d != "" {
		fmt.Fprintf(w, "%s\n", d)
	}
	fmt.Fprintln(w)

	pages := def.Pages()
	if len(pages) == 0 {
		pages = []plugin.Page{{Title: "Configuration", Fields: fieldNames(def)}}
	}
	for _, page := range pages {
		fmt.Fprintf(w, "%s\n", shared.Bold.Render(page.Title))
		for _, name := range page.Fields {
			f, ok := def.Field(name)
			if !ok {
				continue
			}
			fmt.Fprintf(w, "  %-16s %-8s %s\n", f.Name, f.Kind, describeField(f))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%s %s\n", shared.RenderLabel("Events:"), joinEvents(def.Events(), def))
	return nil
}

// joinEvents marks default events with an asterisk.
func joinEvents(events []plugin.Event, def *plugin.Definition) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		if def.ReceivesByDefault(e) {
			parts = append(parts, e.String()+"*")
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

func fieldNames(def *plugin.Definition) []string {
	schema := def.Schema()
	names := make([]string, len(schema))
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

func describeField(f plugin.Field) string {
	desc := f.Label()
	if f.Required() {
		desc += " " + shared.StatusWarn.Render("(required)")
	}
	if p := f.Placeholder(); p != "" {
		desc += " " + shared.Muted.Render("e.g. "+p)
	}
	return desc
}
