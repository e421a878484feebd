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

package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/tombee/courier/internal/commands/shared"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	if cmd.Use != "courier" {
		t.Errorf("expected use 'courier', got %q", cmd.Use)
	}

	if cmd.Short == "" {
		t.Error("expected short description to be set")
	}

	if cmd.Long == "" {
		t.Error("expected long description to be set")
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"verbose", "quiet", "json", "config"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag not registered", name)
		}
	}
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.2.3", "abc123", "2025-12-22")
	defer SetVersion("dev", "unknown", "unknown")

	v, c, b := GetVersion()
	if v != "1.2.3" {
		t.Errorf("expected version '1.2.3', got %q", v)
	}
	if c != "abc123" {
		t.Errorf("expected commit 'abc123', got %q", c)
	}
	if b != "2025-12-22" {
		t.Errorf("expected build date '2025-12-22', got %q", b)
	}
}

func TestHelpJSON(t *testing.T) {
	root := NewRootCommand()
	root.AddCommand(&cobra.Command{Use: "plugins", Short: "List plugins", Run: func(*cobra.Command, []string) {}})
	root.SetHelpCommand(NewHelpCommand(root))
	defer shared.SetJSONForTest(false)

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"help", "plugins", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("help failed: %v", err)
	}

	var resp HelpResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if resp.Command == nil || resp.Command.Name != "plugins" {
		t.Fatalf("expected plugins metadata, got %+v", resp.Command)
	}
	if len(resp.GlobalFlags) != 4 {
		t.Errorf("expected 4 global flags, got %d", len(resp.GlobalFlags))
	}
}

func TestHelpUnknownCommand(t *testing.T) {
	root := NewRootCommand()
	root.AddCommand(&cobra.Command{Use: "plugins", Run: func(*cobra.Command, []string) {}})
	root.SetHelpCommand(NewHelpCommand(root))
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"help", "nope"})

	err := root.Execute()
	if shared.ExitCode(err) != shared.ExitInvalidInput {
		t.Errorf("expected invalid input exit code, got %v", err)
	}
}
