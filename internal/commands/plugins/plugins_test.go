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

package plugins

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/tombee/courier/internal/commands/shared"
)

func TestPluginsList(t *testing.T) {
	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("plugins failed: %v", err)
	}

	out := buf.String()
	for _, id := range []string{"webhook", "slack", "pagerduty"} {
		if !strings.Contains(out, id) {
			t.Errorf("expected %s in output:\n%s", id, out)
		}
	}
	if !strings.Contains(out, "issue_impact_change*") {
		t.Errorf("expected default events to be marked:\n%s", out)
	}
}

func TestPluginsShow(t *testing.T) {
	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"show", "pagerduty"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("plugins show failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "service_key") {
		t.Errorf("expected service_key field:\n%s", out)
	}
	if !strings.Contains(out, "(required)") {
		t.Errorf("expected required marker:\n%s", out)
	}
}

func TestPluginsShow_Unknown(t *testing.T) {
	cmd := NewCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"show", "carrier-pigeon"})

	err := cmd.Execute()
	if shared.ExitCode(err) != shared.ExitInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestPluginsShow_JSON(t *testing.T) {
	shared.SetJSONForTest(true)
	defer shared.SetJSONForTest(false)

	cmd := NewCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"show", "webhook"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("plugins show failed: %v", err)
	}

	var resp struct {
		Success bool `json:"success"`
		Plugin  struct {
			Identifier string `json:"identifier"`
			Schema     []struct {
				Type    string         `json:"type"`
				Name    string         `json:"name"`
				Options map[string]any `json:"options"`
			} `json:"schema"`
		} `json:"plugin"`
	}
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if !resp.Success || resp.Plugin.Identifier != "webhook" {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(resp.Plugin.Schema) != 1 || resp.Plugin.Schema[0].Name != "url" {
		t.Errorf("unexpected schema %+v", resp.Plugin.Schema)
	}
	if resp.Plugin.Schema[0].Options["required"] != true {
		t.Errorf("expected url to be required: %+v", resp.Plugin.Schema[0].Options)
	}
}
