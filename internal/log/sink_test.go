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

package log

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestSink(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&Config{Format: FormatText, Output: &buf})

	sink := Sink(logger, slog.String(PluginKey, "slack"))
	sink("posting to channel\n")

	out := buf.String()
	for _, want := range []string{"source=plugin", "plugin=slack", } {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestSink_NilLogger(t *testing.T) {
	sink := Sink(nil)
	sink("does not panic")
}

func TestCapture(t *testing.T) {
	var c Capture
	sink := c.Sink()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sink("line")
		}()
	}
	wg.Wait()

	if got := len(c.Lines()); got != 10 {
		t.Errorf("captured %d lines, want 10", got)
	}
	if !c.Contains("lin") {
		t.Error("Contains should match a substring")
	}
	if c.Contains("missing") {
		t.Error("Contains should not match absent text")
	}
}

func TestTee(t *testing.T) {
	var a, b Capture
	Tee(a.Sink(), nil, b.Sink())("hello")

	if len(a.Lines()) != 1 || len(b.Lines()) != 1 {
		t.Errorf("expected both sinks to receive the line, got %v and %v", a.Lines(), b.Lines())
	}
	Discard("ignored")
}
