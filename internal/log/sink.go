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
	"context"
	"log/slog"
	"strings"
	"sync"
)

// LineFunc is the log sink handed to a plugin for one dispatch. It accepts
// arbitrary text lines and must be safe to call from any goroutine.
type LineFunc func(line string)

// Sink adapts logger to a LineFunc. Each line becomes an info record
// tagged source=plugin with the given attributes.
func Sink(logger *slog.Logger, attrs ...slog.Attr) LineFunc {
	if logger == nil {
		logger = slog.Default()
	}
	args := make([]any, 0, len(attrs)+1)
	args = append(args, slog.String("source", "plugin"))
	for _, a := range attrs {
		args = append(args, a)
	}
	l := logger.With(args...)
	return func(line string) {
		l.LogAttrs(context.Background(), slog.LevelInfo, strings.TrimRight(line, "\n"))
	}
}

// Discard is a LineFunc that drops every line.
func Discard(string) {}

// Tee returns a LineFunc that forwards each line to every non-nil sink.
func Tee(sinks ...LineFunc) LineFunc {
	return func(line string) {
		for _, s := range sinks {
			if s != nil {
				s(line)
			}
		}
	}
}

// Capture collects lines in memory. It is used by tests and by the CLI to
// print a plugin's log after a dispatch.
type Capture struct {
	mu    sync.Mutex
	lines []string
}

// Sink returns the LineFunc that appends to c.
func (c *Capture) Sink() LineFunc {
	return func(line string) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.lines = append(c.lines, line)
	}
}

// Lines returns a copy of every line captured so far.
func (c *Capture) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.lines))
	copy(out, c.lines)
	return out
}

// Contains reports whether any captured line contains substr.
func (c *Capture) Contains(substr string) bool {
	for _, line := range c.Lines() {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
