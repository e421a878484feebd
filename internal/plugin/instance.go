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

package plugin

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

// ClientFactory builds the guarded HTTP client for an instance.
type ClientFactory func() (*httpclient.Client, error)

// InstanceConfig holds everything needed to create an Instance.
type InstanceConfig struct {
	Definition *Definition
	Event      Event
	Config     map[string]any
	Payload    map[string]any
	Log        func(string)
	NewClient  ClientFactory
}

// Instance is the per-dispatch view a handler works with. It is discarded
// when the dispatch ends and never reused.
type Instance struct {
	// Event is the event being delivered.
	Event Event

	// Config is the destination configuration as submitted. It is not
	// validated against the schema.
	Config map[string]any

	// Payload is the event data. It is nil for verification.
	Payload map[string]any

	def       *Definition
	log       func(string)
	newClient ClientFactory

	mu     sync.Mutex
	client *httpclient.Client
	closed bool
}

// NewInstance creates an Instance. A nil Log discards lines and a nil
// NewClient uses httpclient.DefaultConfig.
func NewInstance(cfg InstanceConfig) *Instance {
	inst := &Instance{
		Event:     cfg.Event,
		Config:    cfg.Config,
		Payload:   cfg.Payload,
		def:       cfg.Definition,
		log:       cfg.Log,
		newClient: cfg.NewClient,
	}
	if inst.Config == nil {
		inst.Config = map[string]any{}
	}
	if inst.log == nil {
		inst.log = func(string) {}
	}
	if inst.newClient == nil {
		inst.newClient = func() (*httpclient.Client, error) {
			return httpclient.New(httpclient.DefaultConfig())
		}
	}
	return inst
}

// Definition returns the plugin this instance was created from.
func (i *Instance) Definition() *Definition {
	return i.def
}

// Log writes a line to the dispatch log sink.
func (i *Instance) Log(line string) {
	i.log(line)
}

// Logf formats and writes a line to the dispatch log sink.
func (i *Instance) Logf(format string, args ...any) {
	i.log(fmt.Sprintf(format, args...))
}

// HTTP returns the instance's HTTP client, creating it on first use.
// It fails with httpclient.ErrClosed once the dispatch has ended.
func (i *Instance) HTTP() (*httpclient.Client, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return nil, httpclient.ErrClosed
	}
	if i.client == nil {
		c, err := i.newClient()
		if err != nil {
			return nil, fmt.Errorf("create http client: %w", err)
		}
		i.client = c
	}
	return i.client, nil
}

// Close releases the HTTP client. It is safe to call more than once.
func (i *Instance) Close() error {
	i.mu.Lock()
	c := i.client
	i.client = nil
	i.closed = true
	i.mu.Unlock()

	if c != nil {
		return c.Close()
	}
	return nil
}

// Value returns the raw config value for name.
func (i *Instance) Value(name string) (any, bool) {
	v, ok := i.Config[name]
	return v, ok
}

// String returns the config value for name as trimmed text. Missing and
// nil values are empty.
func (i *Instance) String(name string) string {
	v, ok := i.Config[name]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Bool returns the config value for name as a boolean. Strings such as
// "true", "1" and "on" count as true.
func (i *Instance) Bool(name string) bool {
	switch v := i.Config[name].(type) {
	case bool:
		return v
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if s == "on" || s == "yes" {
			return true
		}
		b, _ := strconv.ParseBool(s)
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Require returns a DisplayableError naming every listed field whose value
// is empty. Field labels from the schema are used when available.
func (i *Instance) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if i.String(name) != "" {
			continue
		}
		label := name
		if i.def != nil {
			if f, ok := i.def.Field(name); ok {
				label = f.Label()
			}
		}
		missing = append(missing, label)
	}
	if len(missing) == 0 {
		return nil
	}
	return &errors.DisplayableError{
		Message: "Missing required configuration: " + strings.Join(missing, ", "),
		Hint:    "Fill in the missing fields in the destination settings",
	}
}
