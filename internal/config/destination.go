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

package config

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/tombee/courier/internal/plugin"
	couriererrors "github.com/tombee/courier/pkg/errors"
)

// Destination is a named, configured plugin.
type Destination struct {
	// Plugin is the plugin identifier, e.g. "webhook".
	Plugin string `yaml:"plugin"`

	// Events limits which events are delivered. Empty means the plugin's
	// default events.
	Events []string `yaml:"events,omitempty"`

	// Config is passed to the plugin instance as submitted.
	Config map[string]any `yaml:"config,omitempty"`
}

func (d Destination) validate() error {
	if d.Plugin == "" {
		return errors.New("plugin is required")
	}
	for _, e := range d.Events {
		if _, err := plugin.ParseEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Receives reports whether the destination takes event. Without an explicit
// event list it falls back to the plugin's default events.
func (d Destination) Receives(def *plugin.Definition, event plugin.Event) bool {
	if len(d.Events) == 0 {
		return def != nil && def.ReceivesByDefault(event)
	}
	return slices.Contains(d.Events, string(event))
}

// ResolveDestinations checks every destination against reg and returns the
// names in sorted order.
func (c *Config) ResolveDestinations(reg *plugin.Registry) ([]string, error) {
	names := make([]string, 0, len(c.Destinations))
	for name, dest := range c.Destinations {
		def, ok := reg.Lookup(dest.Plugin)
		if !ok {
			return nil, &couriererrors.ConfigError{
				Key:    fmt.Sprintf("destinations.%s.plugin", name),
				Reason: fmt.Sprintf("unknown plugin %q", dest.Plugin),
				Cause:  ErrInvalidConfig,
			}
		}
		for _, raw := range dest.Events {
			e := plugin.Event(raw)
			if _, ok := def.Handler(e); !ok {
				return nil, &couriererrors.ConfigError{
					Key:    fmt.Sprintf("destinations.%s.events", name),
					Reason: fmt.Sprintf("plugin %s does not handle %s", def.Identifier(), e),
					Cause:  ErrInvalidConfig,
				}
			}
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
