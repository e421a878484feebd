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
	"context"
	"encoding/json"
	"iter"
	"maps"
	"slices"
)

// Result is the map of vendor-assigned identifiers a handler returns for
// the caller to persist, such as a created ticket key.
type Result map[string]string

// NoResource is returned by handlers that created nothing worth persisting.
var NoResource Result

// Handler delivers one event. ctx carries the dispatch deadline.
type Handler func(ctx context.Context, inst *Instance) (Result, error)

// Definition is the frozen declaration of a plugin. It is safe for
// concurrent reads and every accessor returns a copy.
type Definition struct {
	identifier    string
	title         string
	description   string
	fields        []Field
	pages         []Page
	defaultEvents map[Event]struct{}
	handlers      map[Event]Handler
}

// Identifier returns the unique registry key.
func (d *Definition) Identifier() string { return d.identifier }

// Title returns the display name.
func (d *Definition) Title() string { return d.title }

// Description returns the one-line summary, if any.
func (d *Definition) Description() string { return d.description }

// Schema returns the configuration fields in declaration order, including
// any duplicated names.
func (d *Definition) Schema() []Field {
	out := make([]Field, len(d.fields))
	for i, f := range d.fields {
		out[i] = f.clone()
	}
	return out
}

// Field returns the first declared field with the given name.
func (d *Definition) Field(name string) (Field, bool) {
	for _, f := range d.fields {
		if f.Name == name {
			return f.clone(), true
		}
	}
	return Field{}, false
}

// Pages returns the page layout in declaration order.
func (d *Definition) Pages() []Page {
	out := make([]Page, len(d.pages))
	for i, p := range d.pages {
		out[i] = Page{Title: p.Title, Fields: cloneNames(p.Fields)}
	}
	return out
}

// DefaultEvents returns the events received when a destination does not
// list any, sorted.
func (d *Definition) DefaultEvents() []Event {
	return sortedEvents(maps.Keys(d.defaultEvents))
}

// ReceivesByDefault reports whether e is one of the default events.
func (d *Definition) ReceivesByDefault(e Event) bool {
	_, ok := d.defaultEvents[e]
	return ok
}

// Handler returns the handler registered for e.
func (d *Definition) Handler(e Event) (Handler, bool) {
	h, ok := d.handlers[e]
	return h, ok
}

// Events returns every event with a handler, sorted.
func (d *Definition) Events() []Event {
	return sortedEvents(maps.Keys(d.handlers))
}

type definitionJSON struct {
	Identifier    string  `json:"identifier"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	Schema        []Field `json:"schema"`
	Pages         []Page  `json:"pages"`
	DefaultEvents []Event `json:"default_events"`
	Events        []Event `json:"events"`
}

// MarshalJSON renders the introspection document served to UIs.
func (d *Definition) MarshalJSON() ([]byte, error) {
	return json.Marshal(definitionJSON{
		Identifier:    d.identifier,
		Title:         d.title,
		Description:   d.description,
		Schema:        d.Schema(),
		Pages:         d.Pages(),
		DefaultEvents: d.DefaultEvents(),
		Events:        d.Events(),
	})
}

func sortedEvents(keys iter.Seq[Event]) []Event {
	out := slices.Collect(keys)
	slices.Sort(out)
	if out == nil {
		out = []Event{}
	}
	return out
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
