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
	"maps"
	"strings"
)

// Builder accumulates a plugin declaration. Methods never fail; problems
// in a declaration only surface when a dispatch uses it.
//
//	var Definition = plugin.Define("Webhook").
//		Title("WebHooks").
//		Text("url", plugin.Options{"label": "Callback URL", "required": true}).
//		Page("Settings", "url").
//		DefaultEvents(plugin.EventIssueImpactChange).
//		Handle(plugin.EventVerification, verify).
//		Build()
type Builder struct {
	def Definition
}

// Define starts a declaration for the named plugin type. The identifier is
// Normalize(typeName) and the title defaults to typeName.
func Define(typeName string) *Builder {
	return &Builder{def: Definition{
		identifier:    Normalize(typeName),
		title:         typeName,
		defaultEvents: make(map[Event]struct{}),
		handlers:      make(map[Event]Handler),
	}}
}

// Identifier overrides the derived identifier.
func (b *Builder) Identifier(id string) *Builder {
	b.def.identifier = strings.TrimSpace(id)
	return b
}

// Title sets the display name.
func (b *Builder) Title(title string) *Builder {
	b.def.title = title
	return b
}

// Description sets a one-line summary shown next to the title.
func (b *Builder) Description(desc string) *Builder {
	b.def.description = desc
	return b
}

// Field appends a configuration field. Declaring the same name twice keeps
// both entries in order.
func (b *Builder) Field(kind FieldKind, name string, opts Options) *Builder {
	b.def.fields = append(b.def.fields, Field{Kind: kind, Name: name, Options: maps.Clone(opts)})
	return b
}

// Text appends a text field.
func (b *Builder) Text(name string, opts Options) *Builder {
	return b.Field(KindText, name, opts)
}

// Secret appends a secret field.
func (b *Builder) Secret(name string, opts Options) *Builder {
	return b.Field(KindSecret, name, opts)
}

// Boolean appends a boolean field.
func (b *Builder) Boolean(name string, opts Options) *Builder {
	return b.Field(KindBoolean, name, opts)
}

// Page appends a page listing the given field names.
func (b *Builder) Page(title string, fieldNames ...string) *Builder {
	b.def.pages = append(b.def.pages, Page{Title: title, Fields: cloneNames(fieldNames)})
	return b
}

// DefaultEvents adds events received when a destination lists none.
func (b *Builder) DefaultEvents(events ...Event) *Builder {
	for _, e := range events {
		b.def.defaultEvents[e] = struct{}{}
	}
	return b
}

// Handle registers h for event, replacing any earlier handler.
func (b *Builder) Handle(event Event, h Handler) *Builder {
	if h != nil {
		b.def.handlers[event] = h
	}
	return b
}

// Build returns an immutable snapshot of the declaration. Later calls on b
// do not affect definitions already built.
func (b *Builder) Build() *Definition {
	d := b.def
	d.fields = make([]Field, len(b.def.fields))
	for i, f := range b.def.fields {
		d.fields[i] = f.clone()
	}
	d.pages = make([]Page, len(b.def.pages))
	for i, p := range b.def.pages {
		d.pages[i] = Page{Title: p.Title, Fields: cloneNames(p.Fields)}
	}
	d.defaultEvents = maps.Clone(b.def.defaultEvents)
	d.handlers = maps.Clone(b.def.handlers)
	return &d
}
