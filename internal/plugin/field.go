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
	"encoding/json"
	"maps"
)

// FieldKind is the presentation type of a configuration field.
type FieldKind string

const (
	KindText    FieldKind = "text"
	KindSecret  FieldKind = "secret"
	KindBoolean FieldKind = "boolean"
)

// Well-known option keys.
const (
	OptionLabel       = "label"
	OptionPlaceholder = "placeholder"
	OptionRequired    = "required"
	OptionHelp        = "help"
)

// Options holds arbitrary presentation options for a field.
type Options map[string]any

// Field describes one configuration value a plugin accepts.
type Field struct {
	Kind    FieldKind `json:"type"`
	Name    string    `json:"name"`
	Options Options   `json:"options"`
}

// Label returns the label option, or the field name when none is set.
func (f Field) Label() string {
	if s, ok := f.Options[OptionLabel].(string); ok && s != "" {
		return s
	}
	return f.Name
}

// Placeholder returns the placeholder option.
func (f Field) Placeholder() string {
	s, _ := f.Options[OptionPlaceholder].(string)
	return s
}

// Required reports whether the required option is set to true.
func (f Field) Required() bool {
	b, _ := f.Options[OptionRequired].(bool)
	return b
}

// MarshalJSON always emits options as an object.
func (f Field) MarshalJSON() ([]byte, error) {
	type plain Field
	out := plain(f)
	if out.Options == nil {
		out.Options = Options{}
	}
	return json.Marshal(out)
}

func (f Field) clone() Field {
	f.Options = maps.Clone(f.Options)
	return f
}

// Page groups field names for display. Names are not checked against the
// declared fields.
type Page struct {
	Title  string   `json:"title"`
	Fields []string `json:"fields"`
}
