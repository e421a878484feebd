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
	"slices"
	"strings"

	"github.com/tombee/courier/pkg/errors"
)

// Registry maps identifiers to plugin definitions.
//
// Registration happens during program initialization before any dispatch
// starts; after that the registry is only read, so it carries no lock.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Register adds def, replacing any definition with the same identifier.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return fmt.Errorf("plugin: cannot register nil definition")
	}
	if def.identifier == "" {
		return fmt.Errorf("plugin %q: identifier is empty", def.title)
	}
	r.defs[def.identifier] = def
	return nil
}

// MustRegister is like Register but panics on error. It is meant for
// static registration lists.
func (r *Registry) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the definition registered under id.
func (r *Registry) Lookup(id string) (*Definition, bool) {
	def, ok := r.defs[id]
	return def, ok
}

// Get is like Lookup but returns a NotFoundError for unknown identifiers.
func (r *Registry) Get(id string) (*Definition, error) {
	if def, ok := r.defs[id]; ok {
		return def, nil
	}
	return nil, &errors.NotFoundError{Resource: "plugin", ID: id}
}

// List returns all definitions sorted by identifier.
func (r *Registry) List() []*Definition {
	out := make([]*Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	slices.SortFunc(out, func(a, b *Definition) int {
		return strings.Compare(a.identifier, b.identifier)
	})
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	return len(r.defs)
}

// Default is the process-wide registry used by the CLI and server.
var Default = NewRegistry()

// Register adds def to the Default registry.
func Register(def *Definition) error {
	return Default.Register(def)
}

// Lookup finds id in the Default registry.
func Lookup(id string) (*Definition, bool) {
	return Default.Lookup(id)
}
