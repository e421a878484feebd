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

// Package plugin defines how a destination plugin describes itself and how
// it is registered and instantiated.
//
// A plugin is declared once with a Builder, which records its configuration
// fields, UI pages, default events and one Handler per event it supports.
// Build freezes the declaration into an immutable Definition. Definitions
// are added to a Registry during program initialization and only read
// afterwards.
//
// Each dispatch creates a fresh Instance that carries the event, the
// submitted configuration, the payload, a log sink and a lazily built
// guarded HTTP client. An Instance is never reused.
package plugin
