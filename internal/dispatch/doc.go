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

// Package dispatch delivers one event to one plugin under a hard deadline
// and classifies the outcome.
//
// A dispatch moves through created and dispatching into exactly one
// terminal state: succeeded, failed_displayable, failed_internal or
// timed_out. Only failed_displayable exposes the plugin's own message to
// the end user; every other failure is reported with a generic message
// while the full detail goes to the dispatch log sink and structured logs.
//
// The engine never retries.
package dispatch
