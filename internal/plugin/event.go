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

	"github.com/tombee/courier/pkg/errors"
)

// Event identifies the kind of notification being delivered.
type Event string

const (
	// EventVerification is sent when a user tests a destination's
	// configuration. Every plugin is expected to handle it.
	EventVerification Event = "verification"

	// EventIssueImpactChange is sent when a new issue crosses its impact
	// threshold.
	EventIssueImpactChange Event = "issue_impact_change"

	// EventIssueVelocityAlert is sent when an issue's event rate spikes.
	EventIssueVelocityAlert Event = "issue_velocity_alert"
)

var knownEvents = []Event{
	EventVerification,
	EventIssueImpactChange,
	EventIssueVelocityAlert,
}

// Events returns every known event kind.
func Events() []Event {
	return slices.Clone(knownEvents)
}

// Valid reports whether e is a known event kind.
func (e Event) Valid() bool {
	return slices.Contains(knownEvents, e)
}

func (e Event) String() string {
	return string(e)
}

// ParseEvent converts s to a known Event.
func ParseEvent(s string) (Event, error) {
	e := Event(s)
	if !e.Valid() {
		return "", &errors.ValidationError{
			Field:      "event",
			Message:    fmt.Sprintf("unknown event %q", s),
			Suggestion: "use one of verification, issue_impact_change, issue_velocity_alert",
		}
	}
	return e, nil
}
