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

// Package message formats crash-reporting events into the short text and
// JSON envelopes the reference integrations send.
package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/tombee/courier/internal/plugin"
)

// Payload keys read by the formatters. Missing keys are rendered empty.
const (
	KeyTitle   = "title"
	KeyURL     = "url"
	KeyProject = "project"
	KeyImpact  = "impact"
	KeyCount   = "crashes"
	KeyID      = "id"
)

// VerificationText is sent when a destination is tested.
const VerificationText = "Courier is configured to deliver crash-reporting events here."

// Envelope is the JSON body for generic HTTP destinations.
type Envelope struct {
	Event   plugin.Event   `json:"event"`
	Text    string         `json:"text"`
	SentAt  time.Time      `json:"sent_at"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewEnvelope builds an envelope for inst, stamped with now.
func NewEnvelope(inst *plugin.Instance, now time.Time) Envelope {
	return Envelope{
		Event:   inst.Event,
		Text:    Summary(inst.Event, inst.Payload),
		SentAt:  now.UTC(),
		Payload: inst.Payload,
	}
}

// Summary renders a one-line description of event.
func Summary(event plugin.Event, payload map[string]any) string {
	title := field(payload, KeyTitle)
	project := field(payload, KeyProject)

	var b strings.Builder
	switch event {
	case plugin.EventVerification:
		return VerificationText
	case plugin.EventIssueImpactChange:
		b.WriteString("Issue impact changed")
		if impact := field(payload, KeyImpact); impact != "" {
			fmt.Fprintf(&b, " to %s", impact)
		}
	case plugin.EventIssueVelocityAlert:
		b.WriteString("Velocity alert")
		if n := field(payload, KeyCount); n != "" {
			fmt.Fprintf(&b, " (%s crashes)", n)
		}
	default:
		b.WriteString(string(event))
	}
	if project != "" {
		fmt.Fprintf(&b, " in %s", project)
	}
	if title != "" {
		fmt.Fprintf(&b, ": %s", title)
	}
	return b.String()
}

// Link returns the issue URL from payload, or "".
func Link(payload map[string]any) string {
	return field(payload, KeyURL)
}

// IssueID returns the issue identifier from payload, or "".
func IssueID(payload map[string]any) string {
	return field(payload, KeyID)
}

func field(payload map[string]any, key string) string {
	v, ok := payload[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}
