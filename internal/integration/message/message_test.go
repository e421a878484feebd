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

package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tombee/courier/internal/plugin"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name    string
		event   plugin.Event
		payload map[string]any
		want    string
	}{
		{"verification", plugin.EventVerification, nil, VerificationText},
		{
			"impact change",
			plugin.EventIssueImpactChange,
			map[string]any{"title": "NullPointerException in Feed", "impact": "high", "project": "ios-app"},
			"Issue impact changed to high in ios-app: NullPointerException in Feed",
		},
		{
			"velocity alert numeric count",
			plugin.EventIssueVelocityAlert,
			map[string]any{"title": "Crash on launch", "crashes": 120},
			"Velocity alert (120 crashes): Crash on launch",
		},
		{"empty payload", plugin.EventIssueImpactChange, nil, "Issue impact changed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.event, tt.payload))
		})
	}
}

func TestNewEnvelope(t *testing.T) {
	inst := plugin.NewInstance(plugin.InstanceConfig{
		Event:   plugin.EventIssueVelocityAlert,
		Payload: map[string]any{"title": "Crash", "url": "https://crashes.example.com/i/1", "id": "1"},
	})
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	env := NewEnvelope(inst, now)
	assert.Equal(t, plugin.EventIssueVelocityAlert, env.Event)
	assert.Equal(t, "Velocity alert: Crash", env.Text)
	assert.Equal(t, time.UTC, env.SentAt.Location())
	assert.Equal(t, "https://crashes.example.com/i/1", Link(inst.Payload))
	assert.Equal(t, "1", IssueID(inst.Payload))
}
