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

// Package pagerduty triggers PagerDuty incidents through the Events API v2.
package pagerduty

import (
	"context"
	"net/http"
	"time"

	"github.com/tombee/courier/internal/integration/message"
	"github.com/tombee/courier/internal/plugin"
)

// Default vendor endpoints.
const (
	DefaultEventsURL = "https://events.pagerduty.com/v2/enqueue"
	DefaultAPIURL    = "https://api.pagerduty.com"
)

// ResultKey names the identifier persisted for triggered incidents.
const ResultKey = "pagerduty_incident_key"

// Options overrides vendor endpoints.
type Options struct {
	EventsURL string
	APIURL    string
}

// Definition returns the PagerDuty plugin definition with default endpoints.
func Definition() *plugin.Definition {
	return New(Options{})
}

// New returns the PagerDuty plugin definition using opts.
func New(opts Options) *plugin.Definition {
	if opts.EventsURL == "" {
		opts.EventsURL = DefaultEventsURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	p := &integration{opts: opts, now: time.Now}

	return plugin.Define("PagerDuty").
		Identifier("pagerduty").
		Description("Trigger PagerDuty incidents for high-impact crashes.").
		Secret("service_key", plugin.Options{
			plugin.OptionLabel:       "Integration Key",
			plugin.OptionPlaceholder: "32 character Events API v2 key",
			plugin.OptionRequired:    true,
		}).
		Secret("api_key", plugin.Options{
			plugin.OptionLabel: "REST API Key",
			plugin.OptionHelp:  "Optional. Used only to verify the account.",
		}).
		Page("Service", "service_key", "api_key").
		DefaultEvents(plugin.EventIssueImpactChange).
		Handle(plugin.EventVerification, p.verify).
		Handle(plugin.EventIssueImpactChange, p.trigger).
		Handle(plugin.EventIssueVelocityAlert, p.trigger).
		Build()
}

type integration struct {
	opts Options
	now  func() time.Time
}

func (p *integration) trigger(ctx context.Context, inst *plugin.Instance) (plugin.Result, error) {
	if err := inst.Require("service_key"); err != nil {
		return nil, err
	}
	client, err := inst.HTTP()
	if err != nil {
		return nil, err
	}

	event := Event{
		RoutingKey:  inst.String("service_key"),
		EventAction: ActionTrigger,
		DedupKey:    message.IssueID(inst.Payload),
		Payload: EventPayload{
			Summary:   message.Summary(inst.Event, inst.Payload),
			Source:    "courier",
			Severity:  severity(inst.Event),
			Timestamp: p.now().UTC().Format(time.RFC3339),
			Details:   inst.Payload,
		},
	}
	if link := message.Link(inst.Payload); link != "" {
		event.Links = []Link{{Href: link, Text: "View issue"}}
	}

	resp, err := client.PostJSON(ctx, p.opts.EventsURL, event, nil)
	if err != nil {
		return nil, err
	}
	if err := ParseError(resp); err != nil {
		return nil, err
	}

	var accepted EventResponse
	if err := resp.JSON(&accepted); err != nil {
		return nil, err
	}
	if accepted.DedupKey == "" {
		inst.Log("pagerduty accepted the event without a dedup key")
		return plugin.NoResource, nil
	}
	return plugin.Result{ResultKey: accepted.DedupKey}, nil
}

// verify checks the integration key locally and, when an API key is set,
// that the key is accepted by the REST API. It never triggers an incident.
func (p *integration) verify(ctx context.Context, inst *plugin.Instance) (plugin.Result, error) {
	if err := inst.Require("service_key"); err != nil {
		return nil, err
	}
	if err := validateServiceKey(inst.String("service_key")); err != nil {
		return nil, err
	}

	apiKey := inst.String("api_key")
	if apiKey == "" {
		inst.Log("pagerduty verification skipped the REST API check: no api_key")
		return plugin.NoResource, nil
	}

	client, err := inst.HTTP()
	if err != nil {
		return nil, err
	}
	headers := http.Header{}
	headers.Set("Authorization", "Token token="+apiKey)
	headers.Set("Accept", "application/vnd.pagerduty+json;version=2")

	resp, err := client.Get(ctx, p.opts.APIURL+"/abilities", nil, headers)
	if err != nil {
		return nil, err
	}
	if err := ParseError(resp); err != nil {
		return nil, err
	}
	return plugin.NoResource, nil
}

func severity(e plugin.Event) string {
	if e == plugin.EventIssueVelocityAlert {
		return SeverityCritical
	}
	return SeverityError
}
