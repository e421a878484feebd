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

// Package slack delivers events to a Slack incoming webhook.
package slack

import (
	"context"
	"strings"

	"github.com/tombee/courier/internal/integration/message"
	"github.com/tombee/courier/internal/plugin"
)

// Message is the incoming webhook body.
type Message struct {
	Text     string `json:"text"`
	Channel  string `json:"channel,omitempty"`
	Username string `json:"username,omitempty"`
}

// Definition returns the Slack plugin definition.
func Definition() *plugin.Definition {
	return plugin.Define("Slack").
		Description("Post events to a Slack channel through an incoming webhook.").
		Secret("url", plugin.Options{
			plugin.OptionLabel:       "Webhook URL",
			plugin.OptionPlaceholder: "https://hooks.slack.com/services/...",
			plugin.OptionRequired:    true,
		}).
		Text("channel", plugin.Options{
			plugin.OptionLabel:       "Channel",
			plugin.OptionPlaceholder: "#crashes",
		}).
		Text("username", plugin.Options{
			plugin.OptionLabel:       "Bot Name",
			plugin.OptionPlaceholder: "Courier",
		}).
		Page("Webhook", "url").
		Page("Appearance", "channel", "username").
		DefaultEvents(plugin.EventIssueImpactChange, plugin.EventIssueVelocityAlert).
		Handle(plugin.EventVerification, post).
		Handle(plugin.EventIssueImpactChange, post).
		Handle(plugin.EventIssueVelocityAlert, post).
		Build()
}

func post(ctx context.Context, inst *plugin.Instance) (plugin.Result, error) {
	if err := inst.Require("url"); err != nil {
		return nil, err
	}
	client, err := inst.HTTP()
	if err != nil {
		return nil, err
	}

	resp, err := client.PostJSON(ctx, inst.String("url"), format(inst), nil)
	if err != nil {
		return nil, err
	}
	if err := ParseError(resp); err != nil {
		return nil, err
	}
	return plugin.NoResource, nil
}

func format(inst *plugin.Instance) Message {
	text := message.Summary(inst.Event, inst.Payload)
	if link := message.Link(inst.Payload); link != "" {
		text += " <" + link + "|View issue>"
	}
	channel := inst.String("channel")
	if channel != "" && !strings.HasPrefix(channel, "#") && !strings.HasPrefix(channel, "@") {
		channel = "#" + channel
	}
	return Message{
		Text:     text,
		Channel:  channel,
		Username: inst.String("username"),
	}
}
