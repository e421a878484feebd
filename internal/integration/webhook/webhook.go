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

// Package webhook posts every event as a JSON envelope to a user URL.
package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tombee/courier/internal/integration/message"
	"github.com/tombee/courier/internal/plugin"
	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

// Definition returns the webhook plugin definition.
func Definition() *plugin.Definition {
	return plugin.Define("Webhook").
		Title("WebHooks").
		Description("Send events as JSON to an HTTP endpoint you control.").
		Text("url", plugin.Options{
			plugin.OptionLabel:       "Callback URL",
			plugin.OptionPlaceholder: "https://example.com/courier",
			plugin.OptionRequired:    true,
		}).
		Page("Settings", "url").
		DefaultEvents(plugin.EventIssueImpactChange).
		Handle(plugin.EventVerification, deliver).
		Handle(plugin.EventIssueImpactChange, deliver).
		Handle(plugin.EventIssueVelocityAlert, deliver).
		Build()
}

func deliver(ctx context.Context, inst *plugin.Instance) (plugin.Result, error) {
	if err := inst.Require("url"); err != nil {
		return nil, err
	}
	client, err := inst.HTTP()
	if err != nil {
		return nil, err
	}

	url := inst.String("url")
	resp, err := client.PostJSON(ctx, url, message.NewEnvelope(inst, time.Now()), nil)
	if err != nil {
		return nil, err
	}
	if err := resp.CheckStatus(); err != nil {
		return nil, describe(err)
	}
	inst.Logf("webhook accepted %s with %s", inst.Event, resp.Status)
	return plugin.NoResource, nil
}

// describe turns client-side mistakes into messages the user can act on.
func describe(err error) error {
	var status *httpclient.StatusError
	if !errors.As(err, &status) {
		return err
	}
	switch status.StatusCode {
	case http.StatusNotFound, http.StatusGone, http.StatusMethodNotAllowed:
		return &couriererrors.DisplayableError{
			Message: fmt.Sprintf("The webhook URL responded with %d %s.", status.StatusCode, http.StatusText(status.StatusCode)),
			Hint:    "Check that the URL is correct and accepts POST requests.",
			Cause:   err,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &couriererrors.DisplayableError{
			Message: "The webhook URL rejected the request as unauthorized.",
			Hint:    "Embed any required token in the URL or allow requests from courier.",
			Cause:   err,
		}
	}
	return err
}
