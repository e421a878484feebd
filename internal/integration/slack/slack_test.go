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

package slack

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/courier/internal/dispatch"
	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/plugin"
	"github.com/tombee/courier/internal/testing/mock"
	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

func newDispatcher(t *testing.T, vendor *mock.Vendor) *dispatch.Dispatcher {
	t.Helper()
	reg := plugin.NewRegistry()
	reg.MustRegister(Definition())
	return dispatch.New(reg, dispatch.Options{
		Deadline: 2 * time.Second,
		Guard:    vendor.Guard(),
		Logger:   log.New(&log.Config{Level: "error", Output: io.Discard}),
	})
}

func TestDefinition(t *testing.T) {
	def := Definition()
	assert.Equal(t, "slack", def.Identifier())
	assert.Equal(t, "Slack", def.Title())

	pages := def.Pages()
	require.Len(t, pages, 2)
	assert.Equal(t, []string{"url"}, pages[0].Fields)
	assert.Equal(t, []string{"channel", "username"}, pages[1].Fields)

	f, ok := def.Field("url")
	require.True(t, ok)
	assert.Equal(t, plugin.KindSecret, f.Kind)
}

func TestSlack_PostsMessage(t *testing.T) {
	vendor := mock.NewVendor(t).Respond(http.StatusOK, "ok")
	d := newDispatcher(t, vendor)

	_, err := d.Dispatch(context.Background(), dispatch.Request{
		Plugin: "slack",
		Event:  plugin.EventIssueVelocityAlert,
		Config: map[string]any{
			"url":      "http://slack.example.com/services/T000/B000/XXX",
			"channel":  "crashes",
			"username": "Courier",
		},
		Payload: map[string]any{"title": "Crash on launch", "url": "https://crashes.example.com/i/9"},
	})
	require.NoError(t, err)

	req, ok := vendor.Last()
	require.True(t, ok)
	var msg Message
	require.NoError(t, req.JSON(&msg))
	assert.Equal(t, "#crashes", msg.Channel)
	assert.Equal(t, "Courier", msg.Username)
	assert.Equal(t, "Velocity alert: Crash on launch <https://crashes.example.com/i/9|View issue>", msg.Text)
}

func TestSlack_ChannelNotFoundIsDisplayable(t *testing.T) {
	vendor := mock.NewVendor(t).Respond(http.StatusNotFound, "channel_not_found")
	d := newDispatcher(t, vendor)

	_, err := d.Dispatch(context.Background(), dispatch.Request{
		Plugin: "slack",
		Event:  plugin.EventVerification,
		Config: map[string]any{"url": "http://slack.example.com/services/T000/B000/XXX", "channel": "#gone"},
	})

	var f *dispatch.Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, dispatch.KindDisplayable, f.Kind)
	assert.Equal(t, "Slack rejected the message: channel_not_found.", f.UserMessage())
	assert.Equal(t, "Channel does not exist or the webhook cannot post to it", f.Suggestion())

	var slackErr *SlackError
	require.ErrorAs(t, err, &slackErr)
	assert.Equal(t, http.StatusNotFound, slackErr.StatusCode)
}

func TestParseError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantErr     bool
		displayable bool
		code        string
	}{
		{name: "plain ok", status: 200, body: "ok"},
		{name: "json ok", status: 200, body: `{"ok":true}`},
		{name: "json error", status: 200, body: `{"ok":false,"error":"invalid_auth"}`, wantErr: true, displayable: true, code: "invalid_auth"},
		{name: "removed webhook", status: 410, body: "no_service", wantErr: true, displayable: true, code: "no_service"},
		{name: "unknown code", status: 400, body: "invalid_payload", wantErr: true, code: "invalid_payload"},
		{name: "html error page", status: 500, body: "<html>oops</html>", wantErr: true, code: "http_500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseError(&httpclient.Response{StatusCode: tt.status, Body: []byte(tt.body)})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.displayable, couriererrors.IsDisplayable(err))

			var slackErr *SlackError
			require.True(t, errors.As(err, &slackErr))
			assert.Equal(t, tt.code, slackErr.ErrorCode)
		})
	}
}

func TestSlackError_Error(t *testing.T) {
	err := &SlackError{ErrorCode: "channel_not_found", Message: "Not found", StatusCode: 404}
	assert.Equal(t, "Slack API error: channel_not_found - Channel does not exist or the webhook cannot post to it (Not found)", err.Error())
}
