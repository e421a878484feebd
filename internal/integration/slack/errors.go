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
	"encoding/json"
	"fmt"
	"strings"

	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

// SlackError is a failure reported by Slack.
type SlackError struct {
	ErrorCode  string
	Message    string
	StatusCode int
}

// Error implements the error interface.
func (e *SlackError) Error() string {
	msg := fmt.Sprintf("Slack API error: %s", e.ErrorCode)

	if suggestion := getErrorSuggestion(e.ErrorCode); suggestion != "" {
		msg += fmt.Sprintf(" - %s", suggestion)
	}

	if e.Message != "" && e.Message != e.ErrorCode {
		msg += fmt.Sprintf(" (%s)", e.Message)
	}

	return msg
}

// ParseError inspects an incoming webhook response. Slack answers "ok" on
// success and a plain error code (or an ok:false JSON body) otherwise.
// Codes the user can fix become DisplayableErrors.
func ParseError(resp *httpclient.Response) error {
	body := strings.TrimSpace(string(resp.Body))

	code := ""
	var parsed struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if strings.HasPrefix(body, "{") && json.Unmarshal(resp.Body, &parsed) == nil {
		if parsed.OK && resp.OK() {
			return nil
		}
		code = parsed.Error
	} else if resp.OK() {
		return nil
	} else if body != "" && !strings.ContainsAny(body, " \n<") {
		code = body
	}

	if code == "" {
		code = fmt.Sprintf("http_%d", resp.StatusCode)
	}
	slackErr := &SlackError{
		ErrorCode:  code,
		Message:    getHTTPErrorMessage(resp.StatusCode),
		StatusCode: resp.StatusCode,
	}
	if resp.OK() {
		slackErr.Message = ""
	}

	if suggestion := getErrorSuggestion(code); suggestion != "" {
		return &couriererrors.DisplayableError{
			Message: fmt.Sprintf("Slack rejected the message: %s.", code),
			Hint:    suggestion,
			Cause:   slackErr,
		}
	}
	return slackErr
}

// getErrorSuggestion returns a helpful suggestion for Slack errors a user
// can fix by changing the destination configuration.
func getErrorSuggestion(errorCode string) string {
	suggestions := map[string]string{
		"channel_not_found":   "Channel does not exist or the webhook cannot post to it",
		"channel_is_archived": "Channel is archived. Unarchive it or pick another channel",
		"is_archived":         "Channel is archived. Unarchive it first",
		"no_service":          "The webhook was disabled or removed. Create a new one",
		"no_service_id":       "The webhook URL is incomplete. Copy it again from Slack",
		"no_team":             "The workspace for this webhook no longer exists",
		"team_disabled":       "The Slack workspace has been disabled",
		"invalid_token":       "The webhook URL is invalid. Copy it again from Slack",
		"invalid_auth":        "Token is invalid or has been revoked",
		"token_revoked":       "Token has been revoked. Generate a new webhook",
		"action_prohibited":   "A workspace admin has restricted posting to this channel",
		"user_not_found":      "User does not exist in the workspace",
	}

	if suggestion, ok := suggestions[errorCode]; ok {
		return suggestion
	}

	return ""
}

// getHTTPErrorMessage returns a message for HTTP error codes.
func getHTTPErrorMessage(statusCode int) string {
	switch statusCode {
	case 400:
		return "Bad request - check your parameters"
	case 403:
		return "Forbidden - check your permissions"
	case 404:
		return "Not found"
	case 410:
		return "Gone - the webhook was removed"
	case 429:
		return "Rate limited - too many requests"
	case 500:
		return "Internal server error"
	case 503:
		return "Service unavailable"
	default:
		return fmt.Sprintf("HTTP error %d", statusCode)
	}
}
