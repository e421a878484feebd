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

package pagerduty

import (
	"encoding/json"
	"fmt"
	"strings"

	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

// serviceKeyLength is the length of an Events API v2 integration key.
const serviceKeyLength = 32

// ParseError converts a non-2xx PagerDuty response into an error. Both the
// Events API shape and the REST API shape are understood.
func ParseError(resp *httpclient.Response) error {
	if resp.OK() {
		return nil
	}

	pdErr := &PagerDutyError{StatusCode: resp.StatusCode}

	var rest struct {
		Error *APIError `json:"error"`
	}
	var events EventResponse
	switch {
	case json.Unmarshal(resp.Body, &rest) == nil && rest.Error != nil:
		pdErr.Code = rest.Error.Code
		pdErr.Message = rest.Error.Message
		pdErr.Errors = rest.Error.Errors
	case json.Unmarshal(resp.Body, &events) == nil && events.Message != "":
		pdErr.Message = events.Message
		pdErr.Errors = events.Errors
	default:
		pdErr.Message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
	}

	switch {
	case pdErr.IsAuthError():
		return &couriererrors.DisplayableError{
			Message: "PagerDuty rejected the API key.",
			Hint:    "Create a REST API key with read access, or leave the field empty.",
			Cause:   pdErr,
		}
	case resp.StatusCode == 400:
		return &couriererrors.DisplayableError{
			Message: "PagerDuty rejected the event. Check the integration key.",
			Hint:    "Use the Events API v2 integration key from the service's Integrations tab.",
			Cause:   pdErr,
		}
	}
	return pdErr
}

// PagerDutyError represents an error from the PagerDuty API.
type PagerDutyError struct {
	StatusCode int
	Code       int
	Message    string
	Errors     []string
}

// Error implements the error interface.
func (e *PagerDutyError) Error() string {
	if len(e.Errors) > 0 {
		return fmt.Sprintf("PagerDuty API error (HTTP %d, code %d): %s - %s",
			e.StatusCode, e.Code, e.Message, strings.Join(e.Errors, "; "))
	}
	if e.Code != 0 {
		return fmt.Sprintf("PagerDuty API error (HTTP %d, code %d): %s",
			e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("PagerDuty API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// IsRateLimited returns true if the error is a rate limit error.
func (e *PagerDutyError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsAuthError returns true if the error is an authentication/authorization error.
func (e *PagerDutyError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

func validateServiceKey(key string) error {
	if len(key) != serviceKeyLength {
		return &couriererrors.DisplayableError{
			Message: fmt.Sprintf("The integration key must be %d characters long.", serviceKeyLength),
			Hint:    "Copy the Events API v2 integration key from the PagerDuty service.",
		}
	}
	return nil
}
