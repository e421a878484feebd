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

package errors_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	couriererrors "github.com/tombee/courier/pkg/errors"
)

func TestDisplayableError(t *testing.T) {
	cause := errors.New("slack: channel_not_found")
	err := &couriererrors.DisplayableError{
		Message: "Channel not found",
		Hint:    "Invite the app to the channel first",
		Cause:   cause,
	}

	if got := err.Error(); got != "Channel not found" {
		t.Errorf("Error() = %q, want %q", got, "Channel not found")
	}
	if got := err.UserMessage(); got != "Channel not found" {
		t.Errorf("UserMessage() = %q", got)
	}
	if !err.IsUserVisible() {
		t.Error("DisplayableError should be user visible")
	}
	if got := err.Suggestion(); got != "Invite the app to the channel first" {
		t.Errorf("Suggestion() = %q", got)
	}
	if got := err.ErrorType(); got != "configuration_display" {
		t.Errorf("ErrorType() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("DisplayableError should unwrap to its cause")
	}

	var _ couriererrors.UserVisibleError = err
	var _ couriererrors.ErrorClassifier = err
}

func TestDisplayableConstructors(t *testing.T) {
	if got := couriererrors.NewDisplayable("Invalid URL").Message; got != "Invalid URL" {
		t.Errorf("NewDisplayable message = %q", got)
	}
	if got := couriererrors.Displayablef("Missing %s", "Webhook URL").Message; got != "Missing Webhook URL" {
		t.Errorf("Displayablef message = %q", got)
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *couriererrors.ValidationError
		wantMsg string
	}{
		{
			name:    "with field",
			err:     &couriererrors.ValidationError{Field: "event", Message: "unknown event"},
			wantMsg: "validation failed on event: unknown event",
		},
		{
			name:    "without field",
			err:     &couriererrors.ValidationError{Message: "invalid body"},
			wantMsg: "validation failed: invalid body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ValidationError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestNotFoundError_Error(t *testing.T) {
	err := &couriererrors.NotFoundError{Resource: "plugin", ID: "jira"}
	if got := err.Error(); got != "plugin not found: jira" {
		t.Errorf("NotFoundError.Error() = %q", got)
	}
	if got := err.ErrorType(); got != "not_found" {
		t.Errorf("ErrorType() = %q", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *couriererrors.ConfigError
		wantMsg string
	}{
		{
			name:    "with key",
			err:     &couriererrors.ConfigError{Key: "dispatch.deadline", Reason: "must be positive"},
			wantMsg: "config error at dispatch.deadline: must be positive",
		},
		{
			name:    "without key",
			err:     &couriererrors.ConfigError{Reason: "file is empty"},
			wantMsg: "config error: file is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("ConfigError.Error() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestConfigError_Unwrap(t *testing.T) {
	cause := errors.New("permission denied")
	err := &couriererrors.ConfigError{Reason: "cannot read", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("ConfigError should unwrap to its cause")
	}
}

func TestTimeoutError(t *testing.T) {
	err := &couriererrors.TimeoutError{
		Operation: "dispatch slack/verification",
		Duration:  20 * time.Second,
	}

	if got := err.Error(); got != "dispatch slack/verification timed out after 20s" {
		t.Errorf("TimeoutError.Error() = %q", got)
	}
	if !err.IsRetryable() {
		t.Error("timeouts should be retryable")
	}
}

func TestErrorWrapping(t *testing.T) {
	inner := &couriererrors.DisplayableError{Message: "Bad token"}
	wrapped := fmt.Errorf("handler: %w", inner)

	var d *couriererrors.DisplayableError
	if !errors.As(wrapped, &d) {
		t.Fatal("errors.As should find DisplayableError through wrapping")
	}
	if !strings.Contains(wrapped.Error(), "Bad token") {
		t.Errorf("wrapped message should contain inner message, got %q", wrapped.Error())
	}
}

type statusErr int

func (s statusErr) Error() string     { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) VendorStatus() int { return int(s) }

func TestVendorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"direct", statusErr(503), 503},
		{"wrapped", fmt.Errorf("posting: %w", statusErr(404)), 404},
		{"absent", errors.New("dial tcp: refused"), 0},
		{"nil", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := couriererrors.VendorStatus(tt.err); got != tt.want {
				t.Errorf("VendorStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}
