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

	couriererrors "github.com/tombee/courier/pkg/errors"
)

func TestWrap(t *testing.T) {
	t.Run("wraps error with context", func(t *testing.T) {
		original := errors.New("original error")
		wrapped := couriererrors.Wrap(original, "additional context")

		if wrapped == nil {
			t.Fatal("Wrap should not return nil for non-nil error")
		}
		msg := wrapped.Error()
		if !strings.Contains(msg, "additional context") || !strings.Contains(msg, "original error") {
			t.Errorf("unexpected wrapped message: %s", msg)
		}
		if !errors.Is(wrapped, original) {
			t.Error("wrapped error should match original with errors.Is")
		}
	})

	t.Run("returns nil for nil error", func(t *testing.T) {
		if wrapped := couriererrors.Wrap(nil, "context"); wrapped != nil {
			t.Errorf("Wrap(nil, _) should return nil, got: %v", wrapped)
		}
	})
}

func TestWrapf(t *testing.T) {
	original := errors.New("connection failed")
	wrapped := couriererrors.Wrapf(original, "connecting to %s:%d", "hooks.example.com", 443)

	if !strings.Contains(wrapped.Error(), "connecting to hooks.example.com:443") {
		t.Errorf("wrapped error should contain formatted context, got: %s", wrapped)
	}
	if couriererrors.Wrapf(nil, "x %d", 1) != nil {
		t.Error("Wrapf(nil, ...) should return nil")
	}
}

func TestIsDisplayable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("boom"), false},
		{"direct", couriererrors.NewDisplayable("Invalid channel"), true},
		{"wrapped", fmt.Errorf("outer: %w", couriererrors.NewDisplayable("Invalid channel")), true},
		{"other typed", &couriererrors.NotFoundError{Resource: "plugin", ID: "x"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := couriererrors.IsDisplayable(tt.err); got != tt.want {
				t.Errorf("IsDisplayable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	const fallback = "something went wrong"

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"internal detail is hidden", errors.New("dial tcp 10.0.0.1:443: refused"), fallback},
		{"displayable passes through", couriererrors.NewDisplayable("Channel not found"), "Channel not found"},
		{
			name: "wrapped displayable ignores wrapper text",
			err:  fmt.Errorf("slack handler: %w", couriererrors.NewDisplayable("Channel not found")),
			want: "Channel not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := couriererrors.UserMessage(tt.err, fallback); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	if got := couriererrors.ErrorType(errors.New("x")); got != "" {
		t.Errorf("ErrorType(plain) = %q, want empty", got)
	}
	wrapped := fmt.Errorf("ctx: %w", &couriererrors.ValidationError{Message: "bad"})
	if got := couriererrors.ErrorType(wrapped); got != "validation" {
		t.Errorf("ErrorType(wrapped) = %q, want validation", got)
	}
}
