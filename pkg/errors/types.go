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

package errors

import (
	"fmt"
	"time"
)

// DisplayableError is a failure whose message is safe and useful to show to
// the user who configured a destination, for example "Channel not found".
// The message is passed through verbatim; Cause is kept for logs only.
type DisplayableError struct {
	// Message is shown to the user unchanged.
	Message string

	// Hint provides actionable guidance for fixing the configuration.
	Hint string

	// Cause is the underlying error, never shown to the user.
	Cause error
}

// NewDisplayable creates a DisplayableError with the given message.
func NewDisplayable(message string) *DisplayableError {
	return &DisplayableError{Message: message}
}

// Displayablef creates a DisplayableError with a formatted message.
func Displayablef(format string, args ...interface{}) *DisplayableError {
	return &DisplayableError{Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *DisplayableError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *DisplayableError) Unwrap() error {
	return e.Cause
}

// IsUserVisible implements UserVisibleError.
func (e *DisplayableError) IsUserVisible() bool {
	return true
}

// UserMessage implements UserVisibleError.
func (e *DisplayableError) UserMessage() string {
	return e.Message
}

// Suggestion implements UserVisibleError.
func (e *DisplayableError) Suggestion() string {
	return e.Hint
}

// ErrorType implements ErrorClassifier.
func (e *DisplayableError) ErrorType() string {
	return "configuration_display"
}

// IsRetryable implements ErrorClassifier. A configuration problem needs a
// human to fix it.
func (e *DisplayableError) IsRetryable() bool {
	return false
}

// ValidationError represents user input validation failures.
// Use this for malformed requests, unknown events or bad config files.
type ValidationError struct {
	// Field identifies which input field failed validation
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType implements ErrorClassifier.
func (e *ValidationError) ErrorType() string {
	return "validation"
}

// IsRetryable implements ErrorClassifier.
func (e *ValidationError) IsRetryable() bool {
	return false
}

// NotFoundError represents a resource not found error.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "plugin", "destination")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrorType implements ErrorClassifier.
func (e *NotFoundError) ErrorType() string {
	return "not_found"
}

// IsRetryable implements ErrorClassifier.
func (e *NotFoundError) IsRetryable() bool {
	return false
}

// ConfigError represents problems with the host configuration file or
// environment.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "dispatch.deadline")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// TimeoutError represents an operation that exceeded its deadline.
type TimeoutError struct {
	// Operation describes what timed out (e.g., "dispatch slack/verification")
	Operation string

	// Duration is the deadline that was exceeded
	Duration time.Duration

	// Cause is the underlying error (if any)
	Cause error
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// ErrorType implements ErrorClassifier.
func (e *TimeoutError) ErrorType() string {
	return "timeout"
}

// IsRetryable implements ErrorClassifier.
func (e *TimeoutError) IsRetryable() bool {
	return true
}
