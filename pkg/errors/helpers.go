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
	"errors"
	"fmt"
)

// Wrap creates a new error that wraps the given error with additional context.
// If err is nil, returns nil.
//
// Usage:
//
//	if err := def.Validate(); err != nil {
//	    return errors.Wrap(err, "registering plugin")
//	}
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf creates a new error that wraps the given error with formatted context.
// If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// New creates a new error with the given message.
func New(message string) error {
	return errors.New(message)
}

// AsDisplayable returns the first DisplayableError in err's chain.
func AsDisplayable(err error) (*DisplayableError, bool) {
	var d *DisplayableError
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsDisplayable reports whether err's chain carries a message meant for the
// user.
func IsDisplayable(err error) bool {
	_, ok := AsDisplayable(err)
	return ok
}

// UserMessage returns the message to show the user for err, or fallback when
// err carries nothing user visible.
//
//	msg := errors.UserMessage(err, "An unexpected error occurred.")
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if d, ok := AsDisplayable(err); ok {
		return d.Message
	}
	var uv UserVisibleError
	if errors.As(err, &uv) && uv.IsUserVisible() {
		return uv.UserMessage()
	}
	return fallback
}

// ErrorType returns the classifier type of the first ErrorClassifier in
// err's chain, or "" when none is found.
func ErrorType(err error) string {
	var c ErrorClassifier
	if errors.As(err, &c) {
		return c.ErrorType()
	}
	return ""
}

// VendorStatus returns the vendor HTTP status of the first VendorStatusError
// in err's chain, or 0.
func VendorStatus(err error) int {
	var v VendorStatusError
	if errors.As(err, &v) {
		return v.VendorStatus()
	}
	return 0
}
