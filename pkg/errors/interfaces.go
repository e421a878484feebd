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

// UserVisibleError is an error whose message may be shown to the person who
// configured a destination. Plugins return a DisplayableError for this;
// every other error reaches users only as a generic message.
type UserVisibleError interface {
	error

	// IsUserVisible reports whether UserMessage may be shown as is.
	IsUserVisible() bool

	// UserMessage returns the text shown in the CLI, API and plugin log.
	UserMessage() string

	// Suggestion returns guidance for fixing the configuration, or "".
	Suggestion() string
}

// ErrorClassifier labels an error for logs, metrics and JSON output.
type ErrorClassifier interface {
	error

	// ErrorType returns the failure category, such as "ssrf_blocked".
	ErrorType() string

	// IsRetryable reports whether a later redelivery could succeed.
	IsRetryable() bool
}

// VendorStatusError is implemented by errors that carry the HTTP status a
// vendor answered with.
type VendorStatusError interface {
	error

	VendorStatus() int
}
