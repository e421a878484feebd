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

package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/tombee/courier/internal/plugin"
	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
	"github.com/tombee/courier/pkg/security"
)

// State is a step in the dispatch lifecycle.
type State string

const (
	StateCreated           State = "created"
	StateDispatching       State = "dispatching"
	StateSucceeded         State = "succeeded"
	StateFailedDisplayable State = "failed_displayable"
	StateFailedInternal    State = "failed_internal"
	StateTimedOut          State = "timed_out"
)

// Terminal reports whether no further transition can follow s.
func (s State) Terminal() bool {
	switch s {
	case StateSucceeded, StateFailedDisplayable, StateFailedInternal, StateTimedOut:
		return true
	}
	return false
}

// Kind classifies a failed dispatch.
type Kind string

const (
	KindDisplayable  Kind = "configuration_display"
	KindSSRFBlocked  Kind = "ssrf_blocked"
	KindProtocol     Kind = "protocol_rejected"
	KindTimeout      Kind = "timeout"
	KindUnclassified Kind = "unclassified"
)

// GenericMessage is shown to end users for every non-displayable failure.
const GenericMessage = "An unexpected error occurred while delivering the event."

// ErrNoHandler is returned when the plugin declares no handler for the
// requested event.
var ErrNoHandler = errors.New("plugin has no handler for event")

// Failure is the error returned by Dispatch for every unsuccessful delivery.
type Failure struct {
	Plugin        string
	Event         plugin.Event
	Kind          Kind
	State         State
	CorrelationID string

	// StatusCode is the vendor HTTP status when the failure came from a
	// non-2xx response, otherwise zero.
	StatusCode int

	// Err is the underlying cause. It is never shown to end users unless
	// Kind is KindDisplayable.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("dispatch %s/%s: %s: %v", f.Plugin, f.Event, f.Kind, f.Err)
}

// Unwrap returns the underlying cause.
func (f *Failure) Unwrap() error {
	return f.Err
}

// UserMessage returns the displayable message verbatim, or GenericMessage.
func (f *Failure) UserMessage() string {
	if f.Kind == KindDisplayable {
		return couriererrors.UserMessage(f.Err, GenericMessage)
	}
	return GenericMessage
}

// IsUserVisible implements pkg/errors.UserVisibleError.
func (f *Failure) IsUserVisible() bool {
	return f.Kind == KindDisplayable
}

// Suggestion implements pkg/errors.UserVisibleError.
func (f *Failure) Suggestion() string {
	if d, ok := couriererrors.AsDisplayable(f.Err); ok && f.Kind == KindDisplayable {
		return d.Hint
	}
	return ""
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (f *Failure) ErrorType() string {
	return string(f.Kind)
}

// IsRetryable implements pkg/errors.ErrorClassifier. Courier does not retry
// but callers scheduling their own redelivery may use it.
func (f *Failure) IsRetryable() bool {
	if f.Kind == KindTimeout {
		return true
	}
	var status *httpclient.StatusError
	return errors.As(f.Err, &status) && status.IsRetryable()
}

// classify maps a handler error onto a failure kind and terminal state.
// DisplayableError wins over everything else found in the chain.
func classify(err error) (Kind, State, int) {
	code := couriererrors.VendorStatus(err)

	var (
		blocked  *security.AddressNotAllowedError
		protocol *httpclient.ProtocolError
		timeout  *couriererrors.TimeoutError
	)
	switch {
	case couriererrors.IsDisplayable(err):
		return KindDisplayable, StateFailedDisplayable, code
	case errors.As(err, &blocked):
		return KindSSRFBlocked, StateFailedInternal, code
	case errors.As(err, &protocol):
		return KindProtocol, StateFailedInternal, code
	case errors.As(err, &timeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout, StateTimedOut, code
	}
	return KindUnclassified, StateFailedInternal, code
}
