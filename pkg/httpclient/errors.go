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

package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrClosed is returned when a request is made on a closed Client.
var ErrClosed = errors.New("httpclient: client is closed")

// ProtocolError is returned when a URL uses a scheme other than http or
// https. No network I/O happens for such a URL.
type ProtocolError struct {
	Scheme string
	URL    string
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("unsupported protocol %q in %s", e.Scheme, e.URL)
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *ProtocolError) ErrorType() string {
	return "protocol_rejected"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *ProtocolError) IsRetryable() bool {
	return false
}

// StatusError is returned by Response.CheckStatus for non-2xx responses.
type StatusError struct {
	StatusCode int
	Method     string
	URL        string

	// Body holds the start of the response body for diagnostics.
	Body []byte
}

// VendorStatus implements pkg/errors.VendorStatusError.
func (e *StatusError) VendorStatus() int { return e.StatusCode }

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *StatusError) ErrorType() string {
	return "http_status"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusRequestTimeout
}

// ResponseTooLargeError is returned when a response body exceeds
// Config.MaxResponseBytes.
type ResponseTooLargeError struct {
	Limit int64
	URL   string
}

// Error implements the error interface.
func (e *ResponseTooLargeError) Error() string {
	return fmt.Sprintf("response from %s exceeds %d bytes", e.URL, e.Limit)
}
