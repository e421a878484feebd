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

package security

import (
	"fmt"
	"net/netip"
	"strings"
)

// Reasons recorded on AddressNotAllowedError.
const (
	ReasonBlacklisted = "blacklisted_address"
	ReasonNoAddresses = "no_addresses"
	ReasonBlockedHost = "blocked_host"
	ReasonInvalidHost = "invalid_host"
)

// AddressNotAllowedError is returned when an outbound request targets a host
// that resolves (even partially) to denied address space. It is always an
// internal failure from the end user's perspective.
type AddressNotAllowedError struct {
	// Host is the hostname or literal from the request URL.
	Host string

	// Addresses is every address the host resolved to.
	Addresses []netip.Addr

	// Address is the resolved address that matched, if any.
	Address netip.Addr

	// Range is the blacklisted range Address fell into.
	Range netip.Prefix

	// Reason classifies the denial.
	Reason string
}

// Error implements the error interface.
func (e *AddressNotAllowedError) Error() string {
	switch e.Reason {
	case ReasonNoAddresses:
		return fmt.Sprintf("address not allowed: %s resolved to no addresses", e.Host)
	case ReasonBlockedHost:
		return fmt.Sprintf("address not allowed: host %s is blocked", e.Host)
	case ReasonInvalidHost:
		return fmt.Sprintf("address not allowed: invalid host %q", e.Host)
	}
	return fmt.Sprintf("address not allowed: %s resolved to %s (in %s)", e.Host, e.Address, e.Range)
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *AddressNotAllowedError) ErrorType() string {
	return "ssrf_blocked"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *AddressNotAllowedError) IsRetryable() bool {
	return false
}

// AddressList renders the resolved addresses for logging.
func (e *AddressNotAllowedError) AddressList() string {
	parts := make([]string, len(e.Addresses))
	for i, a := range e.Addresses {
		parts[i] = a.String()
	}
	return strings.Join(parts, ",")
}

// ResolutionError is returned when the target host cannot be resolved.
type ResolutionError struct {
	Host  string
	Cause error
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: %v", e.Host, e.Cause)
}

// Unwrap returns the underlying resolver error.
func (e *ResolutionError) Unwrap() error {
	return e.Cause
}

// ErrorType implements pkg/errors.ErrorClassifier.
func (e *ResolutionError) ErrorType() string {
	return "resolution_error"
}

// IsRetryable implements pkg/errors.ErrorClassifier.
func (e *ResolutionError) IsRetryable() bool {
	return false
}
