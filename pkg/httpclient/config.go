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
	"crypto/x509"
	"fmt"
	"log/slog"
	"time"

	"github.com/tombee/courier/pkg/security"
)

// DefaultMaxResponseBytes caps buffered response bodies.
const DefaultMaxResponseBytes int64 = 1 << 20

// DefaultMaxRedirects is the number of redirect hops followed.
const DefaultMaxRedirects = 5

// Config holds configuration for creating a Client.
type Config struct {
	// Timeout is the per-request timeout, including reading the body.
	// Default: 15s. Must be > 0.
	Timeout time.Duration

	// UserAgent is the User-Agent header value.
	// Required. Must be non-empty.
	UserAgent string

	// MaxResponseBytes caps how much of a response body is read.
	// Default: 1 MiB. Must be > 0.
	MaxResponseBytes int64

	// MaxRedirects is how many redirect hops are followed.
	// Default: 5. Must be >= 0.
	MaxRedirects int

	// Guard vets every dialed address. When nil a Guard with the system
	// resolver is created; there is no way to dial unguarded.
	Guard *security.Guard

	// RootCAs overrides the system certificate pool. Verification itself
	// cannot be disabled.
	RootCAs *x509.CertPool

	// Logger receives request logs. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:          15 * time.Second,
		UserAgent:        "courier/1.0",
		MaxResponseBytes: DefaultMaxResponseBytes,
		MaxRedirects:     DefaultMaxRedirects,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be > 0, got %v", c.Timeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent is required and must be non-empty")
	}
	if c.MaxResponseBytes <= 0 {
		return fmt.Errorf("max_response_bytes must be > 0, got %d", c.MaxResponseBytes)
	}
	if c.MaxRedirects < 0 {
		return fmt.Errorf("max_redirects must be >= 0, got %d", c.MaxRedirects)
	}
	return nil
}
