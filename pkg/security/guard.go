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
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/netip"
	"strings"
	"time"
)

// Resolver resolves a hostname to its IP addresses.
// *net.Resolver satisfies this interface.
type Resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// DialFunc opens a connection to an already vetted address.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// Guard vets outbound destinations against the blacklist before any socket
// is opened. A Guard is immutable after construction and safe for
// concurrent use.
type Guard struct {
	resolver     Resolver
	dial         DialFunc
	blockedHosts []string
	logger       *slog.Logger
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithResolver replaces the system resolver.
func WithResolver(r Resolver) GuardOption {
	return func(g *Guard) {
		if r != nil {
			g.resolver = r
		}
	}
}

// WithDialer replaces the function used to connect to vetted addresses.
func WithDialer(d DialFunc) GuardOption {
	return func(g *Guard) {
		if d != nil {
			g.dial = d
		}
	}
}

// WithBlockedHosts adds hostname patterns that are denied before
// resolution. Patterns support exact names, CIDRs and "*.example.com" globs.
func WithBlockedHosts(patterns ...string) GuardOption {
	return func(g *Guard) {
		for _, p := range patterns {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				g.blockedHosts = append(g.blockedHosts, p)
			}
		}
	}
}

// WithLogger sets the logger used for denial records.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGuard creates a Guard using the system resolver and a standard dialer.
func NewGuard(opts ...GuardOption) *Guard {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	g := &Guard{
		resolver: net.DefaultResolver,
		dial:     dialer.DialContext,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Check resolves host and returns the addresses if none of them is denied.
// It fails closed: a host that resolves to zero addresses is rejected.
func (g *Guard) Check(ctx context.Context, host string) ([]netip.Addr, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.Trim(host, "[]")), ".")
	if host == "" {
		return nil, g.deny(&AddressNotAllowedError{Host: host, Reason: ReasonInvalidHost})
	}

	if pattern, ok := matchBlockedHost(host, g.blockedHosts); ok {
		g.logger.Debug("host matched blocked pattern", "host", host, "pattern", pattern)
		return nil, g.deny(&AddressNotAllowedError{Host: host, Reason: ReasonBlockedHost})
	}

	addrs, err := g.resolve(ctx, host)
	if err != nil {
		return nil, err
	}

	if len(addrs) == 0 {
		return nil, g.deny(&AddressNotAllowedError{Host: host, Reason: ReasonNoAddresses})
	}

	for _, addr := range addrs {
		if prefix, denied := Denied(addr); denied {
			return nil, g.deny(&AddressNotAllowedError{
				Host:      host,
				Addresses: addrs,
				Address:   canonical(addr),
				Range:     prefix,
				Reason:    ReasonBlacklisted,
			})
		}
	}

	return addrs, nil
}

// DialContext vets the host in address and connects to the first vetted
// address that accepts a connection. The host is resolved exactly once, so
// a DNS answer cannot change between vetting and connecting.
func (g *Guard) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, fmt.Errorf("invalid dial address %q: %w", address, err)
	}

	addrs, err := g.Check(ctx, host)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for _, addr := range addrs {
		conn, err := g.dial(ctx, network, net.JoinHostPort(canonical(addr).String(), port))
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (g *Guard) resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.Addr{addr}, nil
	}

	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, &ResolutionError{Host: host, Cause: err}
	}

	// Invalid entries are dropped here; an all-invalid answer falls through
	// to the zero-address denial in Check.
	valid := addrs[:0:0]
	for _, a := range addrs {
		if a.IsValid() {
			valid = append(valid, a)
		}
	}
	return valid, nil
}

func (g *Guard) deny(err *AddressNotAllowedError) error {
	recordBlocked(err.Reason)
	g.logger.Warn("outbound request blocked",
		"host", err.Host,
		"resolved", err.AddressList(),
		"reason", err.Reason,
	)
	return err
}
