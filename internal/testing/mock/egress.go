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

package mock

import (
	"context"
	"net"
	"net/netip"

	"github.com/tombee/courier/pkg/security"
)

// HostTable is a fixed DNS answer table. Each host resolves to exactly one
// address.
type HostTable map[string]string

// LookupNetIP implements security.Resolver.
func (h HostTable) LookupNetIP(_ context.Context, _ string, host string) ([]netip.Addr, error) {
	addr, ok := h[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return []netip.Addr{netip.MustParseAddr(addr)}, nil
}

// PublicHosts maps vendor-like hostnames onto public and private addresses.
var PublicHosts = HostTable{
	"hooks.example.com":    "93.184.216.34",
	"slack.example.com":    "93.184.216.35",
	"events.example.com":   "93.184.216.36",
	"internal.example.com": "10.0.0.7",
	"metadata.example.com": "169.254.169.254",
}

// RoutedGuard vets hosts against table with the real blacklist and then
// connects every vetted dial to target. Denied hosts never reach target.
func RoutedGuard(target string, table HostTable) *security.Guard {
	return security.NewGuard(
		security.WithResolver(table),
		security.WithDialer(func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, target)
		}),
	)
}
