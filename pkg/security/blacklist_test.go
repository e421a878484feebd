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
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_MatchesLiteralList(t *testing.T) {
	prefixes := Blacklist()
	require.Len(t, prefixes, len(blacklistSource))

	assert.Equal(t, netip.MustParsePrefix("::1/128"), prefixes[0])
	assert.Equal(t, netip.MustParsePrefix("fe80::10/128"), prefixes[3])
	assert.Equal(t, netip.MustParsePrefix("255.255.255.255/32"), prefixes[len(prefixes)-1])
}

func TestBlacklist_ReturnsCopy(t *testing.T) {
	prefixes := Blacklist()
	prefixes[0] = netip.MustParsePrefix("8.8.8.0/24")

	_, denied := Denied(netip.MustParseAddr("::1"))
	assert.True(t, denied, "mutating the returned slice must not affect the blacklist")
}

func TestDenied(t *testing.T) {
	tests := []struct {
		addr   string
		denied bool
		within string
	}{
		{addr: "127.0.0.1", denied: true, within: "127.0.0.0/8"},
		{addr: "127.255.255.254", denied: true, within: "127.0.0.0/8"},
		{addr: "10.1.2.3", denied: true, within: "10.0.0.0/8"},
		{addr: "172.16.0.1", denied: true, within: "172.16.0.0/12"},
		{addr: "172.31.255.255", denied: true, within: "172.16.0.0/12"},
		{addr: "192.168.1.1", denied: true, within: "192.168.0.0/16"},
		{addr: "0.0.0.0", denied: true, within: "0.0.0.0/8"},
		{addr: "100.64.0.1", denied: true, within: "100.64.0.0/10"},
		{addr: "169.254.169.254", denied: true, within: "169.254.0.0/16"},
		{addr: "192.0.0.7", denied: true, within: "192.0.0.0/24"},
		{addr: "192.0.2.10", denied: true, within: "192.0.2.0/24"},
		{addr: "192.88.99.1", denied: true, within: "192.88.99.0/24"},
		{addr: "198.19.0.1", denied: true, within: "198.18.0.0/15"},
		{addr: "198.51.100.200", denied: true, within: "198.51.100.0/24"},
		{addr: "203.0.113.5", denied: true, within: "203.0.113.0/24"},
		{addr: "224.0.0.251", denied: true, within: "224.0.0.0/4"},
		{addr: "250.1.1.1", denied: true, within: "240.0.0.0/4"},
		{addr: "255.255.255.255", denied: true, within: "240.0.0.0/4"},
		{addr: "::1", denied: true, within: "::1/128"},
		{addr: "::", denied: true, within: "::/128"},
		{addr: "fe80::10", denied: true, within: "fe80::10/128"},
		{addr: "fd12:3456::1", denied: true, within: "fc00::/7"},
		{addr: "::ffff:127.0.0.1", denied: true, within: "127.0.0.0/8"},
		{addr: "::ffff:10.0.0.1", denied: true, within: "10.0.0.0/8"},

		{addr: "93.184.216.34", denied: false},
		{addr: "8.8.8.8", denied: false},
		{addr: "172.32.0.1", denied: false},
		{addr: "100.128.0.1", denied: false},
		{addr: "2606:2800:220:1:248:1893:25c8:1946", denied: false},
		// Only fe80::10 is listed, not the whole link-local block.
		{addr: "fe80::11", denied: false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			prefix, denied := Denied(netip.MustParseAddr(tt.addr))
			assert.Equal(t, tt.denied, denied)
			if tt.denied {
				assert.True(t, prefix.Contains(netip.MustParseAddr(tt.addr).Unmap()))
				assert.True(t, netip.MustParsePrefix(tt.within).Overlaps(prefix),
					"expected match inside %s, got %s", tt.within, prefix)
			}
		})
	}
}

func TestDenied_InvalidAddress(t *testing.T) {
	_, denied := Denied(netip.Addr{})
	assert.False(t, denied)
}

func TestDenied_ZoneIgnored(t *testing.T) {
	_, denied := Denied(netip.MustParseAddr("fe80::10%eth0"))
	assert.True(t, denied)
}
