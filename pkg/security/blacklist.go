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

// blacklistSource is the literal list of non-routable and reserved address
// space that outbound plugin requests may never reach. Entries without a
// prefix length denote a single address.
var blacklistSource = []string{
	"::1",
	"::/128",
	"::1/128",
	"fe80::10",
	"fc00::/7",
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"0.0.0.0/8",
	"100.64.0.0/10",
	"169.254.0.0/16",
	"192.0.0.0/24",
	"192.0.0.0/29",
	"192.0.2.0/24",
	"192.88.99.0/24",
	"198.18.0.0/15",
	"198.51.100.0/24",
	"203.0.113.0/24",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"255.255.255.255/32",
}

// blacklist is parsed once at process start and never mutated.
var blacklist = mustParsePrefixes(blacklistSource)

// Blacklist returns a copy of the denied address ranges.
func Blacklist() []netip.Prefix {
	out := make([]netip.Prefix, len(blacklist))
	copy(out, blacklist)
	return out
}

// Denied reports whether addr falls inside any blacklisted range and, if so,
// which range matched first. IPv4-mapped IPv6 addresses are unmapped and
// zones are dropped before matching.
func Denied(addr netip.Addr) (netip.Prefix, bool) {
	addr = canonical(addr)
	if !addr.IsValid() {
		return netip.Prefix{}, false
	}
	for _, p := range blacklist {
		if p.Contains(addr) {
			return p, true
		}
	}
	return netip.Prefix{}, false
}

func canonical(addr netip.Addr) netip.Addr {
	return addr.WithZone("").Unmap()
}

// parsePrefix accepts either CIDR notation or a bare address.
func parsePrefix(s string) (netip.Prefix, error) {
	if strings.Contains(s, "/") {
		p, err := netip.ParsePrefix(s)
		if err != nil {
			return netip.Prefix{}, err
		}
		return p.Masked(), nil
	}
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return netip.Prefix{}, err
	}
	return netip.PrefixFrom(addr, addr.BitLen()), nil
}

func mustParsePrefixes(entries []string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		p, err := parsePrefix(e)
		if err != nil {
			panic(fmt.Sprintf("security: invalid blacklist entry %q: %v", e, err))
		}
		out = append(out, p)
	}
	return out
}
