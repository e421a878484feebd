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
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// matchBlockedHost returns the first pattern that matches hostname.
func matchBlockedHost(hostname string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if matchesHostPattern(hostname, pattern) {
			return pattern, true
		}
	}
	return "", false
}

// matchesHostPattern checks if a hostname matches a pattern.
// Supports:
//   - Exact match: "metadata.google.internal"
//   - Wildcard: "*.corp.example.com"
//   - CIDR notation: "192.168.1.0/24" (literal IP hosts only)
func matchesHostPattern(hostname, pattern string) bool {
	if strings.Contains(pattern, "/") {
		prefix, err := netip.ParsePrefix(pattern)
		if err != nil {
			return false
		}
		addr, err := netip.ParseAddr(hostname)
		if err != nil {
			return false
		}
		return prefix.Contains(canonical(addr))
	}

	if strings.Contains(pattern, "*") {
		// *.example.com -> **.example.com so that nested subdomains match
		globPattern := strings.ReplaceAll(pattern, "*", "**")
		matched, err := doublestar.Match(globPattern, hostname)
		return err == nil && matched
	}

	return hostname == pattern
}
