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

// Package security guards outbound plugin traffic against server-side
// request forgery.
//
// A Guard resolves each destination host, rejects the dial when any
// resolved address falls inside the blacklist or the host matches a
// configured blocked-host pattern, and otherwise connects only to the
// addresses it vetted. Resolution and connection happen in one step so a
// second DNS answer cannot redirect the request.
//
// IPv4-mapped IPv6 addresses are unmapped before comparison. A hostname
// that resolves to no addresses is refused.
package security
