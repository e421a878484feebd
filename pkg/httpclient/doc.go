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

// Package httpclient provides the egress HTTP client handed to plugins.
//
// Every client dials through a security.Guard, so the destination host is
// resolved and each resolved address is checked against the blacklist
// before a socket is opened. The connection is pinned to the vetted address.
//
// The client also:
//   - Rejects any scheme other than http and https, including on redirects
//   - Ignores proxy settings from the environment
//   - Requires TLS 1.2 or later with certificate verification always on
//   - Caps response bodies (1 MiB by default)
//   - Logs requests via log/slog with sensitive query parameters redacted
//   - Propagates the dispatch correlation ID as X-Correlation-ID
//
// # Usage
//
//	cfg := httpclient.DefaultConfig()
//	cfg.Guard = guard
//	client, err := httpclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	resp, err := client.PostJSON(ctx, "https://hooks.example.com/in", payload, nil)
//	if err != nil {
//	    return err
//	}
//	if err := resp.CheckStatus(); err != nil {
//	    return err
//	}
//
// No retries are performed. A failed request is reported to the caller once.
package httpclient
