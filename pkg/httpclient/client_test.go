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
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/courier/internal/tracing"
	"github.com/tombee/courier/pkg/security"
)

// hostTable is a fixed DNS answer table for the guard.
type hostTable map[string]string

func (h hostTable) LookupNetIP(_ context.Context, _ string, host string) ([]netip.Addr, error) {
	addr, ok := h[host]
	if !ok {
		return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
	}
	return []netip.Addr{netip.MustParseAddr(addr)}, nil
}

// routedGuard vets hosts against table and then connects every vetted dial
// to srv, standing in for the real public endpoint.
func routedGuard(srv *httptest.Server, table hostTable) *security.Guard {
	target := srv.Listener.Addr().String()
	return security.NewGuard(
		security.WithResolver(table),
		security.WithDialer(func(ctx context.Context, network, _ string) (net.Conn, error) {
			var d net.Dialer
			return d.DialContext(ctx, network, target)
		}),
	)
}

var publicHosts = hostTable{
	"example.com":          "93.184.216.34",
	"hooks.example.com":    "93.184.216.35",
	"internal.example.com": "10.0.0.7",
	"metadata.example.com": "169.254.169.254",
}

func newTestClient(t *testing.T, srv *httptest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Guard = routedGuard(srv, publicHosts)
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_PostJSON_PublicHost(t *testing.T) {
	var got struct {
		UserAgent     string
		ContentType   string
		CorrelationID string
		Body          map[string]any
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.UserAgent = r.Header.Get("User-Agent")
		got.ContentType = r.Header.Get("Content-Type")
		got.CorrelationID = r.Header.Get(tracing.HeaderCorrelationID)
		_ = json.NewDecoder(r.Body).Decode(&got.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	id := tracing.NewCorrelationID()
	ctx := tracing.ToContext(context.Background(), id)

	resp, err := c.PostJSON(ctx, "http://hooks.example.com/in", map[string]string{"event": "verification"}, nil)
	require.NoError(t, err)
	require.NoError(t, resp.CheckStatus())

	var body struct{ OK bool }
	require.NoError(t, resp.JSON(&body))
	assert.True(t, body.OK)

	assert.Equal(t, "courier/1.0", got.UserAgent)
	assert.Equal(t, "application/json", got.ContentType)
	assert.Equal(t, id.String(), got.CorrelationID)
	assert.Equal(t, "verification", got.Body["event"])
}

func TestClient_ServerErrorIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Get(context.Background(), "http://example.com/status?token=abc", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var statusErr *StatusError
	require.ErrorAs(t, resp.CheckStatus(), &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, http.MethodGet, statusErr.Method)
	assert.NotContains(t, statusErr.URL, "abc", "secrets must not appear in error URLs")
	assert.Contains(t, string(statusErr.Body), "upstream exploded")
	assert.True(t, statusErr.IsRetryable())
}

func TestClient_RejectsNonHTTPSchemes(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	for _, raw := range []string{"ftp://example.com/file", "file:///etc/passwd", "gopher://example.com"} {
		_, err := c.Get(context.Background(), raw, nil, nil)
		var protoErr *ProtocolError
		require.ErrorAs(t, err, &protoErr, raw)
		assert.Equal(t, "protocol_rejected", protoErr.ErrorType())
	}
	assert.Zero(t, hits.Load())
}

func TestClient_BlocksDeniedAddresses(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	for _, raw := range []string{
		"http://127.0.0.1/",
		"http://[::1]:8080/",
		"http://internal.example.com/hook",
		"https://metadata.example.com/latest/meta-data/",
	} {
		_, err := c.Post(context.Background(), raw, strings.NewReader("{}"), nil)
		var blocked *security.AddressNotAllowedError
		require.ErrorAs(t, err, &blocked, raw)
	}
	assert.Zero(t, hits.Load(), "no request may reach the network for a denied address")
}

func TestClient_RealDialerBlocksLoopback(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	// srv listens on 127.0.0.1; an unmodified guard must refuse to reach it.
	cfg := DefaultConfig()
	cfg.Guard = security.NewGuard()
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(context.Background(), srv.URL, nil, nil)
	var blocked *security.AddressNotAllowedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, security.ReasonBlacklisted, blocked.Reason)
	assert.Zero(t, hits.Load())
}

func TestClient_RedirectToDeniedHostIsBlocked(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Redirect(w, r, "http://metadata.example.com/latest", http.StatusFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Get(context.Background(), "http://example.com/start", nil, nil)

	var blocked *security.AddressNotAllowedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, "metadata.example.com", blocked.Host)
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_RedirectToOtherSchemeIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "ftp://example.com/dump", http.StatusFound)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Get(context.Background(), "http://example.com/", nil, nil)

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, "ftp", protoErr.Scheme)
}

func TestClient_RedirectLimit(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := hits.Add(1)
		if n <= 5 {
			http.Redirect(w, r, "/hop", http.StatusFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Get(context.Background(), "http://example.com/", nil, nil)
	require.NoError(t, err, "five redirect hops are allowed")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	hits.Store(-10)
	_, err = c.Get(context.Background(), "http://example.com/", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 5 redirects")
}

func TestClient_IgnoresEnvironmentProxy(t *testing.T) {
	t.Setenv("HTTP_PROXY", "http://proxy.invalid:3128")
	t.Setenv("HTTPS_PROXY", "http://proxy.invalid:3128")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	resp, err := c.Get(context.Background(), "http://example.com/", nil, nil)
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestClient_TLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("secure"))
	}))
	defer srv.Close()

	t.Run("trusted root", func(t *testing.T) {
		roots := srv.Client().Transport.(*http.Transport).TLSClientConfig.RootCAs
		c := newTestClient(t, srv, func(cfg *Config) { cfg.RootCAs = roots })

		resp, err := c.Get(context.Background(), "https://example.com/", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "secure", string(resp.Body))
	})

	t.Run("untrusted certificate", func(t *testing.T) {
		c := newTestClient(t, srv)

		_, err := c.Get(context.Background(), "https://example.com/", nil, nil)
		require.Error(t, err)
		var blocked *security.AddressNotAllowedError
		assert.False(t, errors.As(err, &blocked))
	})
}

func TestClient_ResponseTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 11)))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, func(cfg *Config) { cfg.MaxResponseBytes = 10 })
	_, err := c.Get(context.Background(), "http://example.com/", nil, nil)

	var tooLarge *ResponseTooLargeError
	require.ErrorAs(t, err, &tooLarge)
	assert.Equal(t, int64(10), tooLarge.Limit)
}

func TestClient_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "http://example.com/slow", nil, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_HeadersAndParams(t *testing.T) {
	var gotAuth, gotCustom, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCustom = r.Header.Get("X-Routing-Key")
		gotQuery = r.URL.RawQuery
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	c.SetBasicAuth("user", "pass")
	c.SetHeader("X-Routing-Key", "default")

	_, err := c.Get(context.Background(), "http://example.com/search?a=1",
		url.Values{"b": {"2"}},
		http.Header{"X-Routing-Key": {"override"}},
	)
	require.NoError(t, err)

	assert.Equal(t, "Basic dXNlcjpwYXNz", gotAuth)
	assert.Equal(t, "override", gotCustom)
	assert.Equal(t, "a=1&b=2", gotQuery)
}

func TestClient_Closed(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, srv)
	require.NoError(t, c.Close())

	_, err := c.Get(context.Background(), "http://example.com/", nil, nil)
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClient_MissingHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := newTestClient(t, srv)
	_, err := c.Get(context.Background(), "http:///path", nil, nil)
	assert.ErrorContains(t, err, "missing host")
}
