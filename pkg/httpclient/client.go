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
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/tombee/courier/pkg/security"
)

// Client is a guarded HTTP client owned by a single plugin instance.
// It is safe for concurrent use until Close is called.
type Client struct {
	http      *http.Client
	transport *http.Transport
	maxBody   int64

	mu      sync.RWMutex
	headers http.Header
	closed  bool
}

// New creates a new Client with the given configuration.
// The client includes:
//   - Address vetting on every dial through cfg.Guard
//   - Scheme checks on the initial URL and on each redirect hop
//   - Request logging with sanitized URLs
//   - User-Agent header injection
//   - Correlation ID propagation
//   - TLS 1.2 minimum with certificate verification
//
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	guard := cfg.Guard
	if guard == nil {
		guard = security.NewGuard(security.WithLogger(cfg.Logger))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	base := &http.Transport{
		// Environment proxies would connect to an unvetted address.
		Proxy:       nil,
		DialContext: guard.DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    cfg.RootCAs,
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	maxRedirects := cfg.MaxRedirects
	return &Client{
		http: &http.Client{
			Transport: newLoggingTransport(base, cfg.UserAgent, logger),
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return checkScheme(req.URL)
			},
		},
		transport: base,
		maxBody:   cfg.MaxResponseBytes,
		headers:   make(http.Header),
	}, nil
}

// SetHeader sets a header sent with every subsequent request.
func (c *Client) SetHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// SetBasicAuth sets HTTP basic authentication for every subsequent request.
func (c *Client) SetBasicAuth(username, password string) {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	c.SetHeader("Authorization", "Basic "+token)
}

// Get issues a GET request. params are merged into the URL query.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers http.Header) (*Response, error) {
	if len(params) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid URL: %w", err)
		}
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
		rawURL = u.String()
	}
	return c.Do(ctx, http.MethodGet, rawURL, nil, headers)
}

// Post issues a POST request with the given body.
func (c *Client) Post(ctx context.Context, rawURL string, body io.Reader, headers http.Header) (*Response, error) {
	return c.Do(ctx, http.MethodPost, rawURL, body, headers)
}

// PostJSON encodes v as JSON and POSTs it.
func (c *Client) PostJSON(ctx context.Context, rawURL string, v any, headers http.Header) (*Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	h := headers.Clone()
	if h == nil {
		h = make(http.Header)
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json")
	}
	return c.Do(ctx, http.MethodPost, rawURL, bytes.NewReader(data), h)
}

// Do sends a request and buffers the response body. Non-2xx statuses are
// not errors here; call Response.CheckStatus.
func (c *Client) Do(ctx context.Context, method, rawURL string, body io.Reader, headers http.Header) (*Response, error) {
	c.mu.RLock()
	closed := c.closed
	defaults := c.headers.Clone()
	c.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if err := checkScheme(u); err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("invalid URL %s: missing host", sanitizeURL(u))
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range defaults {
		req.Header[k] = vs
	}
	for k, vs := range headers {
		req.Header[k] = vs
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		return nil, &ResponseTooLargeError{Limit: c.maxBody, URL: sanitizeURL(u)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       data,
		method:     method,
		url:        sanitizeURL(resp.Request.URL),
	}, nil
}

// Close releases idle connections. Requests made after Close fail with
// ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.transport.CloseIdleConnections()
	return nil
}

func checkScheme(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	}
	return &ProtocolError{Scheme: u.Scheme, URL: sanitizeURL(u)}
}
