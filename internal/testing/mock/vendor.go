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
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/tombee/courier/pkg/security"
)

// Request is one call received by a Vendor.
type Request struct {
	Method string
	Host   string
	Path   string
	Header http.Header
	Body   []byte
}

// JSON decodes the request body into v.
func (r Request) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Vendor is a recording fake vendor API.
type Vendor struct {
	Server *httptest.Server

	mu       sync.Mutex
	requests []Request
	status   int
	body     string
	header   http.Header
}

// NewVendor starts a Vendor answering 200 with an empty JSON object. The
// server is closed when the test ends.
func NewVendor(t testing.TB) *Vendor {
	t.Helper()
	v := &Vendor{status: http.StatusOK, body: "{}", header: http.Header{}}
	v.Server = httptest.NewServer(http.HandlerFunc(v.serve))
	t.Cleanup(v.Server.Close)
	return v
}

// Respond sets the status and body returned for subsequent calls.
func (v *Vendor) Respond(status int, body string) *Vendor {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.status = status
	v.body = body
	return v
}

// WithHeader adds a response header.
func (v *Vendor) WithHeader(key, value string) *Vendor {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.header.Set(key, value)
	return v
}

// Requests returns a copy of everything received so far.
func (v *Vendor) Requests() []Request {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Request, len(v.requests))
	copy(out, v.requests)
	return out
}

// Last returns the most recent request and whether there was one.
func (v *Vendor) Last() (Request, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.requests) == 0 {
		return Request{}, false
	}
	return v.requests[len(v.requests)-1], true
}

// Guard returns a guard that routes PublicHosts to this vendor.
func (v *Vendor) Guard() *security.Guard {
	return RoutedGuard(v.Server.Listener.Addr().String(), PublicHosts)
}

func (v *Vendor) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	v.mu.Lock()
	v.requests = append(v.requests, Request{
		Method: r.Method,
		Host:   r.Host,
		Path:   r.URL.RequestURI(),
		Header: r.Header.Clone(),
		Body:   body,
	})
	status, respBody := v.status, v.body
	for k, vals := range v.header {
		w.Header()[k] = vals
	}
	v.mu.Unlock()

	if w.Header().Get("Content-Type") == "" && strings.HasPrefix(strings.TrimSpace(respBody), "{") {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, respBody)
}
