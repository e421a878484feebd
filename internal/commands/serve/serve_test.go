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

package serve

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/courier/internal/commands/shared"
	"github.com/tombee/courier/internal/config"
	"github.com/tombee/courier/internal/dispatch"
	"github.com/tombee/courier/internal/log"
)

func newTestRuntime(t *testing.T) *shared.Runtime {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Destinations = map[string]config.Destination{
		"ops": {Plugin: "webhook", Config: map[string]any{"url": "https://hooks.example.com/ops"}},
	}

	reg, err := shared.NewRegistry()
	require.NoError(t, err)
	logger := log.New(&log.Config{Level: "error", Output: io.Discard})
	return &shared.Runtime{
		Config:     cfg,
		Logger:     logger,
		Registry:   reg,
		Dispatcher: dispatch.New(reg, dispatch.Options{Logger: logger}),
	}
}

func TestRun_ServesUntilCancelled(t *testing.T) {
	rt := newTestRuntime(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addrCh := make(chan string, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, rt, func(addr string) { addrCh <- addr })
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err := <-errCh:
		t.Fatalf("server exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + "/v1/destinations")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Destinations []struct {
			Name   string `json:"name"`
			Plugin string `json:"plugin"`
		} `json:"destinations"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Destinations, 1)
	assert.Equal(t, "ops", body.Destinations[0].Name)
	assert.Equal(t, "webhook", body.Destinations[0].Plugin)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRun_RejectsUnknownDestinationPlugin(t *testing.T) {
	rt := newTestRuntime(t)
	rt.Config.Destinations["broken"] = config.Destination{Plugin: "carrier-pigeon"}

	err := run(context.Background(), rt, nil)
	assert.Equal(t, shared.ExitConfigError, shared.ExitCode(err))
}
