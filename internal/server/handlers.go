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

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tombee/courier/internal/dispatch"
	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/plugin"
	"github.com/tombee/courier/internal/tracing"
)

// DispatchRequest is the body of POST /v1/plugins/{id}/dispatch.
type DispatchRequest struct {
	Event   string         `json:"event"`
	Config  map[string]any `json:"config"`
	Payload map[string]any `json:"payload"`
}

// DestinationRequest is the body of POST /v1/destinations/{name}/dispatch.
type DestinationRequest struct {
	Event   string         `json:"event"`
	Payload map[string]any `json:"payload"`
}

// DispatchResponse reports a dispatch outcome.
type DispatchResponse struct {
	State         dispatch.State `json:"state"`
	Identifiers   plugin.Result  `json:"identifiers,omitempty"`
	Error         string         `json:"error,omitempty"`
	Suggestion    string         `json:"suggestion,omitempty"`
	CorrelationID string         `json:"correlation_id"`
}

// HealthResponse is the response format for /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Plugins int    `json:"plugins"`
}

// DestinationInfo describes a configured destination without its config
// values, which may hold secrets.
type DestinationInfo struct {
	Name   string   `json:"name"`
	Plugin string   `json:"plugin"`
	Events []string `json:"events"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(s.startedAt).Round(time.Second).String(),
		Plugins: s.registry.Len(),
	})
}

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"plugins": s.registry.List()})
}

func (s *Server) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	def, ok := s.registry.Lookup(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "plugin not found")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.registry.Lookup(id); !ok {
		writeError(w, http.StatusNotFound, "plugin not found")
		return
	}

	var req DispatchRequest
	if !s.decode(w, r, &req) {
		return
	}
	event, err := plugin.ParseEvent(req.Event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.dispatch(w, r, dispatch.Request{
		Plugin:  id,
		Event:   event,
		Config:  req.Config,
		Payload: req.Payload,
	})
}

func (s *Server) handleListDestinations(w http.ResponseWriter, r *http.Request) {
	out := make([]DestinationInfo, 0, len(s.cfg.Destinations))
	for name, dest := range s.cfg.Destinations {
		events := dest.Events
		if len(events) == 0 {
			if def, ok := s.registry.Lookup(dest.Plugin); ok {
				for _, e := range def.DefaultEvents() {
					events = append(events, e.String())
				}
			}
		}
		if events == nil {
			events = []string{}
		}
		out = append(out, DestinationInfo{Name: name, Plugin: dest.Plugin, Events: events})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, map[string]any{"destinations": out})
}

func (s *Server) handleDestinationDispatch(w http.ResponseWriter, r *http.Request) {
	dest, ok := s.cfg.Destinations[chi.URLParam(r, "name")]
	if !ok {
		writeError(w, http.StatusNotFound, "destination not found")
		return
	}
	def, ok := s.registry.Lookup(dest.Plugin)
	if !ok {
		writeError(w, http.StatusNotFound, "plugin not found")
		return
	}

	var req DestinationRequest
	if !s.decode(w, r, &req) {
		return
	}
	event, err := plugin.ParseEvent(req.Event)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if event != plugin.EventVerification && !dest.Receives(def, event) {
		writeError(w, http.StatusConflict, "destination does not receive "+event.String())
		return
	}

	s.dispatch(w, r, dispatch.Request{
		Plugin:  def.Identifier(),
		Event:   event,
		Config:  dest.Config,
		Payload: req.Payload,
	})
}

// dispatch runs req and writes the classified outcome: 200 on success, 422
// for displayable failures and 502 for everything else.
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, req dispatch.Request) {
	corrID := tracing.FromContextOrEmpty(r.Context())
	req.Log = log.Sink(s.logger,
		slog.String(log.PluginKey, req.Plugin),
		slog.String(log.CorrelationIDKey, corrID.String()),
	)

	out, err := s.dispatcher.Dispatch(r.Context(), req)
	if err == nil {
		writeJSON(w, http.StatusOK, DispatchResponse{
			State:         out.State,
			Identifiers:   out.Identifiers,
			CorrelationID: out.CorrelationID,
		})
		return
	}

	var f *dispatch.Failure
	if !errors.As(err, &f) {
		writeJSON(w, http.StatusBadGateway, DispatchResponse{
			State:         dispatch.StateFailedInternal,
			Error:         dispatch.GenericMessage,
			CorrelationID: corrID.String(),
		})
		return
	}

	status := http.StatusBadGateway
	if f.Kind == dispatch.KindDisplayable {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, DispatchResponse{
		State:         f.State,
		Error:         f.UserMessage(),
		Suggestion:    f.Suggestion(),
		CorrelationID: f.CorrelationID,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
