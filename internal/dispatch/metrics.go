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

package dispatch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	dispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_dispatch_total",
			Help: "Dispatches by plugin, event and terminal state",
		},
		[]string{"plugin", "event", "state"},
	)

	dispatchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courier_dispatch_failures_total",
			Help: "Failed dispatches by plugin and failure kind",
		},
		[]string{"plugin", "kind"},
	)

	dispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courier_dispatch_duration_seconds",
			Help:    "Wall-clock duration of dispatches",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"plugin", "event"},
	)
)

// unknownPluginLabel replaces identifiers that are not registered so callers
// cannot grow label cardinality.
const unknownPluginLabel = "unknown"

func recordDispatch(pluginID, event string, state State, kind Kind, elapsed time.Duration) {
	dispatchTotal.WithLabelValues(pluginID, event, string(state)).Inc()
	dispatchDuration.WithLabelValues(pluginID, event).Observe(elapsed.Seconds())
	if kind != "" {
		dispatchFailures.WithLabelValues(pluginID, string(kind)).Inc()
	}
}
