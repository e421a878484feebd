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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var egressBlocked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "courier_egress_blocked_total",
		Help: "Outbound plugin requests rejected by the address guard, by reason",
	},
	[]string{"reason"},
)

// recordBlocked increments the blocked egress counter.
// reason is one of the Reason* constants.
func recordBlocked(reason string) {
	egressBlocked.WithLabelValues(reason).Inc()
}
