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

// Package integration bundles the reference plugins shipped with courier.
package integration

import (
	"github.com/tombee/courier/internal/integration/pagerduty"
	"github.com/tombee/courier/internal/integration/slack"
	"github.com/tombee/courier/internal/integration/webhook"
	"github.com/tombee/courier/internal/plugin"
)

// Builtin returns fresh definitions for every bundled plugin.
func Builtin() []*plugin.Definition {
	return []*plugin.Definition{
		webhook.Definition(),
		slack.Definition(),
		pagerduty.Definition(),
	}
}

// RegisterAll adds every bundled plugin to reg.
func RegisterAll(reg *plugin.Registry) error {
	for _, def := range Builtin() {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}
