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

package shared

import (
	"log/slog"

	"github.com/tombee/courier/internal/config"
	"github.com/tombee/courier/internal/dispatch"
	"github.com/tombee/courier/internal/integration"
	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/plugin"
	"github.com/tombee/courier/pkg/security"
)

// Runtime bundles what commands need to dispatch.
type Runtime struct {
	Config     *config.Config
	Logger     *slog.Logger
	Registry   *plugin.Registry
	Dispatcher *dispatch.Dispatcher
}

// LoadConfig resolves and loads the configuration named by --config.
func LoadConfig() (*config.Config, error) {
	path, err := config.ResolvePath(GetConfigPath())
	if err != nil {
		return nil, NewConfigError("failed to locate config file", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, NewConfigError("failed to load configuration", err)
	}
	return cfg, nil
}

// NewLogger builds the command logger. --verbose lowers the level to debug
// and --quiet raises it to error.
func NewLogger(cfg *config.Config) *slog.Logger {
	lc := cfg.LoggerConfig()
	switch {
	case GetVerbose():
		lc.Level = "debug"
	case GetQuiet():
		lc.Level = "error"
	}
	return log.New(lc)
}

// NewRegistry returns a registry holding every bundled plugin.
func NewRegistry() (*plugin.Registry, error) {
	reg := plugin.NewRegistry()
	if err := integration.RegisterAll(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewRuntime loads configuration and wires the dispatcher.
func NewRuntime() (*Runtime, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg)

	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}

	httpCfg, err := cfg.HTTPClientConfig()
	if err != nil {
		return nil, NewConfigError("invalid http settings", err)
	}

	guard := security.NewGuard(
		security.WithBlockedHosts(cfg.Egress.BlockedHosts...),
		security.WithLogger(logger),
	)

	return &Runtime{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Dispatcher: dispatch.New(reg, dispatch.Options{
			Deadline: cfg.Dispatch.Deadline,
			HTTP:     httpCfg,
			Guard:    guard,
			Logger:   logger,
		}),
	}, nil
}
