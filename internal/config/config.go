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

// Package config loads courier configuration from a YAML file and
// COURIER_* environment variables.
package config

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/tombee/courier/internal/log"
	"github.com/tombee/courier/internal/tracing"
	couriererrors "github.com/tombee/courier/pkg/errors"
	"github.com/tombee/courier/pkg/httpclient"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COURIER_"

var (
	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config represents the complete courier configuration.
type Config struct {
	Log      LogConfig      `yaml:"log" envPrefix:"LOG_"`
	Dispatch DispatchConfig `yaml:"dispatch" envPrefix:"DISPATCH_"`
	HTTP     HTTPConfig     `yaml:"http" envPrefix:"HTTP_"`
	Egress   EgressConfig   `yaml:"egress" envPrefix:"EGRESS_"`
	Server   ServerConfig   `yaml:"server" envPrefix:"SERVER_"`
	Tracing  TracingConfig  `yaml:"tracing" envPrefix:"TRACING_"`

	// Destinations are named plugin configurations the server and the
	// dispatch command can deliver to.
	Destinations map[string]Destination `yaml:"destinations,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of trace, debug, info, warn, error.
	// Environment: COURIER_LOG_LEVEL
	Level string `yaml:"level" env:"LEVEL"`

	// Format is json or text.
	// Environment: COURIER_LOG_FORMAT
	Format string `yaml:"format" env:"FORMAT"`

	// AddSource adds file and line to every record.
	AddSource bool `yaml:"add_source" env:"ADD_SOURCE"`
}

// DispatchConfig configures the dispatch engine.
type DispatchConfig struct {
	// Deadline is the hard limit for one dispatch.
	// Environment: COURIER_DISPATCH_DEADLINE
	// Default: 20s
	Deadline time.Duration `yaml:"deadline" env:"DEADLINE"`
}

// HTTPConfig configures the outbound client handed to plugins.
type HTTPConfig struct {
	Timeout          time.Duration `yaml:"timeout" env:"TIMEOUT"`
	UserAgent        string        `yaml:"user_agent" env:"USER_AGENT"`
	MaxResponseBytes int64         `yaml:"max_response_bytes" env:"MAX_RESPONSE_BYTES"`
	MaxRedirects     int           `yaml:"max_redirects" env:"MAX_REDIRECTS"`

	// CAFile is a PEM bundle replacing the system roots, for private
	// vendor deployments.
	CAFile string `yaml:"ca_file,omitempty" env:"CA_FILE"`
}

// EgressConfig configures the address guard.
type EgressConfig struct {
	// BlockedHosts are hostname patterns denied in addition to the
	// built-in address blacklist.
	// Environment: COURIER_EGRESS_BLOCKED_HOSTS (comma separated)
	BlockedHosts []string `yaml:"blocked_hosts,omitempty" env:"BLOCKED_HOSTS" envSeparator:","`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	// Environment: COURIER_SERVER_ADDR
	// Default: 127.0.0.1:8484
	Addr string `yaml:"addr" env:"ADDR"`

	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"READ_HEADER_TIMEOUT"`
}

// TracingConfig configures span export.
type TracingConfig struct {
	// Exporter is none, stdout, otlp-http or otlp-grpc.
	Exporter    string `yaml:"exporter" env:"EXPORTER"`
	Endpoint    string `yaml:"endpoint,omitempty" env:"ENDPOINT"`
	Insecure    bool   `yaml:"insecure" env:"INSECURE"`
	ServiceName string `yaml:"service_name" env:"SERVICE_NAME"`
}

// Default returns a Config with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configPath (if non-empty), applies defaults and environment
// overrides, and validates the result.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &couriererrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	cfg.applyDefaults()

	if err := cfg.loadFromEnv(); err != nil {
		return nil, &couriererrors.ConfigError{
			Key:    "environment",
			Reason: "failed to parse environment overrides",
			Cause:  err,
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) loadFromEnv() error {
	return env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix})
}

func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = string(log.FormatJSON)
	}

	if c.Dispatch.Deadline == 0 {
		c.Dispatch.Deadline = 20 * time.Second
	}

	def := httpclient.DefaultConfig()
	if c.HTTP.Timeout == 0 {
		c.HTTP.Timeout = def.Timeout
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = def.UserAgent
	}
	if c.HTTP.MaxResponseBytes == 0 {
		c.HTTP.MaxResponseBytes = def.MaxResponseBytes
	}
	if c.HTTP.MaxRedirects == 0 {
		c.HTTP.MaxRedirects = def.MaxRedirects
	}

	if c.Server.Addr == "" {
		c.Server.Addr = "127.0.0.1:8484"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.ReadHeaderTimeout == 0 {
		c.Server.ReadHeaderTimeout = 5 * time.Second
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = tracing.ExporterNone
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "courier"
	}
}

// Validate checks every section. The returned error is a ConfigError naming
// the first offending key.
func (c *Config) Validate() error {
	invalid := func(key, reason string) error {
		return &couriererrors.ConfigError{Key: key, Reason: reason, Cause: ErrInvalidConfig}
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return invalid("log.level", fmt.Sprintf("unknown level %q", c.Log.Level))
	}
	switch log.Format(strings.ToLower(c.Log.Format)) {
	case log.FormatJSON, log.FormatText:
	default:
		return invalid("log.format", fmt.Sprintf("unknown format %q (want json or text)", c.Log.Format))
	}

	if c.Dispatch.Deadline <= 0 {
		return invalid("dispatch.deadline", "must be > 0")
	}

	hc := c.httpClientBase()
	if err := hc.Validate(); err != nil {
		return &couriererrors.ConfigError{Key: "http", Reason: err.Error(), Cause: ErrInvalidConfig}
	}

	for _, p := range c.Egress.BlockedHosts {
		if strings.TrimSpace(p) == "" {
			return invalid("egress.blocked_hosts", "patterns must be non-empty")
		}
	}

	if c.Server.Addr == "" {
		return invalid("server.addr", "must be set")
	}
	if c.Server.ShutdownTimeout < 0 {
		return invalid("server.shutdown_timeout", "must be >= 0")
	}

	switch c.Tracing.Exporter {
	case tracing.ExporterNone, tracing.ExporterStdout:
	case tracing.ExporterOTLPHTTP, tracing.ExporterOTLPGRPC:
		if c.Tracing.Endpoint == "" {
			return invalid("tracing.endpoint", "required for OTLP exporters")
		}
	default:
		return invalid("tracing.exporter", fmt.Sprintf("unknown exporter %q", c.Tracing.Exporter))
	}

	for name, dest := range c.Destinations {
		if err := dest.validate(); err != nil {
			return &couriererrors.ConfigError{
				Key:    "destinations." + name,
				Reason: err.Error(),
				Cause:  ErrInvalidConfig,
			}
		}
	}

	return nil
}

// LoggerConfig converts the log section for internal/log.
func (c *Config) LoggerConfig() *log.Config {
	cfg := log.DefaultConfig()
	cfg.Level = strings.ToLower(c.Log.Level)
	cfg.Format = log.Format(strings.ToLower(c.Log.Format))
	cfg.AddSource = c.Log.AddSource
	return cfg
}

// HTTPClientConfig converts the http section, loading CAFile when set. The
// Guard and Logger are left for the caller.
func (c *Config) HTTPClientConfig() (httpclient.Config, error) {
	hc := c.httpClientBase()
	if c.HTTP.CAFile == "" {
		return hc, nil
	}
	pem, err := os.ReadFile(c.HTTP.CAFile)
	if err != nil {
		return hc, &couriererrors.ConfigError{Key: "http.ca_file", Reason: "cannot read CA bundle", Cause: err}
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return hc, &couriererrors.ConfigError{Key: "http.ca_file", Reason: "no certificates found", Cause: ErrInvalidConfig}
	}
	hc.RootCAs = pool
	return hc, nil
}

func (c *Config) httpClientBase() httpclient.Config {
	return httpclient.Config{
		Timeout:          c.HTTP.Timeout,
		UserAgent:        c.HTTP.UserAgent,
		MaxResponseBytes: c.HTTP.MaxResponseBytes,
		MaxRedirects:     c.HTTP.MaxRedirects,
	}
}

// TracingSetup converts the tracing section for tracing.Setup.
func (c *Config) TracingSetup(version string) tracing.Config {
	return tracing.Config{
		Exporter:       c.Tracing.Exporter,
		Endpoint:       c.Tracing.Endpoint,
		Insecure:       c.Tracing.Insecure,
		ServiceName:    c.Tracing.ServiceName,
		ServiceVersion: version,
	}
}
