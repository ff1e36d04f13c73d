// Copyright 2026 OpenBarter Software
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

package barter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/ledger"
	"github.com/prometheus/client_golang/prometheus"
)

type Config struct {
	promRegistry         prometheus.Registerer
	logger               *slog.Logger
	dataDir              string
	custodyMode          custody.Mode
	adminAddress         ledger.Address
	custodianAddress     ledger.Address
	escrowAddress        ledger.Address
	apiListenAddress     string
	metricsListenAddress string
	shutdownTimeout      time.Duration
	devMode              bool
}

// ConfigOptionFunc is a type that represents functions that modify the node config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new barter config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		custodyMode: custody.ModeDirect,
	}
	// Apply options
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c *Config) validate() error {
	if !c.custodyMode.Valid() {
		return fmt.Errorf("invalid custody mode: %q", c.custodyMode)
	}
	if c.custodyMode == custody.ModeEOA && c.custodianAddress == "" {
		return errors.New(
			"EOA custody mode requires a custodian address",
		)
	}
	return nil
}

// WithLogger specifies the logger to use. This defaults to discarding log output
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithPrometheusRegistry specifies the prometheus registry to use for metrics
func WithPrometheusRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithDataDir specifies the persistent data directory to use. The default is to store everything in memory
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithCustodyMode specifies how swapped assets are held while a proposal is open
func WithCustodyMode(mode custody.Mode) ConfigOptionFunc {
	return func(c *Config) {
		c.custodyMode = mode
	}
}

// WithAdminAddress specifies the identity granted the admin role on first start
func WithAdminAddress(addr ledger.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.adminAddress = addr
	}
}

// WithCustodianAddress specifies the external custodian identity. Required in EOA custody mode
func WithCustodianAddress(addr ledger.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.custodianAddress = addr
	}
}

// WithEscrowAddress overrides the ledger address used for escrowed assets in direct custody mode
func WithEscrowAddress(addr ledger.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.escrowAddress = addr
	}
}

// WithApiListenAddress specifies the REST API listen address. This defaults to :3000
func WithApiListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.apiListenAddress = addr
	}
}

// WithMetricsListenAddress specifies the prometheus metrics listen address (empty = disabled)
func WithMetricsListenAddress(addr string) ConfigOptionFunc {
	return func(c *Config) {
		c.metricsListenAddress = addr
	}
}

// WithShutdownTimeout specifies how long to wait for graceful shutdown. This defaults to 30s
func WithShutdownTimeout(timeout time.Duration) ConfigOptionFunc {
	return func(c *Config) {
		c.shutdownTimeout = timeout
	}
}

// WithDevMode enables development behaviors such as token minting over the API
func WithDevMode(devMode bool) ConfigOptionFunc {
	return func(c *Config) {
		c.devMode = devMode
	}
}
