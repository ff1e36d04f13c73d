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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/openbarter/barter/custody"
)

type ctxKey string

const configContextKey ctxKey = "barter.config"

const DefaultShutdownTimeout = "30s"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

type Config struct {
	DataDir          string `yaml:"dataDir"          split_words:"true"`
	CustodyMode      string `yaml:"custodyMode"      split_words:"true"`
	AdminAddress     string `yaml:"adminAddress"     split_words:"true"`
	CustodianAddress string `yaml:"custodianAddress" split_words:"true"`
	EscrowAddress    string `yaml:"escrowAddress"    split_words:"true"`
	BindAddr         string `yaml:"bindAddr"         split_words:"true"`
	ShutdownTimeout  string `yaml:"shutdownTimeout"  split_words:"true"`
	ApiPort          uint   `yaml:"apiPort"          envconfig:"port"`
	MetricsPort      uint   `yaml:"metricsPort"      split_words:"true"`
	DevMode          bool   `yaml:"devMode"          split_words:"true"`
}

var globalConfig = &Config{
	DataDir:         ".barter",
	CustodyMode:     string(custody.ModeDirect),
	BindAddr:        "0.0.0.0",
	ApiPort:         3000,
	MetricsPort:     12798,
	ShutdownTimeout: DefaultShutdownTimeout,
}

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.barter/barter.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".barter", "barter.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/barter/barter.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/barter/barter.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Overlay config values onto existing defaults
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}

	// Process environment variables
	err := envconfig.Process("barter", globalConfig)
	if err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}

	// Validate custody mode
	if !custody.Mode(globalConfig.CustodyMode).Valid() {
		return nil, fmt.Errorf(
			"invalid custodyMode: %q (must be 'direct' or 'eoa')",
			globalConfig.CustodyMode,
		)
	}
	if globalConfig.CustodyMode == string(custody.ModeEOA) &&
		globalConfig.CustodianAddress == "" {
		return nil, fmt.Errorf(
			"custodyMode %q requires custodianAddress",
			globalConfig.CustodyMode,
		)
	}

	return globalConfig, nil
}

func GetConfig() *Config {
	return globalConfig
}
