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
	"testing"
	"time"

	"github.com/openbarter/barter/custody"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, custody.ModeDirect, cfg.custodyMode)
	assert.NotNil(t, cfg.logger)
	assert.Empty(t, cfg.dataDir)
	assert.False(t, cfg.devMode)
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDataDir("/tmp/barter"),
		WithCustodyMode(custody.ModeEOA),
		WithAdminAddress("addr_admin"),
		WithCustodianAddress("addr_custodian"),
		WithApiListenAddress("localhost:4000"),
		WithMetricsListenAddress("localhost:12798"),
		WithShutdownTimeout(10*time.Second),
		WithDevMode(true),
	)
	assert.Equal(t, "/tmp/barter", cfg.dataDir)
	assert.Equal(t, custody.ModeEOA, cfg.custodyMode)
	assert.Equal(t, "addr_admin", string(cfg.adminAddress))
	assert.Equal(t, "addr_custodian", string(cfg.custodianAddress))
	assert.Equal(t, "localhost:4000", cfg.apiListenAddress)
	assert.Equal(t, "localhost:12798", cfg.metricsListenAddress)
	assert.Equal(t, 10*time.Second, cfg.shutdownTimeout)
	assert.True(t, cfg.devMode)
}

func TestConfigValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.validate())

	// EOA mode requires a custodian
	cfg = NewConfig(WithCustodyMode(custody.ModeEOA))
	require.Error(t, cfg.validate())
	cfg = NewConfig(
		WithCustodyMode(custody.ModeEOA),
		WithCustodianAddress("addr_custodian"),
	)
	require.NoError(t, cfg.validate())

	cfg = NewConfig(WithCustodyMode(custody.Mode("invalid")))
	require.Error(t, cfg.validate())
}

func TestNewNodeInvalidConfig(t *testing.T) {
	_, err := New(NewConfig(WithCustodyMode(custody.ModeEOA)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
