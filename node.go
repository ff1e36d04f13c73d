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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/openbarter/barter/api"
	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/event"
	"github.com/openbarter/barter/ledger"
	"github.com/openbarter/barter/registry"
)

type Node struct {
	config       Config
	eventBus     *event.Bus
	db           *database.Database
	tokenLedger  *ledger.TokenLedger
	custody      custody.Coordinator
	registry     *registry.Registry
	api          *api.Api
	done         chan struct{}
	shutdownOnce sync.Once
}

func New(cfg Config) (*Node, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	n := &Node{
		config:   cfg,
		eventBus: event.NewBus(cfg.promRegistry, cfg.logger),
		done:     make(chan struct{}),
	}
	return n, nil
}

// Run wires up the node components and serves until the context is
// cancelled or Stop is called.
func (n *Node) Run(ctx context.Context) error {
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      n.config.dataDir,
		Logger:       n.config.logger,
		PromRegistry: n.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	n.db = db
	// Load asset ledger
	n.tokenLedger = ledger.NewTokenLedger(ledger.TokenLedgerConfig{
		Database: n.db,
		Logger:   n.config.logger,
	})
	// Configure custody coordinator
	switch n.config.custodyMode {
	case custody.ModeDirect:
		n.custody = custody.NewDirectCoordinator(custody.DirectConfig{
			Ledger: n.tokenLedger,
			Escrow: n.config.escrowAddress,
			Logger: n.config.logger,
		})
	case custody.ModeEOA:
		n.custody = custody.NewEOACoordinator(custody.EOAConfig{
			Ledger:    n.tokenLedger,
			Custodian: n.config.custodianAddress,
			Logger:    n.config.logger,
		})
	}
	// Load proposal registry
	reg, err := registry.NewRegistry(registry.RegistryConfig{
		Logger:       n.config.logger,
		EventBus:     n.eventBus,
		PromRegistry: n.config.promRegistry,
		Database:     n.db,
		Ledger:       n.tokenLedger,
		Custody:      n.custody,
	})
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	n.registry = reg
	// Grant the admin role on first start. A populated database
	// keeps its existing grant.
	if n.config.adminAddress != "" {
		err := n.registry.Initialize(ctx, n.config.adminAddress)
		if err != nil &&
			!errors.Is(err, registry.ErrAlreadyInitialized) {
			return fmt.Errorf("failed to initialize registry: %w", err)
		}
	}
	// Start API listener
	n.api = api.New(
		api.ApiConfig{
			ListenAddress: n.config.apiListenAddress,
			DevMode:       n.config.devMode,
		},
		n.registry,
		n.tokenLedger,
		n.config.logger,
	)
	//nolint:contextcheck
	if err := n.api.Start(context.Background()); err != nil {
		return err
	}

	// Wait for shutdown
	select {
	case <-ctx.Done():
		return n.Stop()
	case <-n.done:
		return nil
	}
}

func (n *Node) Stop() error {
	var err error
	n.shutdownOnce.Do(func() {
		err = n.shutdown()
		close(n.done)
	})
	return err
}

func (n *Node) shutdown() error {
	shutdownTimeout := 30 * time.Second
	if n.config.shutdownTimeout > 0 {
		shutdownTimeout = n.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()

	var err error
	n.config.logger.Debug("starting graceful shutdown")
	if n.api != nil {
		if stopErr := n.api.Stop(ctx); stopErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("api shutdown: %w", stopErr),
			)
		}
	}
	if n.eventBus != nil {
		n.eventBus.Stop()
	}
	if n.db != nil {
		if closeErr := n.db.Close(); closeErr != nil {
			err = errors.Join(
				err,
				fmt.Errorf("database close: %w", closeErr),
			)
		}
	}
	return err
}

// Registry returns the proposal registry. It is only available after
// Run has wired up the node.
func (n *Node) Registry() *registry.Registry {
	return n.registry
}

// TokenLedger returns the asset ledger. It is only available after
// Run has wired up the node.
func (n *Node) TokenLedger() *ledger.TokenLedger {
	return n.tokenLedger
}
