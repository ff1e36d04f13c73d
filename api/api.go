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

package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/openbarter/barter/ledger"
	"github.com/openbarter/barter/registry"
)

// AssetLedger is the ledger surface the API exposes over HTTP.
// *ledger.TokenLedger satisfies it.
type AssetLedger interface {
	OwnerOf(asset ledger.AssetRef) (ledger.Address, error)
	Transfer(xfer ledger.Transfer, caller ledger.Address) error
	TransferWithData(
		xfer ledger.Transfer,
		caller ledger.Address,
		data []byte,
	) error
	Approve(
		asset ledger.AssetRef,
		owner ledger.Address,
		operator ledger.Address,
	) error
	Mint(asset ledger.AssetRef, owner ledger.Address) error
}

type ApiConfig struct {
	ListenAddress string
	// DevMode enables the token minting endpoint
	DevMode bool
}

// Api is the registry's REST server.
type Api struct {
	config     ApiConfig
	logger     *slog.Logger
	registry   *registry.Registry
	ledger     AssetLedger
	httpServer *http.Server
	mu         sync.Mutex
}

// New creates a new API server instance.
func New(
	cfg ApiConfig,
	reg *registry.Registry,
	assetLedger AssetLedger,
	logger *slog.Logger,
) *Api {
	if logger == nil {
		logger = slog.New(
			slog.NewJSONHandler(io.Discard, nil),
		)
	}
	logger = logger.With("component", "api")
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":3000"
	}
	return &Api{
		config:   cfg,
		logger:   logger,
		registry: reg,
		ledger:   assetLedger,
	}
}

func (a *Api) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", a.handleRoot)
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /v0/proposals", a.handleListProposals)
	mux.HandleFunc("POST /v0/proposals", a.handleCreateProposal)
	mux.HandleFunc("GET /v0/proposals/{id}", a.handleGetProposal)
	mux.HandleFunc(
		"POST /v0/proposals/{id}/accept",
		a.handleAcceptProposal,
	)
	mux.HandleFunc(
		"POST /v0/proposals/{id}/cancel",
		a.handleCancelProposal,
	)
	mux.HandleFunc(
		"POST /v0/proposals/{id}/reject",
		a.handleRejectProposal,
	)
	mux.HandleFunc(
		"POST /v0/proposals/{id}/swap",
		a.handleSwap,
	)
	mux.HandleFunc("POST /v0/transfers", a.handleTransfer)
	mux.HandleFunc("POST /v0/approvals", a.handleApprove)
	mux.HandleFunc(
		"GET /v0/tokens/{collection}/{id}",
		a.handleGetToken,
	)
	if a.config.DevMode {
		mux.HandleFunc("POST /v0/tokens", a.handleMintToken)
	}
	return mux
}

// Start starts the HTTP server in a background goroutine.
func (a *Api) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.httpServer != nil {
		a.mu.Unlock()
		return errors.New("server already started")
	}
	server := &http.Server{
		Addr:              a.config.ListenAddress,
		Handler:           a.mux(),
		ReadHeaderTimeout: 60 * time.Second,
	}
	a.httpServer = server
	a.mu.Unlock()

	// Bind the listening socket first so port conflicts surface
	// immediately instead of inside the serve goroutine
	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		a.mu.Lock()
		a.httpServer = nil
		a.mu.Unlock()
		return fmt.Errorf("failed to listen for API server: %w", err)
	}
	go func() {
		if err := server.Serve(ln); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			a.logger.Error(
				"API server error",
				"error", err,
			)
		}
	}()

	a.logger.Info(
		"API listener started on " + a.config.ListenAddress,
	)

	go func() {
		<-ctx.Done()
		a.mu.Lock()
		srv := a.httpServer
		a.httpServer = nil
		a.mu.Unlock()
		if srv != nil {
			//nolint:contextcheck
			shutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				30*time.Second,
			)
			defer cancel()
			//nolint:contextcheck
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.logger.Error(
					"failed to shutdown API server on context cancellation",
					"error", err,
				)
			}
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (a *Api) Stop(ctx context.Context) error {
	a.mu.Lock()
	srv := a.httpServer
	a.httpServer = nil
	a.mu.Unlock()
	if srv != nil {
		a.logger.Debug("shutting down API server")
		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf(
				"failed to shutdown API server: %w",
				err,
			)
		}
	}
	return nil
}
