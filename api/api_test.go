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
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/ledger"
	"github.com/openbarter/barter/registry"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAlice = "addr_alice"
	testBob   = "addr_bob"
	testAdmin = "addr_admin"
)

var (
	testCatSeven = Asset{Collection: "cats", TokenId: 7}
	testDogNine  = Asset{Collection: "dogs", TokenId: 9}
)

func newTestApi(t *testing.T) *Api {
	t.Helper()
	promReg := prometheus.NewRegistry()
	db, err := database.New(&database.Config{
		PromRegistry: promReg,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	tl := ledger.NewTokenLedger(ledger.TokenLedgerConfig{
		Database: db,
	})
	coord := custody.NewDirectCoordinator(custody.DirectConfig{
		Ledger: tl,
	})
	reg, err := registry.NewRegistry(registry.RegistryConfig{
		PromRegistry: promReg,
		Database:     db,
		Ledger:       tl,
		Custody:      coord,
	})
	require.NoError(t, err)
	require.NoError(
		t,
		reg.Initialize(context.Background(), testAdmin),
	)
	return New(
		ApiConfig{
			ListenAddress: "localhost:0",
			DevMode:       true,
		},
		reg,
		tl,
		nil,
	)
}

// doRequest routes a request through the server mux so path values
// are populated.
func doRequest(
	a *Api,
	method string,
	path string,
	callerAddr string,
	body any,
) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if callerAddr != "" {
		req.Header.Set(CallerHeader, callerAddr)
	}
	w := httptest.NewRecorder()
	a.mux().ServeHTTP(w, req)
	return w
}

func mintTestToken(
	t *testing.T,
	a *Api,
	asset Asset,
	owner string,
) {
	t.Helper()
	w := doRequest(a, http.MethodPost, "/v0/tokens", "", MintRequest{
		Asset: asset,
		Owner: owner,
	})
	require.Equal(t, http.StatusCreated, w.Code)
}

func TestHandleRoot(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(
		t,
		"application/json",
		w.Header().Get("Content-Type"),
	)
	var resp RootResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.NotEmpty(t, resp.Version)
}

func TestHandleHealth(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.True(t, resp.IsHealthy)
}

func TestSwapOverHttp(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	mintTestToken(t, a, testDogNine, testBob)
	escrow := string(custody.DefaultEscrowAddress)

	// Alice approves the escrow and proposes
	w := doRequest(a, http.MethodPost, "/v0/approvals", testAlice,
		ApproveRequest{Asset: testCatSeven, Operator: escrow})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(a, http.MethodPost, "/v0/proposals", testAlice,
		CreateProposalRequest{
			ProposerAsset: testCatSeven,
			ProposeeAsset: testDogNine,
		})
	require.Equal(t, http.StatusCreated, w.Code)
	var p ProposalResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, uint64(1), p.Id)
	assert.Equal(t, testAlice, p.Proposer)
	assert.Equal(t, testBob, p.Proposee)
	assert.Equal(t, "pending", p.Status)

	// Bob approves his side and accepts
	w = doRequest(a, http.MethodPost, "/v0/approvals", testBob,
		ApproveRequest{Asset: testDogNine, Operator: escrow})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(
		a,
		http.MethodPost,
		"/v0/proposals/1/accept",
		testBob,
		nil,
	)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	assert.Equal(t, "completed", p.Status)

	// Ownership swapped
	w = doRequest(a, http.MethodGet, "/v0/tokens/cats/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var token TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&token))
	assert.Equal(t, testBob, token.Owner)
}

func TestListProposals(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	mintTestToken(t, a, testDogNine, testBob)
	escrow := string(custody.DefaultEscrowAddress)
	w := doRequest(a, http.MethodPost, "/v0/approvals", testAlice,
		ApproveRequest{Asset: testCatSeven, Operator: escrow})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(a, http.MethodPost, "/v0/proposals", testAlice,
		CreateProposalRequest{
			ProposerAsset: testCatSeven,
			ProposeeAsset: testDogNine,
		})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(a, http.MethodGet, "/v0/proposals", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var proposals []ProposalResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&proposals))
	require.Len(t, proposals, 1)
	assert.Equal(t, uint64(1), proposals[0].Id)
}

func TestMissingCallerHeader(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodPost, "/v0/proposals", "",
		CreateProposalRequest{
			ProposerAsset: testCatSeven,
			ProposeeAsset: testDogNine,
		})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProposalNotFound(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodGet, "/v0/proposals/42", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInvalidProposalId(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodGet, "/v0/proposals/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptForbidden(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	mintTestToken(t, a, testDogNine, testBob)
	escrow := string(custody.DefaultEscrowAddress)
	w := doRequest(a, http.MethodPost, "/v0/approvals", testAlice,
		ApproveRequest{Asset: testCatSeven, Operator: escrow})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(a, http.MethodPost, "/v0/proposals", testAlice,
		CreateProposalRequest{
			ProposerAsset: testCatSeven,
			ProposeeAsset: testDogNine,
		})
	require.Equal(t, http.StatusCreated, w.Code)

	// Only the proposee may accept
	w = doRequest(
		a,
		http.MethodPost,
		"/v0/proposals/1/accept",
		testAlice,
		nil,
	)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestProposeWithoutOwnership(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	mintTestToken(t, a, testDogNine, testBob)
	w := doRequest(a, http.MethodPost, "/v0/proposals", testBob,
		CreateProposalRequest{
			ProposerAsset: testCatSeven,
			ProposeeAsset: testDogNine,
		})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTransferOverHttp(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	w := doRequest(a, http.MethodPost, "/v0/transfers", testAlice,
		TransferRequest{Asset: testCatSeven, To: testBob})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = doRequest(a, http.MethodGet, "/v0/tokens/cats/7", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var token TokenResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&token))
	assert.Equal(t, testBob, token.Owner)
}

func TestTransferNotAuthorized(t *testing.T) {
	a := newTestApi(t)
	mintTestToken(t, a, testCatSeven, testAlice)
	w := doRequest(a, http.MethodPost, "/v0/transfers", testBob,
		TransferRequest{Asset: testCatSeven, To: testBob})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTokenNotFound(t *testing.T) {
	a := newTestApi(t)
	w := doRequest(a, http.MethodGet, "/v0/tokens/cats/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartStop(t *testing.T) {
	a := newTestApi(t)
	require.NoError(t, a.Start(t.Context()))
	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	require.NoError(t, a.Stop(stopCtx))
	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	a := newTestApi(t)
	ctx := t.Context()
	require.NoError(t, a.Start(ctx))
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = a.Stop(stopCtx)
	}()
	err := a.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}
