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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/internal/version"
	"github.com/openbarter/barter/ledger"
	"github.com/openbarter/barter/registry"
)

// CallerHeader carries the caller identity for authenticated
// operations. There is no signature checking here; identity is
// expected to be established by a fronting proxy.
const CallerHeader = "X-Barter-Caller"

// writeJSON writes a JSON response with the given status code.
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(
	w http.ResponseWriter,
	status int,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      http.StatusText(status),
		Message:    message,
	})
}

// writeDomainError maps registry, custody, and ledger errors onto
// HTTP status codes. Custody invariant violations map to 500: they
// indicate internal bookkeeping gone wrong, not a bad request.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		notFoundErr  registry.ProposalNotFoundError
		tokenErr     ledger.TokenNotFoundError
		ownerErr     registry.NotAssetOwnerError
		notOwnerErr  ledger.NotOwnerError
		stateErr     registry.InvalidStateError
		mismatchErr  custody.AssetMismatchError
		invariantErr custody.InvariantError
	)
	switch {
	case errors.As(err, &invariantErr):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.As(err, &notFoundErr), errors.As(err, &tokenErr):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &ownerErr),
		errors.As(err, &notOwnerErr),
		errors.Is(err, ledger.ErrNotAuthorized),
		errors.Is(err, registry.ErrNotProposer),
		errors.Is(err, registry.ErrNotProposee),
		errors.Is(err, registry.ErrNotAdmin):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &stateErr),
		errors.Is(err, registry.ErrAlreadyInitialized),
		errors.Is(err, registry.ErrSwapUnsupported),
		errors.Is(err, custody.ErrProposerAssetNotHeld),
		errors.Is(err, custody.ErrAssetsNotHeldByCustodian):
		writeError(w, http.StatusConflict, err.Error())
	case errors.As(err, &mismatchErr):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// caller extracts the caller identity header, or writes a 400 and
// returns false when it is absent.
func caller(
	w http.ResponseWriter,
	r *http.Request,
) (ledger.Address, bool) {
	addr := r.Header.Get(CallerHeader)
	if addr == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"missing "+CallerHeader+" header",
		)
		return "", false
	}
	return ledger.Address(addr), true
}

// proposalId parses the {id} path segment, or writes a 400 and
// returns false when it is not a positive integer.
func proposalId(
	w http.ResponseWriter,
	r *http.Request,
) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "invalid proposal ID")
		return 0, false
	}
	return id, true
}

func decodeBody(
	w http.ResponseWriter,
	r *http.Request,
	v any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"malformed request body: "+err.Error(),
		)
		return false
	}
	return true
}

// handleRoot handles GET / and returns API metadata.
func (a *Api) handleRoot(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, RootResponse{
		Version: version.Version,
	})
}

// handleHealth handles GET /health.
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleListProposals handles GET /v0/proposals and returns every
// proposal in ID order.
func (a *Api) handleListProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	proposals, err := a.registry.Proposals(r.Context())
	if err != nil {
		a.logger.Error(
			"failed to list proposals",
			"error", err,
		)
		writeError(
			w,
			http.StatusInternalServerError,
			"failed to list proposals",
		)
		return
	}
	ret := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		ret = append(ret, proposalResponse(p))
	}
	writeJSON(w, http.StatusOK, ret)
}

// handleGetProposal handles GET /v0/proposals/{id}.
func (a *Api) handleGetProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := proposalId(w, r)
	if !ok {
		return
	}
	p, err := a.registry.GetProposal(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposalResponse(*p))
}

// handleCreateProposal handles POST /v0/proposals.
func (a *Api) handleCreateProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := caller(w, r)
	if !ok {
		return
	}
	var req CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	p, err := a.registry.ProposeSwap(
		r.Context(),
		addr,
		req.ProposerAsset.ref(),
		req.ProposeeAsset.ref(),
	)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposalResponse(*p))
}

// handleAcceptProposal handles POST /v0/proposals/{id}/accept.
func (a *Api) handleAcceptProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	a.proposalAction(w, r, a.registry.AcceptSwapProposal)
}

// handleCancelProposal handles POST /v0/proposals/{id}/cancel.
func (a *Api) handleCancelProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	a.proposalAction(w, r, a.registry.CancelProposal)
}

// handleRejectProposal handles POST /v0/proposals/{id}/reject.
func (a *Api) handleRejectProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	a.proposalAction(w, r, a.registry.RejectProposal)
}

// handleSwap handles POST /v0/proposals/{id}/swap.
func (a *Api) handleSwap(
	w http.ResponseWriter,
	r *http.Request,
) {
	a.proposalAction(w, r, a.registry.Swap)
}

// proposalAction runs a caller-scoped lifecycle operation on the
// proposal named in the path and returns its new representation.
func (a *Api) proposalAction(
	w http.ResponseWriter,
	r *http.Request,
	action func(
		ctx context.Context,
		caller ledger.Address,
		id uint64,
	) error,
) {
	addr, ok := caller(w, r)
	if !ok {
		return
	}
	id, ok := proposalId(w, r)
	if !ok {
		return
	}
	if err := action(r.Context(), addr, id); err != nil {
		writeDomainError(w, err)
		return
	}
	p, err := a.registry.GetProposal(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposalResponse(*p))
}

// handleTransfer handles POST /v0/transfers. When data is attached
// and the recipient has a receive hook, the hook runs before the
// transfer is final and may reject it.
func (a *Api) handleTransfer(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := caller(w, r)
	if !ok {
		return
	}
	var req TransferRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, "missing to address")
		return
	}
	xfer := ledger.Transfer{
		Asset: req.Asset.ref(),
		From:  addr,
		To:    ledger.Address(req.To),
	}
	var err error
	if len(req.Data) > 0 {
		err = a.ledger.TransferWithData(xfer, addr, req.Data)
	} else {
		err = a.ledger.Transfer(xfer, addr)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleApprove handles POST /v0/approvals. The caller must own the
// asset being approved.
func (a *Api) handleApprove(
	w http.ResponseWriter,
	r *http.Request,
) {
	addr, ok := caller(w, r)
	if !ok {
		return
	}
	var req ApproveRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Operator == "" {
		writeError(w, http.StatusBadRequest, "missing operator address")
		return
	}
	if err := a.ledger.Approve(
		req.Asset.ref(),
		addr,
		ledger.Address(req.Operator),
	); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetToken handles GET /v0/tokens/{collection}/{id}.
func (a *Api) handleGetToken(
	w http.ResponseWriter,
	r *http.Request,
) {
	tokenId, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid token ID")
		return
	}
	asset := ledger.AssetRef{
		Collection: r.PathValue("collection"),
		TokenId:    tokenId,
	}
	owner, err := a.ledger.OwnerOf(asset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{
		Asset: assetFromRef(asset),
		Owner: string(owner),
	})
}

// handleMintToken handles POST /v0/tokens in dev mode.
func (a *Api) handleMintToken(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req MintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Owner == "" {
		writeError(w, http.StatusBadRequest, "missing owner address")
		return
	}
	if err := a.ledger.Mint(
		req.Asset.ref(),
		ledger.Address(req.Owner),
	); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, TokenResponse{
		Asset: req.Asset,
		Owner: req.Owner,
	})
}
