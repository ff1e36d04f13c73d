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
	"time"

	"github.com/openbarter/barter/ledger"
	"github.com/openbarter/barter/registry"
)

// RootResponse is returned by GET /.
type RootResponse struct {
	Version string `json:"version"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the error body for every non-2xx response.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// Asset identifies a token by collection and ID.
type Asset struct {
	Collection string `json:"collection"`
	TokenId    uint64 `json:"token_id"`
}

func (a Asset) ref() ledger.AssetRef {
	return ledger.AssetRef{
		Collection: a.Collection,
		TokenId:    a.TokenId,
	}
}

func assetFromRef(ref ledger.AssetRef) Asset {
	return Asset{
		Collection: ref.Collection,
		TokenId:    ref.TokenId,
	}
}

// ProposalResponse represents a swap proposal.
type ProposalResponse struct {
	Id            uint64    `json:"id"`
	Proposer      string    `json:"proposer"`
	Proposee      string    `json:"proposee"`
	ProposerAsset Asset     `json:"proposer_asset"`
	ProposeeAsset Asset     `json:"proposee_asset"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func proposalResponse(p registry.Proposal) ProposalResponse {
	return ProposalResponse{
		Id:            p.Id,
		Proposer:      string(p.Proposer),
		Proposee:      string(p.Proposee),
		ProposerAsset: assetFromRef(p.ProposerAsset),
		ProposeeAsset: assetFromRef(p.ProposeeAsset),
		Status:        p.Status.String(),
		CreatedAt:     p.CreatedAt,
	}
}

// CreateProposalRequest is the body for POST /v0/proposals.
type CreateProposalRequest struct {
	ProposerAsset Asset `json:"proposer_asset"`
	ProposeeAsset Asset `json:"proposee_asset"`
}

// TransferRequest is the body for POST /v0/transfers. Data is
// optional opaque metadata delivered to the recipient's receive
// hook; JSON base64-encodes it on the wire.
type TransferRequest struct {
	Asset Asset  `json:"asset"`
	To    string `json:"to"`
	Data  []byte `json:"data,omitempty"`
}

// ApproveRequest is the body for POST /v0/approvals. The caller must
// own the asset.
type ApproveRequest struct {
	Asset    Asset  `json:"asset"`
	Operator string `json:"operator"`
}

// MintRequest is the body for POST /v0/tokens, available in dev mode.
type MintRequest struct {
	Asset Asset  `json:"asset"`
	Owner string `json:"owner"`
}

// TokenResponse is returned by GET /v0/tokens/{collection}/{id}.
type TokenResponse struct {
	Asset Asset  `json:"asset"`
	Owner string `json:"owner"`
}
