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

package registry

import (
	"time"

	"github.com/openbarter/barter/database/models"
	"github.com/openbarter/barter/ledger"
)

// Status is the lifecycle state of a swap proposal
type Status uint8

const (
	// StatusProposed is the initial state in EOA custody mode
	StatusProposed Status = iota
	// StatusPending is the initial state in direct custody mode, with
	// the proposer's asset already escrowed
	StatusPending
	// StatusAccepted is an intermediate state reserved for custody
	// flows that split acceptance from settlement
	StatusAccepted
	// StatusCompleted is terminal: the swap settled
	StatusCompleted
	// StatusRejected is terminal: the proposal was cancelled or
	// rejected
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusProposed:
		return "proposed"
	case StatusPending:
		return "pending"
	case StatusAccepted:
		return "accepted"
	case StatusCompleted:
		return "completed"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition may originate from
// this status
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Open reports whether the proposal is still awaiting the proposee
func (s Status) Open() bool {
	return s == StatusProposed || s == StatusPending
}

// Proposal is a swap proposal record. An Id of zero never occurs in a
// stored proposal; IDs start at one and are never reused.
type Proposal struct {
	Id            uint64
	Proposer      ledger.Address
	Proposee      ledger.Address
	ProposerAsset ledger.AssetRef
	ProposeeAsset ledger.AssetRef
	Status        Status
	CreatedAt     time.Time
}

func proposalFromModel(m *models.Proposal) Proposal {
	return Proposal{
		Id:       m.ID,
		Proposer: ledger.Address(m.Proposer),
		Proposee: ledger.Address(m.Proposee),
		ProposerAsset: ledger.AssetRef{
			Collection: m.ProposerCollection,
			TokenId:    m.ProposerTokenId,
		},
		ProposeeAsset: ledger.AssetRef{
			Collection: m.ProposeeCollection,
			TokenId:    m.ProposeeTokenId,
		},
		Status:    Status(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func modelFromProposal(p Proposal) *models.Proposal {
	return &models.Proposal{
		ID:                 p.Id,
		Proposer:           string(p.Proposer),
		Proposee:           string(p.Proposee),
		ProposerCollection: p.ProposerAsset.Collection,
		ProposerTokenId:    p.ProposerAsset.TokenId,
		ProposeeCollection: p.ProposeeAsset.Collection,
		ProposeeTokenId:    p.ProposeeAsset.TokenId,
		Status:             uint8(p.Status),
		CreatedAt:          p.CreatedAt,
	}
}
