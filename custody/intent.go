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

package custody

import (
	"encoding/json"
	"fmt"

	"github.com/openbarter/barter/ledger"
)

// IntentKind discriminates the two meanings of an inbound escrow
// transfer
type IntentKind uint8

const (
	// IntentNewProposal opens a new proposal with the transferred
	// asset as the proposer's side
	IntentNewProposal IntentKind = iota
	// IntentAccept confirms an existing proposal with the transferred
	// asset as the proposee's side
	IntentAccept
)

func (k IntentKind) String() string {
	switch k {
	case IntentNewProposal:
		return "new-proposal"
	case IntentAccept:
		return "accept"
	default:
		return "unknown"
	}
}

// TransferIntent is the metadata attached to an inbound escrow
// transfer. A zero ProposalId means a new proposal; any other value
// references the proposal being accepted.
type TransferIntent struct {
	ProposerCollection string `json:"proposer_collection"`
	ProposeeCollection string `json:"proposee_collection"`
	ProposerTokenId    uint64 `json:"proposer_token_id"`
	ProposeeTokenId    uint64 `json:"proposee_token_id"`
	ProposalId         uint64 `json:"proposal_id"`
}

func (i TransferIntent) Kind() IntentKind {
	if i.ProposalId == 0 {
		return IntentNewProposal
	}
	return IntentAccept
}

func (i TransferIntent) ProposerAsset() ledger.AssetRef {
	return ledger.AssetRef{
		Collection: i.ProposerCollection,
		TokenId:    i.ProposerTokenId,
	}
}

func (i TransferIntent) ProposeeAsset() ledger.AssetRef {
	return ledger.AssetRef{
		Collection: i.ProposeeCollection,
		TokenId:    i.ProposeeTokenId,
	}
}

func (i TransferIntent) Encode() ([]byte, error) {
	return json.Marshal(i)
}

// DecodeIntent parses the opaque metadata attached to an inbound
// transfer. Decode happens before any state change so that a
// malformed payload cannot leave partial effects.
func DecodeIntent(data []byte) (*TransferIntent, error) {
	var intent TransferIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, fmt.Errorf("malformed transfer intent: %w", err)
	}
	return &intent, nil
}
