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

import "github.com/openbarter/barter/event"

const (
	// ProposalCreatedEventType is published when a proposal is
	// created. Off-process indexers rely on this event carrying the
	// full record.
	ProposalCreatedEventType event.EventType = "proposal.created"
	// ProposalCompletedEventType is published when a swap settles
	ProposalCompletedEventType event.EventType = "proposal.completed"
	// ProposalRejectedEventType is published when a proposal is
	// cancelled or rejected
	ProposalRejectedEventType event.EventType = "proposal.rejected"
)

// ProposalEvent is the payload for all proposal lifecycle events
type ProposalEvent struct {
	Proposal Proposal
}
