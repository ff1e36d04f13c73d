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
	"errors"
	"fmt"

	"github.com/openbarter/barter/ledger"
)

// Mode selects the custody strategy at configuration time
type Mode string

const (
	// ModeDirect escrows assets under the service's own ledger address
	ModeDirect Mode = "direct"
	// ModeEOA defers asset movement to a designated external custodian
	ModeEOA Mode = "eoa"
)

// Valid returns true if the Mode is a known custody mode
func (m Mode) Valid() bool {
	switch m {
	case ModeDirect, ModeEOA:
		return true
	default:
		return false
	}
}

// Settlement describes a swap completion: both assets delivered to
// their new owners. ProposeeAssetFrom names the current holder of the
// proposee's asset, which is the proposee on the explicit accept path
// and the escrow address on the receive-hook path.
type Settlement struct {
	ProposerAsset     ledger.AssetRef
	ProposeeAsset     ledger.AssetRef
	Proposer          ledger.Address
	Proposee          ledger.Address
	ProposeeAssetFrom ledger.Address
}

// Coordinator handles asset movement for the proposal registry. Two
// implementations exist: DirectCoordinator escrows assets itself,
// EOACoordinator only verifies a trusted external custodian.
type Coordinator interface {
	Mode() Mode
	// TakesCustody reports whether the coordinator escrows assets itself
	TakesCustody() bool
	// Holder returns the escrow address (direct) or the designated
	// custodian address (EOA)
	Holder() ledger.Address
	// Intake pulls an asset from its owner into escrow. The owner must
	// have approved the escrow address beforehand. No-op in EOA mode.
	Intake(asset ledger.AssetRef, from ledger.Address) error
	// Settle atomically delivers both assets. No-op in EOA mode, where
	// delivery is the custodian's obligation.
	Settle(s Settlement) error
	// Return gives an escrowed asset back to its original owner.
	// No-op in EOA mode.
	Return(asset ledger.AssetRef, to ledger.Address) error
	// VerifyHeld checks that every asset is currently held by the
	// coordinator's holder address
	VerifyHeld(assets ...ledger.AssetRef) error
}

var (
	// ErrProposerAssetNotHeld indicates an accept attempt while the
	// proposer's asset is not in escrow
	ErrProposerAssetNotHeld = errors.New(
		"proposer asset is not held in escrow",
	)
	// ErrAssetsNotHeldByCustodian indicates a settlement confirmation
	// while the custodian does not hold both assets
	ErrAssetsNotHeldByCustodian = errors.New(
		"assets are not held by the designated custodian",
	)
)

// AssetMismatchError is returned when a transferred asset does not
// match the asset declared in the attached intent or the proposal
// record
type AssetMismatchError struct {
	Declared ledger.AssetRef
	Received ledger.AssetRef
}

func (e AssetMismatchError) Error() string {
	return fmt.Sprintf(
		"transferred asset %s does not match declared asset %s",
		e.Received,
		e.Declared,
	)
}

// InvariantError indicates a custody invariant violation. This is a
// bug in the coordinator, not a caller error, and is surfaced
// separately from the business error taxonomy.
type InvariantError struct {
	Asset ledger.AssetRef
	Err   error
}

func (e InvariantError) Error() string {
	return fmt.Sprintf(
		"custody invariant violation: asset %s: %v",
		e.Asset,
		e.Err,
	)
}

func (e InvariantError) Unwrap() error {
	return e.Err
}
