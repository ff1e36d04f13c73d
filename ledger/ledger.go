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

package ledger

import (
	"errors"
	"fmt"
)

// Address identifies a party on the asset ledger. The empty string is
// the zero address.
type Address string

// AssetRef identifies a single token inside a collection. Immutable
// once embedded in a proposal.
type AssetRef struct {
	Collection string
	TokenId    uint64
}

func (a AssetRef) String() string {
	return fmt.Sprintf("%s/%d", a.Collection, a.TokenId)
}

// Transfer describes a single ownership change
type Transfer struct {
	Asset AssetRef
	From  Address
	To    Address
}

// Received describes an inbound transfer as seen by a receive hook.
// Data carries the opaque metadata attached by the sender.
type Received struct {
	Asset AssetRef
	From  Address
	Data  []byte
}

// ReceiveFunc is invoked synchronously when an asset arrives at an
// address with a registered hook. A returned error aborts and reverts
// the inbound transfer.
type ReceiveFunc func(Received) error

// Ledger is the external asset ledger collaborator. Ownership truth
// lives here, not in the proposal registry.
type Ledger interface {
	// OwnerOf returns the current owner of an asset
	OwnerOf(asset AssetRef) (Address, error)
	// Transfer moves a single asset. The caller must be the current
	// owner or the approved operator.
	Transfer(xfer Transfer, caller Address) error
	// TransferWithData moves a single asset and delivers the attached
	// metadata to the recipient's receive hook, if any. A hook error
	// reverts the transfer.
	TransferWithData(xfer Transfer, caller Address, data []byte) error
	// TransferBatch moves several assets with all-or-nothing
	// semantics: either every transfer applies or none do.
	TransferBatch(xfers []Transfer, caller Address) error
	// Approve authorizes an operator to transfer an asset on the
	// owner's behalf. Approval is consumed on transfer.
	Approve(asset AssetRef, owner Address, operator Address) error
	// OnReceive registers a receive hook for the given address
	OnReceive(recipient Address, fn ReceiveFunc)
}

// ErrNotAuthorized is returned when a transfer caller is neither the
// owner nor the approved operator of the asset
var ErrNotAuthorized = errors.New("transfer not authorized")

// TokenNotFoundError is returned when an asset reference does not
// exist on the ledger
type TokenNotFoundError struct {
	Asset AssetRef
}

func (e TokenNotFoundError) Error() string {
	return fmt.Sprintf("token %s not found", e.Asset)
}

// NotOwnerError is returned when a transfer names a sender that does
// not currently own the asset
type NotOwnerError struct {
	Asset AssetRef
	Owner Address
	From  Address
}

func (e NotOwnerError) Error() string {
	return fmt.Sprintf(
		"token %s is owned by %s, not %s",
		e.Asset,
		e.Owner,
		e.From,
	)
}
