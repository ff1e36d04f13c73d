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
	"errors"
	"fmt"

	"github.com/openbarter/barter/ledger"
)

var (
	// ErrAlreadyInitialized is returned on a second Initialize call
	ErrAlreadyInitialized = errors.New("registry already initialized")
	// ErrNotProposer is returned when a cancel is attempted by anyone
	// but the proposal's proposer
	ErrNotProposer = errors.New("caller is not the proposer")
	// ErrNotProposee is returned when an accept or reject is attempted
	// by anyone but the proposal's proposee
	ErrNotProposee = errors.New("caller is not the proposee")
	// ErrNotAdmin is returned when an admin-gated operation is
	// attempted without the admin role
	ErrNotAdmin = errors.New("caller does not hold the admin role")
	// ErrSwapUnsupported is returned when settlement confirmation is
	// requested in direct custody mode, where settlement already
	// happens on accept
	ErrSwapUnsupported = errors.New(
		"settlement confirmation is not used in direct custody mode",
	)
)

// ProposalNotFoundError is returned when an operation references an
// unknown proposal ID
type ProposalNotFoundError struct {
	Id uint64
}

func (e ProposalNotFoundError) Error() string {
	return fmt.Sprintf("proposal %d not found", e.Id)
}

// InvalidStateError is returned when an operation is attempted from a
// lifecycle state that does not permit it
type InvalidStateError struct {
	Id     uint64
	Status Status
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf(
		"proposal %d is %s and cannot transition",
		e.Id,
		e.Status,
	)
}

// NotAssetOwnerError is returned when a proposer offers an asset they
// do not currently own
type NotAssetOwnerError struct {
	Asset  ledger.AssetRef
	Caller ledger.Address
	Owner  ledger.Address
}

func (e NotAssetOwnerError) Error() string {
	return fmt.Sprintf(
		"asset %s is owned by %s, not caller %s",
		e.Asset,
		e.Owner,
		e.Caller,
	)
}
