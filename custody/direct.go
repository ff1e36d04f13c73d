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
	"io"
	"log/slog"

	"github.com/openbarter/barter/ledger"
)

// DefaultEscrowAddress is the ledger address assets are escrowed
// under when none is configured
const DefaultEscrowAddress = ledger.Address("barter-escrow")

// DirectCoordinator escrows assets under a service-owned ledger
// address between proposal and completion
type DirectCoordinator struct {
	ledger ledger.Ledger
	escrow ledger.Address
	logger *slog.Logger
}

type DirectConfig struct {
	Ledger ledger.Ledger
	Escrow ledger.Address
	Logger *slog.Logger
}

func NewDirectCoordinator(cfg DirectConfig) *DirectCoordinator {
	c := &DirectCoordinator{
		ledger: cfg.Ledger,
		escrow: cfg.Escrow,
		logger: cfg.Logger,
	}
	if c.escrow == "" {
		c.escrow = DefaultEscrowAddress
	}
	if c.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

var _ Coordinator = (*DirectCoordinator)(nil)

func (c *DirectCoordinator) Mode() Mode {
	return ModeDirect
}

func (c *DirectCoordinator) TakesCustody() bool {
	return true
}

func (c *DirectCoordinator) Holder() ledger.Address {
	return c.escrow
}

// Intake pulls an asset into escrow using the owner's prior approval
func (c *DirectCoordinator) Intake(
	asset ledger.AssetRef,
	from ledger.Address,
) error {
	return c.ledger.Transfer(ledger.Transfer{
		Asset: asset,
		From:  from,
		To:    c.escrow,
	}, c.escrow)
}

// Settle delivers both assets in a single all-or-nothing batch. The
// proposer's asset must already be in escrow.
func (c *DirectCoordinator) Settle(s Settlement) error {
	owner, err := c.ledger.OwnerOf(s.ProposerAsset)
	if err != nil {
		return err
	}
	if owner != c.escrow {
		return ErrProposerAssetNotHeld
	}
	return c.ledger.TransferBatch([]ledger.Transfer{
		{
			Asset: s.ProposerAsset,
			From:  c.escrow,
			To:    s.Proposee,
		},
		{
			Asset: s.ProposeeAsset,
			From:  s.ProposeeAssetFrom,
			To:    s.Proposer,
		},
	}, c.escrow)
}

// Return gives an escrowed asset back to its original owner. The
// asset not being in escrow here means the intake bookkeeping went
// wrong, which is a coordinator bug rather than a caller error.
func (c *DirectCoordinator) Return(
	asset ledger.AssetRef,
	to ledger.Address,
) error {
	owner, err := c.ledger.OwnerOf(asset)
	if err != nil {
		return InvariantError{Asset: asset, Err: err}
	}
	if owner != c.escrow {
		return InvariantError{
			Asset: asset,
			Err:   ErrProposerAssetNotHeld,
		}
	}
	if err := c.ledger.Transfer(ledger.Transfer{
		Asset: asset,
		From:  c.escrow,
		To:    to,
	}, c.escrow); err != nil {
		return InvariantError{Asset: asset, Err: err}
	}
	return nil
}

// VerifyHeld checks that every asset is currently escrowed
func (c *DirectCoordinator) VerifyHeld(assets ...ledger.AssetRef) error {
	for _, asset := range assets {
		owner, err := c.ledger.OwnerOf(asset)
		if err != nil {
			return err
		}
		if owner != c.escrow {
			return ErrProposerAssetNotHeld
		}
	}
	return nil
}
