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

// EOACoordinator never takes custody. A pre-designated external
// custodian is trusted to hold and deliver assets; the coordinator
// can only verify ownership against the ledger.
type EOACoordinator struct {
	ledger    ledger.Ledger
	custodian ledger.Address
	logger    *slog.Logger
}

type EOAConfig struct {
	Ledger    ledger.Ledger
	Custodian ledger.Address
	Logger    *slog.Logger
}

func NewEOACoordinator(cfg EOAConfig) *EOACoordinator {
	c := &EOACoordinator{
		ledger:    cfg.Ledger,
		custodian: cfg.Custodian,
		logger:    cfg.Logger,
	}
	if c.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		c.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return c
}

var _ Coordinator = (*EOACoordinator)(nil)

func (c *EOACoordinator) Mode() Mode {
	return ModeEOA
}

func (c *EOACoordinator) TakesCustody() bool {
	return false
}

func (c *EOACoordinator) Holder() ledger.Address {
	return c.custodian
}

// Intake is a no-op: asset movement is the custodian's obligation
func (c *EOACoordinator) Intake(
	asset ledger.AssetRef,
	from ledger.Address,
) error {
	return nil
}

// Settle is a no-op: delivery happens off the critical path via the
// custodian
func (c *EOACoordinator) Settle(s Settlement) error {
	return nil
}

// Return is a no-op: nothing was ever taken into custody
func (c *EOACoordinator) Return(
	asset ledger.AssetRef,
	to ledger.Address,
) error {
	return nil
}

// VerifyHeld checks that the designated custodian currently owns
// every asset
func (c *EOACoordinator) VerifyHeld(assets ...ledger.AssetRef) error {
	for _, asset := range assets {
		owner, err := c.ledger.OwnerOf(asset)
		if err != nil {
			return err
		}
		if owner != c.custodian {
			return ErrAssetsNotHeldByCustodian
		}
	}
	return nil
}
