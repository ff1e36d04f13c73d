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
	"fmt"
	"io"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/database/models"
)

// TokenLedger is a database-backed Ledger implementation. It stands in
// for the external token ledger in tests and single-process
// deployments while keeping the same authorization and receive-hook
// semantics.
type TokenLedger struct {
	db     *database.Database
	logger *slog.Logger
	hooks  map[Address]ReceiveFunc
	mu     sync.RWMutex
}

type TokenLedgerConfig struct {
	Database *database.Database
	Logger   *slog.Logger
}

func NewTokenLedger(cfg TokenLedgerConfig) *TokenLedger {
	l := &TokenLedger{
		db:     cfg.Database,
		logger: cfg.Logger,
		hooks:  make(map[Address]ReceiveFunc),
	}
	if l.logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		l.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return l
}

var _ Ledger = (*TokenLedger)(nil)

// Mint creates a token with the given initial owner
func (l *TokenLedger) Mint(asset AssetRef, owner Address) error {
	existing, err := l.db.GetToken(asset.Collection, asset.TokenId, nil)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("token %s already exists", asset)
	}
	return l.db.SetToken(&models.Token{
		Collection: asset.Collection,
		TokenId:    asset.TokenId,
		Owner:      string(owner),
	}, nil)
}

func (l *TokenLedger) OwnerOf(asset AssetRef) (Address, error) {
	token, err := l.db.GetToken(asset.Collection, asset.TokenId, nil)
	if err != nil {
		return "", err
	}
	if token == nil {
		return "", TokenNotFoundError{Asset: asset}
	}
	return Address(token.Owner), nil
}

func (l *TokenLedger) Approve(
	asset AssetRef,
	owner Address,
	operator Address,
) error {
	token, err := l.db.GetToken(asset.Collection, asset.TokenId, nil)
	if err != nil {
		return err
	}
	if token == nil {
		return TokenNotFoundError{Asset: asset}
	}
	if Address(token.Owner) != owner {
		return NotOwnerError{
			Asset: asset,
			Owner: Address(token.Owner),
			From:  owner,
		}
	}
	return l.db.UpdateTokenOperator(
		asset.Collection,
		asset.TokenId,
		string(operator),
		nil,
	)
}

func (l *TokenLedger) Transfer(xfer Transfer, caller Address) error {
	return l.db.Transaction(func(txn *gorm.DB) error {
		return l.applyTransfer(txn, xfer, caller)
	})
}

func (l *TokenLedger) TransferBatch(
	xfers []Transfer,
	caller Address,
) error {
	return l.db.Transaction(func(txn *gorm.DB) error {
		for _, xfer := range xfers {
			if err := l.applyTransfer(txn, xfer, caller); err != nil {
				return err
			}
		}
		return nil
	})
}

// TransferWithData moves the asset and then invokes the recipient's
// receive hook with the attached metadata. The hook runs after the
// ownership change is visible; a hook error reverts the transfer
// (including the consumed approval) before being returned to the
// caller, so the operation is all-or-nothing from the caller's view.
func (l *TokenLedger) TransferWithData(
	xfer Transfer,
	caller Address,
	data []byte,
) error {
	// Remember the operator so a hook failure can restore it
	token, err := l.db.GetToken(xfer.Asset.Collection, xfer.Asset.TokenId, nil)
	if err != nil {
		return err
	}
	if token == nil {
		return TokenNotFoundError{Asset: xfer.Asset}
	}
	prevOperator := token.Operator
	if err := l.db.Transaction(func(txn *gorm.DB) error {
		return l.applyTransfer(txn, xfer, caller)
	}); err != nil {
		return err
	}
	hook := l.hookFor(xfer.To)
	if hook == nil || len(data) == 0 {
		return nil
	}
	hookErr := hook(Received{
		Asset: xfer.Asset,
		From:  xfer.From,
		Data:  data,
	})
	if hookErr == nil {
		return nil
	}
	// Hook rejected the transfer, revert it
	if err := l.db.Transaction(func(txn *gorm.DB) error {
		if err := l.db.UpdateTokenOwner(
			xfer.Asset.Collection,
			xfer.Asset.TokenId,
			string(xfer.From),
			txn,
		); err != nil {
			return err
		}
		return l.db.UpdateTokenOperator(
			xfer.Asset.Collection,
			xfer.Asset.TokenId,
			prevOperator,
			txn,
		)
	}); err != nil {
		l.logger.Error(
			"failed to revert transfer after hook rejection",
			"asset", xfer.Asset.String(),
			"error", err,
		)
		return fmt.Errorf(
			"revert failed: %w: hook error: %w",
			err,
			hookErr,
		)
	}
	return hookErr
}

func (l *TokenLedger) OnReceive(recipient Address, fn ReceiveFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks[recipient] = fn
}

func (l *TokenLedger) hookFor(recipient Address) ReceiveFunc {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hooks[recipient]
}

// applyTransfer validates and applies one ownership change inside the
// given transaction
func (l *TokenLedger) applyTransfer(
	txn *gorm.DB,
	xfer Transfer,
	caller Address,
) error {
	token, err := l.db.GetToken(xfer.Asset.Collection, xfer.Asset.TokenId, txn)
	if err != nil {
		return err
	}
	if token == nil {
		return TokenNotFoundError{Asset: xfer.Asset}
	}
	if Address(token.Owner) != xfer.From {
		return NotOwnerError{
			Asset: xfer.Asset,
			Owner: Address(token.Owner),
			From:  xfer.From,
		}
	}
	if caller != xfer.From && Address(token.Operator) != caller {
		return ErrNotAuthorized
	}
	return l.db.UpdateTokenOwner(
		xfer.Asset.Collection,
		xfer.Asset.TokenId,
		string(xfer.To),
		txn,
	)
}
