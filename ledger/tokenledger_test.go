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

package ledger_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/ledger"
)

const (
	alice  = ledger.Address("alice")
	bob    = ledger.Address("bob")
	escrow = ledger.Address("escrow")
)

var (
	catSeven = ledger.AssetRef{Collection: "cats", TokenId: 7}
	dogNine  = ledger.AssetRef{Collection: "dogs", TokenId: 9}
)

func newTestLedger(t *testing.T) *ledger.TokenLedger {
	t.Helper()
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return ledger.NewTokenLedger(ledger.TokenLedgerConfig{Database: db})
}

func TestMintAndOwnerOf(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
	// Double mint is rejected
	assert.Error(t, l.Mint(catSeven, bob))
	// Unknown token
	_, err = l.OwnerOf(dogNine)
	var notFound ledger.TokenNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, dogNine, notFound.Asset)
}

func TestTransferByOwner(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	require.NoError(t, l.Transfer(
		ledger.Transfer{Asset: catSeven, From: alice, To: bob},
		alice,
	))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestTransferUnauthorized(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	err := l.Transfer(
		ledger.Transfer{Asset: catSeven, From: alice, To: bob},
		bob,
	)
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)
	// Wrong sender
	err = l.Transfer(
		ledger.Transfer{Asset: catSeven, From: bob, To: alice},
		bob,
	)
	var notOwner ledger.NotOwnerError
	assert.ErrorAs(t, err, &notOwner)
}

func TestApprovedOperatorTransfer(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	require.NoError(t, l.Approve(catSeven, alice, escrow))
	require.NoError(t, l.Transfer(
		ledger.Transfer{Asset: catSeven, From: alice, To: escrow},
		escrow,
	))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, escrow, owner)
	// Approval is consumed on transfer
	err = l.Transfer(
		ledger.Transfer{Asset: catSeven, From: escrow, To: bob},
		alice,
	)
	assert.ErrorIs(t, err, ledger.ErrNotAuthorized)
}

func TestApproveRequiresOwner(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	err := l.Approve(catSeven, bob, escrow)
	var notOwner ledger.NotOwnerError
	assert.ErrorAs(t, err, &notOwner)
}

func TestTransferBatchAllOrNothing(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, escrow))
	require.NoError(t, l.Mint(dogNine, alice))
	// Second transfer is unauthorized, so the first must not stick
	err := l.TransferBatch([]ledger.Transfer{
		{Asset: catSeven, From: escrow, To: bob},
		{Asset: dogNine, From: alice, To: bob},
	}, escrow)
	require.ErrorIs(t, err, ledger.ErrNotAuthorized)
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, escrow, owner)
}

func TestReceiveHookInvoked(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	var got ledger.Received
	l.OnReceive(escrow, func(recv ledger.Received) error {
		got = recv
		return nil
	})
	require.NoError(t, l.TransferWithData(
		ledger.Transfer{Asset: catSeven, From: alice, To: escrow},
		alice,
		[]byte("intent"),
	))
	assert.Equal(t, catSeven, got.Asset)
	assert.Equal(t, alice, got.From)
	assert.Equal(t, []byte("intent"), got.Data)
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, escrow, owner)
}

func TestReceiveHookRejectionRevertsTransfer(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	hookErr := errors.New("bad intent")
	l.OnReceive(escrow, func(recv ledger.Received) error {
		return hookErr
	})
	err := l.TransferWithData(
		ledger.Transfer{Asset: catSeven, From: alice, To: escrow},
		alice,
		[]byte("intent"),
	)
	require.ErrorIs(t, err, hookErr)
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, alice, owner, "rejected transfer must be reverted")
}

func TestReceiveHookSkippedWithoutData(t *testing.T) {
	l := newTestLedger(t)
	require.NoError(t, l.Mint(catSeven, alice))
	called := false
	l.OnReceive(escrow, func(recv ledger.Received) error {
		called = true
		return nil
	})
	require.NoError(t, l.TransferWithData(
		ledger.Transfer{Asset: catSeven, From: alice, To: escrow},
		alice,
		nil,
	))
	assert.False(t, called, "hook must not fire for plain transfers")
}
