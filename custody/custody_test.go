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

package custody_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openbarter/barter/custody"
	"github.com/openbarter/barter/database"
	"github.com/openbarter/barter/ledger"
)

const (
	alice     = ledger.Address("alice")
	bob       = ledger.Address("bob")
	custodian = ledger.Address("custodian")
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
	l := ledger.NewTokenLedger(ledger.TokenLedgerConfig{Database: db})
	require.NoError(t, l.Mint(catSeven, alice))
	require.NoError(t, l.Mint(dogNine, bob))
	return l
}

func TestDirectIntakeAndSettle(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewDirectCoordinator(custody.DirectConfig{Ledger: l})
	require.True(t, c.TakesCustody())
	assert.Equal(t, custody.ModeDirect, c.Mode())

	require.NoError(t, l.Approve(catSeven, alice, c.Holder()))
	require.NoError(t, c.Intake(catSeven, alice))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, c.Holder(), owner)

	require.NoError(t, l.Approve(dogNine, bob, c.Holder()))
	require.NoError(t, c.Settle(custody.Settlement{
		ProposerAsset:     catSeven,
		ProposeeAsset:     dogNine,
		Proposer:          alice,
		Proposee:          bob,
		ProposeeAssetFrom: bob,
	}))
	owner, err = l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
	owner, err = l.OwnerOf(dogNine)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestDirectSettleRequiresEscrowedProposerAsset(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewDirectCoordinator(custody.DirectConfig{Ledger: l})
	err := c.Settle(custody.Settlement{
		ProposerAsset:     catSeven,
		ProposeeAsset:     dogNine,
		Proposer:          alice,
		Proposee:          bob,
		ProposeeAssetFrom: bob,
	})
	assert.ErrorIs(t, err, custody.ErrProposerAssetNotHeld)
}

func TestDirectSettleIsAtomic(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewDirectCoordinator(custody.DirectConfig{Ledger: l})
	require.NoError(t, l.Approve(catSeven, alice, c.Holder()))
	require.NoError(t, c.Intake(catSeven, alice))
	// No approval for the proposee asset, so the second transfer of
	// the settlement batch fails and the first must not stick
	err := c.Settle(custody.Settlement{
		ProposerAsset:     catSeven,
		ProposeeAsset:     dogNine,
		Proposer:          alice,
		Proposee:          bob,
		ProposeeAssetFrom: bob,
	})
	require.ErrorIs(t, err, ledger.ErrNotAuthorized)
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, c.Holder(), owner)
	owner, err = l.OwnerOf(dogNine)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
}

func TestDirectReturn(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewDirectCoordinator(custody.DirectConfig{Ledger: l})
	require.NoError(t, l.Approve(catSeven, alice, c.Holder()))
	require.NoError(t, c.Intake(catSeven, alice))
	require.NoError(t, c.Return(catSeven, alice))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestDirectReturnWithoutCustodyIsInvariantViolation(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewDirectCoordinator(custody.DirectConfig{Ledger: l})
	err := c.Return(catSeven, alice)
	var invariantErr custody.InvariantError
	require.ErrorAs(t, err, &invariantErr)
	assert.Equal(t, catSeven, invariantErr.Asset)
}

func TestEOANoCustody(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewEOACoordinator(custody.EOAConfig{
		Ledger:    l,
		Custodian: custodian,
	})
	require.False(t, c.TakesCustody())
	assert.Equal(t, custody.ModeEOA, c.Mode())
	assert.Equal(t, custodian, c.Holder())
	// Intake, settle, and return never move assets
	require.NoError(t, c.Intake(catSeven, alice))
	require.NoError(t, c.Settle(custody.Settlement{}))
	require.NoError(t, c.Return(catSeven, alice))
	owner, err := l.OwnerOf(catSeven)
	require.NoError(t, err)
	assert.Equal(t, alice, owner)
}

func TestEOAVerifyHeld(t *testing.T) {
	l := newTestLedger(t)
	c := custody.NewEOACoordinator(custody.EOAConfig{
		Ledger:    l,
		Custodian: custodian,
	})
	err := c.VerifyHeld(catSeven, dogNine)
	require.ErrorIs(t, err, custody.ErrAssetsNotHeldByCustodian)
	require.NoError(t, l.Transfer(
		ledger.Transfer{Asset: catSeven, From: alice, To: custodian},
		alice,
	))
	require.NoError(t, l.Transfer(
		ledger.Transfer{Asset: dogNine, From: bob, To: custodian},
		bob,
	))
	require.NoError(t, c.VerifyHeld(catSeven, dogNine))
}

func TestIntentRoundTrip(t *testing.T) {
	intent := custody.TransferIntent{
		ProposerCollection: "cats",
		ProposerTokenId:    7,
		ProposeeCollection: "dogs",
		ProposeeTokenId:    9,
	}
	assert.Equal(t, custody.IntentNewProposal, intent.Kind())
	data, err := intent.Encode()
	require.NoError(t, err)
	decoded, err := custody.DecodeIntent(data)
	require.NoError(t, err)
	assert.Equal(t, intent, *decoded)
	assert.Equal(t, catSeven, decoded.ProposerAsset())
	assert.Equal(t, dogNine, decoded.ProposeeAsset())

	intent.ProposalId = 3
	assert.Equal(t, custody.IntentAccept, intent.Kind())
}

func TestIntentDecodeMalformed(t *testing.T) {
	_, err := custody.DecodeIntent([]byte("not json"))
	assert.Error(t, err)
}
