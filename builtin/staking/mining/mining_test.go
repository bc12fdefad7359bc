// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mining

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

var (
	alice = pocm.BytesToAddress([]byte("alice"))
	bob   = pocm.BytesToAddress([]byte("bob"))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(pocm.BytesToAddress([]byte("staking")), state.New(db, nil), nil))
}

func TestCursorLifecycle(t *testing.T) {
	svc := newSvc(t)

	cur, err := svc.Open(1, bob, alice, 2)
	require.NoError(t, err)
	_, err = svc.Open(2, bob, bob, 3)
	require.NoError(t, err)
	_, err = svc.Open(1, bob, alice, 2)
	assert.Error(t, err, "duplicate cursor")

	info, err := svc.Info(bob)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, info.CursorIDs)
	none, err := svc.Info(alice)
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, svc.Advance(cur, 4, big.NewInt(300)))
	assert.Equal(t, uint64(5), cur.NextStartCycle)
	assert.Equal(t, uint64(3), cur.MiningCount)
	assert.Error(t, svc.Advance(cur, 3, big.NewInt(1)))

	stored, err := svc.Cursor(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), stored.MiningAmount)
	assert.Equal(t, alice, stored.Depositor)

	info, err = svc.Info(bob)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), info.TotalMining)
	assert.Equal(t, big.NewInt(300), info.ReceivedMining)

	curs, err := svc.Cursors(info)
	require.NoError(t, err)
	assert.Len(t, curs, 2)

	require.NoError(t, svc.Close(1))
	gone, err := svc.Cursor(1)
	require.NoError(t, err)
	assert.Nil(t, gone)
	assert.Error(t, svc.Close(1))

	require.NoError(t, svc.Close(2))
	info, err = svc.Info(bob)
	require.NoError(t, err)
	assert.Nil(t, info)

	minted, err := svc.TotalMinted()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(300), minted)
}
