// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

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
	creator = pocm.BytesToAddress([]byte("creator"))
	alice   = pocm.BytesToAddress([]byte("alice"))
	bob     = pocm.BytesToAddress([]byte("bob"))
)

func newToken(t *testing.T) *Token {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(pocm.BytesToAddress([]byte("staking")), state.New(db, nil), nil))
}

func TestInitialize(t *testing.T) {
	tok := newToken(t)

	transfers, err := tok.Initialize(Metadata{Name: "Pocm", Symbol: "PC", Decimals: 2}, creator, big.NewInt(1000), []Allocation{
		{alice, big.NewInt(100)},
		{creator, big.NewInt(50)},
		{bob, big.NewInt(200)},
	})
	require.NoError(t, err)
	require.Len(t, transfers, 3)
	assert.Equal(t, &Transfer{To: alice, Value: big.NewInt(10000)}, transfers[0])
	assert.Equal(t, &Transfer{To: creator, Value: big.NewInt(70000)}, transfers[2])

	for addr, want := range map[pocm.Address]int64{alice: 10000, bob: 20000, creator: 70000} {
		bal, err := tok.BalanceOf(addr)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(want), bal)
	}
	supply, err := tok.TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100000), supply)

	meta, err := tok.Metadata()
	require.NoError(t, err)
	assert.Equal(t, "PC", meta.Symbol)
	assert.Equal(t, uint8(2), meta.Decimals)
}

func TestInitializeOverAllocated(t *testing.T) {
	tok := newToken(t)
	_, err := tok.Initialize(Metadata{Decimals: 0}, creator, big.NewInt(10), []Allocation{{alice, big.NewInt(11)}})
	assert.Error(t, err)
}

func TestCreditAndTransfer(t *testing.T) {
	tok := newToken(t)

	require.NoError(t, tok.Credit(alice, big.NewInt(10)))
	require.NoError(t, tok.Credit(alice, big.NewInt(5)))
	assert.Error(t, tok.Credit(alice, big.NewInt(-1)))
	assert.Error(t, tok.Credit(pocm.Address{}, big.NewInt(1)))

	tr, err := tok.Transfer(alice, bob, big.NewInt(12))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(12), tr.Value)

	_, err = tok.Transfer(alice, bob, big.NewInt(4))
	assert.Error(t, err)

	bal, err := tok.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(3), bal)
}
