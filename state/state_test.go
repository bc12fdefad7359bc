// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
)

func newStater(t *testing.T) (*Stater, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStater(db), db
}

func TestStateBalance(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := pocm.BytesToAddress([]byte("acc1"))
	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Zero(t, bal.Sign())

	require.NoError(t, st.SetBalance(addr, big.NewInt(100)))
	bal, err = st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), bal)

	err = st.SetBalance(addr, big.NewInt(-1))
	var stateErr *Error
	assert.True(t, errors.As(err, &stateErr))
}

func TestStateStorage(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()

	addr := pocm.BytesToAddress([]byte("acc1"))
	key := pocm.BytesToBytes32([]byte("key"))

	v, err := st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, pocm.BytesToBytes32([]byte("value")))
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, pocm.BytesToBytes32([]byte("value")), v)

	type item struct {
		A uint64
		B []byte
	}
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&item{1, []byte{2}})
	}))
	var got item
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, item{1, []byte{2}}, got)

	// rlp lists read back as the hash of the raw value
	raw, err := st.GetRawStorage(addr, key)
	require.NoError(t, err)
	v, err = st.GetStorage(addr, key)
	require.NoError(t, err)
	assert.Equal(t, pocm.Blake2b(raw), v)
}

func TestStateRevert(t *testing.T) {
	stater, _ := newStater(t)
	st := stater.NewState()
	addr := pocm.BytesToAddress([]byte("acc1"))

	require.NoError(t, st.SetBalance(addr, big.NewInt(1)))
	chk := st.NewCheckpoint()
	require.NoError(t, st.SetBalance(addr, big.NewInt(2)))
	st.SetStorage(addr, pocm.Bytes32{1}, pocm.Bytes32{2})

	st.RevertTo(chk)

	bal, err := st.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), bal)
	v, err := st.GetStorage(addr, pocm.Bytes32{1})
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	assert.Equal(t, 1, st.Stage().Len())
}

func TestStageCommit(t *testing.T) {
	stater, db := newStater(t)
	st := stater.NewState()

	addr := pocm.BytesToAddress([]byte("acc1"))
	storage := map[pocm.Bytes32]pocm.Bytes32{
		pocm.BytesToBytes32([]byte("s1")): pocm.BytesToBytes32([]byte("v1")),
		pocm.BytesToBytes32([]byte("s2")): pocm.BytesToBytes32([]byte("v2")),
		pocm.BytesToBytes32([]byte("s3")): pocm.BytesToBytes32([]byte("v3")),
	}
	require.NoError(t, st.SetBalance(addr, big.NewInt(10)))
	for k, v := range storage {
		st.SetStorage(addr, k, v)
	}

	stage := st.Stage()
	assert.Equal(t, 4, stage.Len())
	hash := stage.Hash()
	assert.Equal(t, hash, st.Stage().Hash())

	_, err := stater.Commit(st)
	require.NoError(t, err)

	// read back through a fresh state without cache
	fresh := New(db, nil)
	bal, err := fresh.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), bal)
	for k, v := range storage {
		got, err := fresh.GetStorage(addr, k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	// clearing a slot deletes it from the store
	st = stater.NewState()
	st.SetStorage(addr, pocm.BytesToBytes32([]byte("s1")), pocm.Bytes32{})
	_, err = stater.Commit(st)
	require.NoError(t, err)

	has, err := db.Has(storageKey(addr, pocm.BytesToBytes32([]byte("s1"))).dbKey())
	require.NoError(t, err)
	assert.False(t, has)

	v, err := stater.NewState().GetStorage(addr, pocm.BytesToBytes32([]byte("s1")))
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestStater(t *testing.T) {
	stater, _ := newStater(t)
	addr := pocm.BytesToAddress([]byte("acc1"))

	st := stater.NewState()
	_, err := st.GetBalance(addr)
	require.NoError(t, err)
	_, err = stater.NewState().GetBalance(addr)
	require.NoError(t, err)

	hit, miss := stater.CacheStats()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
}

func TestStaterCacheSize(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	assert.Panics(t, func() { newStaterWithCache(db, 0) })
	assert.NotPanics(t, func() { newStaterWithCache(db, 1) })
}
