// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

type TestStruct struct {
	Field1 uint64
	Field2 *big.Int
	Addr1  pocm.Address
}

// newTestContext returns a fresh Context with in-memory DB.
func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(pocm.Address{1}, state.New(db, nil), &Meter{})
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[pocm.Address, *TestStruct](ctx, pocm.Bytes32{1})

	key := pocm.Address{2}
	v, err := m.Get(key)
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Equal(t, uint64(0), v.Field1)

	exists, err := m.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)

	value := &TestStruct{Field1: 7, Field2: big.NewInt(100), Addr1: pocm.Address{3}}
	require.NoError(t, m.Set(key, value))
	assert.Equal(t, uint64(1), ctx.Meter().Writes)

	v, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, v)
	assert.Equal(t, uint64(1), ctx.Meter().Reads)

	m.Delete(key)
	exists, err = m.Exists(key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMappingValueType(t *testing.T) {
	ctx := newTestContext(t)
	m := NewMapping[Uint64Key, uint64](ctx, pocm.Bytes32{1})

	require.NoError(t, m.Set(5, 42))
	v, err := m.Get(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	v, err = m.Get(6)
	require.NoError(t, err)
	assert.Zero(t, v)

	// same key under another base position is a different slot
	other := NewMapping[Uint64Key, uint64](ctx, pocm.Bytes32{2})
	v, err = other.Get(5)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, pocm.Bytes32{1})

	require.NoError(t, u.Set(big.NewInt(1000)))
	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1000), value)

	require.NoError(t, u.Add(big.NewInt(500)))
	require.NoError(t, u.Sub(big.NewInt(200)))
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)

	assert.ErrorIs(t, u.Sub(big.NewInt(1301)), errUnderflow)
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)

	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	require.NoError(t, u.Set(max))
	assert.ErrorIs(t, u.Add(big.NewInt(1)), errOverflow)
	assert.ErrorIs(t, u.Set(new(big.Int).Lsh(big.NewInt(1), 256)), errOverflow)
	assert.ErrorIs(t, u.Add(big.NewInt(-1)), errOverflow)
}

func TestUint64(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint64(ctx, pocm.Bytes32{1})

	v, err := u.Get()
	require.NoError(t, err)
	assert.Zero(t, v)

	u.Set(123)
	v, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(123), v)
}

func TestAddress(t *testing.T) {
	ctx := newTestContext(t)
	a := NewAddress(ctx, pocm.Bytes32{1})

	addr, err := a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())

	want := pocm.Address{0xaa, 0xbb}
	a.Set(&want)
	addr, err = a.Get()
	require.NoError(t, err)
	assert.Equal(t, want, addr)

	a.Set(nil)
	addr, err = a.Get()
	require.NoError(t, err)
	assert.True(t, addr.IsZero())
}

func TestArray(t *testing.T) {
	ctx := newTestContext(t)
	arr := NewArray[*TestStruct](ctx, pocm.Bytes32{1})

	n, err := arr.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := range 3 {
		idx, err := arr.Push(&TestStruct{Field1: uint64(i), Field2: big.NewInt(int64(i))})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	n, err = arr.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	require.NoError(t, arr.Set(1, &TestStruct{Field1: 10, Field2: big.NewInt(10)}))
	v, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), v.Field1)

	_, err = arr.Get(3)
	assert.Error(t, err)
	assert.Error(t, arr.Set(3, &TestStruct{}))
}
