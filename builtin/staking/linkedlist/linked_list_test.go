// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

func newList(t *testing.T) *LinkedList {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := solidity.NewContext(pocm.Address{1}, state.New(db, nil), nil)
	return NewLinkedList(sctx, pocm.Bytes32{1}, pocm.Bytes32{2}, pocm.Bytes32{3})
}

func collect(t *testing.T, l *LinkedList) []pocm.Address {
	var got []pocm.Address
	require.NoError(t, l.Iter(func(a pocm.Address) error {
		got = append(got, a)
		return nil
	}))
	return got
}

func TestLinkedList(t *testing.T) {
	l := newList(t)
	a, b, c := pocm.Address{0xa}, pocm.Address{0xb}, pocm.Address{0xc}

	require.NoError(t, l.Add(a))
	require.NoError(t, l.Add(b))
	require.NoError(t, l.Add(c))

	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
	assert.Equal(t, []pocm.Address{a, b, c}, collect(t, l))

	// middle
	require.NoError(t, l.Remove(b))
	assert.Equal(t, []pocm.Address{a, c}, collect(t, l))

	// head
	require.NoError(t, l.Remove(a))
	head, err := l.Head()
	require.NoError(t, err)
	assert.Equal(t, c, head)

	// unknown is ignored
	require.NoError(t, l.Remove(pocm.Address{0xd}))
	n, err = l.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), n)

	// tail, list becomes empty then reusable
	require.NoError(t, l.Remove(c))
	assert.Empty(t, collect(t, l))
	require.NoError(t, l.Add(b))
	assert.Equal(t, []pocm.Address{b}, collect(t, l))

	assert.Error(t, l.Add(pocm.Address{}))
}

func TestLinkedListRemoveWhileIterating(t *testing.T) {
	l := newList(t)
	for i := byte(1); i <= 4; i++ {
		require.NoError(t, l.Add(pocm.Address{i}))
	}
	var seen []pocm.Address
	require.NoError(t, l.Iter(func(a pocm.Address) error {
		seen = append(seen, a)
		return l.Remove(a)
	}))
	assert.Len(t, seen, 4)
	n, err := l.Len()
	require.NoError(t, err)
	assert.Zero(t, n)
}
