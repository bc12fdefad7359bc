// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/pkg/errors"

	"github.com/vechain/pocm/pocm"
)

// Array is an append-mostly dynamic array, similar to a storage array in Solidity.
// The length lives at pos, elements live in a mapping keyed by index.
type Array[V any] struct {
	length *Uint64
	items  *Mapping[Uint64Key, V]
}

func NewArray[V any](context *Context, pos pocm.Bytes32) *Array[V] {
	return &Array[V]{
		length: NewUint64(context, pos),
		items:  NewMapping[Uint64Key, V](context, pocm.Blake2b(pos.Bytes())),
	}
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

func (a *Array[V]) Get(index uint64) (v V, err error) {
	n, err := a.length.Get()
	if err != nil {
		return v, err
	}
	if index >= n {
		return v, errors.Errorf("array index %d out of range [0, %d)", index, n)
	}
	return a.items.Get(Uint64Key(index))
}

func (a *Array[V]) Set(index uint64, value V) error {
	n, err := a.length.Get()
	if err != nil {
		return err
	}
	if index >= n {
		return errors.Errorf("array index %d out of range [0, %d)", index, n)
	}
	return a.items.Set(Uint64Key(index), value)
}

// Push appends the value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	n, err := a.length.Get()
	if err != nil {
		return 0, err
	}
	if err := a.items.Set(Uint64Key(n), value); err != nil {
		return 0, err
	}
	a.length.Set(n + 1)
	return n, nil
}
