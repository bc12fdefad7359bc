// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pocm/pocm"
)

type Key interface {
	Bytes() []byte
}

// Uint64Key is a mapping key of an unsigned integer, such as a cycle or a sequence number.
type Uint64Key uint64

func (k Uint64Key) Bytes() []byte {
	return binary.BigEndian.AppendUint64(nil, uint64(k))
}

// Mapping is a key/value storage abstraction for built-in contracts, similar to the mapping in Solidity.
// Values are rlp encoded, a missing entry decodes as the zero value.
type Mapping[K Key, V any] struct {
	context *Context
	basePos pocm.Bytes32
}

func NewMapping[K Key, V any](context *Context, pos pocm.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) pocm.Bytes32 {
	return pocm.Blake2b(key.Bytes(), m.basePos.Bytes())
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.state.DecodeStorage(m.context.address, m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		m.context.meter.read(slotsOf(raw))
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Exists reports whether the entry holds a value.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.GetRawStorage(m.context.address, m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

func (m *Mapping[K, V]) Set(key K, value V) error {
	return m.context.state.EncodeStorage(m.context.address, m.position(key), func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		m.context.meter.write(slotsOf(val))
		return val, nil
	})
}

// Delete clears the entry.
func (m *Mapping[K, V]) Delete(key K) {
	m.context.meter.write(1)
	m.context.state.SetRawStorage(m.context.address, m.position(key), nil)
}
