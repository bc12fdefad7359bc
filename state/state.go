// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/pocm/cache"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/stackedmap"
)

const (
	spaceBalance byte = 'b'
	spaceStorage byte = 's'
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

type stateKey struct {
	space byte
	addr  pocm.Address
	key   pocm.Bytes32
}

func balanceKey(addr pocm.Address) stateKey {
	return stateKey{space: spaceBalance, addr: addr}
}

func storageKey(addr pocm.Address, key pocm.Bytes32) stateKey {
	return stateKey{space: spaceStorage, addr: addr, key: key}
}

func (k stateKey) dbKey() []byte {
	b := make([]byte, 0, 1+20+32)
	b = append(b, k.space)
	b = append(b, k.addr[:]...)
	if k.space == spaceStorage {
		b = append(b, k.key[:]...)
	}
	return b
}

// State manages the contract storage and balances.
type State struct {
	db    kv.Getter
	cache *cache.LRU
	sm    *stackedmap.StackedMap[stateKey, []byte]
}

// New create state object.
// The cache is optional and holds committed values only.
func New(db kv.Getter, cache *cache.LRU) *State {
	state := State{
		db:    db,
		cache: cache,
	}
	state.sm = stackedmap.New(func(key stateKey) ([]byte, bool, error) {
		v, err := state.load(key)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	})
	return &state
}

func (s *State) load(key stateKey) ([]byte, error) {
	loader := func(any) (any, error) {
		v, err := s.db.Get(key.dbKey())
		if err != nil {
			if s.db.IsNotFound(err) {
				return []byte(nil), nil
			}
			return nil, err
		}
		return v, nil
	}
	if s.cache == nil {
		v, err := loader(key)
		if err != nil {
			return nil, err
		}
		return v.([]byte), nil
	}
	v, err := s.cache.GetOrLoad(key, loader)
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetBalance returns balance for the given address.
func (s *State) GetBalance(addr pocm.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return new(big.Int).SetBytes(v), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr pocm.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance %v of %v", balance, addr)}
	}
	s.sm.Put(balanceKey(addr), balance.Bytes())
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr pocm.Address, key pocm.Bytes32) (pocm.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return pocm.Bytes32{}, err
	}
	if len(raw) == 0 {
		return pocm.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return pocm.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// special case for rlp list, it should be customized storage value
		// return hash of raw data
		return pocm.Blake2b(raw), nil
	}
	return pocm.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr pocm.Address, key, value pocm.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr pocm.Address, key pocm.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey(addr, key))
	if err != nil {
		return nil, &Error{err}
	}
	return data, nil
}

// SetRawStorage set storage value in rlp raw.
// An empty raw value clears the slot.
func (s *State) SetRawStorage(addr pocm.Address, key pocm.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey(addr, key), raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by end will be absorbed by State instance.
func (s *State) EncodeStorage(addr pocm.Address, key pocm.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr pocm.Address, key pocm.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to compute hash of changes or commit them.
func (s *State) Stage() *Stage {
	changes := make(map[stateKey][]byte)
	s.sm.Journal(func(k stateKey, v []byte) bool {
		changes[k] = v
		return true
	})
	return newStage(changes, s.cache)
}
