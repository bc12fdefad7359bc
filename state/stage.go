// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"sort"

	"github.com/vechain/pocm/cache"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/pocm"
)

// Stage abstracts changes of a state.
type Stage struct {
	keys    []stateKey
	changes map[stateKey][]byte
	cache   *cache.LRU
}

func newStage(changes map[stateKey][]byte, cache *cache.LRU) *Stage {
	keys := make([]stateKey, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i].dbKey(), keys[j].dbKey()) < 0
	})
	return &Stage{keys: keys, changes: changes, cache: cache}
}

// Len returns the count of changed entries.
func (s *Stage) Len() int {
	return len(s.keys)
}

// Hash computes the digest of all changes.
func (s *Stage) Hash() pocm.Bytes32 {
	return pocm.Blake2bFn(func(w io.Writer) {
		for _, k := range s.keys {
			w.Write(k.dbKey())
			w.Write(s.changes[k])
		}
	})
}

// Commit writes all changes into the store as one batch.
func (s *Stage) Commit(store kv.Store) error {
	if len(s.keys) == 0 {
		return nil
	}
	batch := store.NewBatch()
	for _, k := range s.keys {
		v := s.changes[k]
		if len(v) == 0 {
			if err := batch.Delete(k.dbKey()); err != nil {
				return &Error{err}
			}
		} else if err := batch.Put(k.dbKey(), v); err != nil {
			return &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return &Error{err}
	}
	if s.cache != nil {
		for _, k := range s.keys {
			s.cache.Add(k, s.changes[k])
		}
	}
	return nil
}
