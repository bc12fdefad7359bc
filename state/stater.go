// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/pkg/errors"

	"github.com/vechain/pocm/cache"
	"github.com/vechain/pocm/kv"
	"github.com/vechain/pocm/log"
)

var logger = log.WithContext("pkg", "state")

const stateCacheSize = 8192

// Stater is the state creator.
type Stater struct {
	db    kv.Store
	cache *cache.LRU
}

// NewStater create a new stater.
func NewStater(db kv.Store) *Stater {
	return newStaterWithCache(db, stateCacheSize)
}

func newStaterWithCache(db kv.Store, cacheSize int) *Stater {
	c, err := cache.NewLRU(cacheSize)
	if err != nil {
		panic(errors.Wrap(err, "state cache"))
	}
	return &Stater{db, c}
}

// NewState create a new state object over the latest committed data.
func (s *Stater) NewState() *State {
	return New(s.db, s.cache)
}

// Commit commits the changes of the given state.
func (s *Stater) Commit(st *State) (*Stage, error) {
	stage := st.Stage()
	if err := stage.Commit(s.db); err != nil {
		return nil, err
	}
	if rate, moved := s.cache.Stats().Report(); moved {
		hit, miss := s.cache.Stats().Counts()
		logger.Debug("slot cache", "hitrate", float64(rate)/10, "hit", hit, "miss", miss)
	}
	return stage, nil
}

// CacheStats returns hit/miss counters of the committed value cache.
func (s *Stater) CacheStats() (hit, miss int64) {
	return s.cache.Stats().Counts()
}
