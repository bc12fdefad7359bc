// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache lookups.
type Stats struct {
	hit, miss atomic.Int64
	reported  atomic.Int32 // hit rate in permille at the last Report
}

func (s *Stats) Hit()  { s.hit.Add(1) }
func (s *Stats) Miss() { s.miss.Add(1) }

// Counts returns the lookups so far.
func (s *Stats) Counts() (hit, miss int64) {
	return s.hit.Load(), s.miss.Load()
}

// Report returns the hit rate in permille, and whether it moved since the
// previous Report.
func (s *Stats) Report() (permille int32, moved bool) {
	hit, miss := s.Counts()
	if hit+miss > 0 {
		permille = int32(hit * 1000 / (hit + miss))
	}
	return permille, s.reported.Swap(permille) != permille
}
