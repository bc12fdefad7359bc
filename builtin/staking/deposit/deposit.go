// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"math/big"

	"github.com/vechain/pocm/pocm"
)

// Status is the lock state of a live position.
type Status int

const (
	// Active positions are still locked.
	Active Status = iota
	// Unlockable positions may be withdrawn.
	Unlockable
)

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "unlockable"
}

// Position is one locked stake. It is immutable and destroyed by withdrawal.
type Position struct {
	ID           uint64
	Owner        pocm.Address
	Receiver     pocm.Address
	Amount       *big.Int
	OriginHeight uint64
	UnlockHeight uint64
}

// Status returns the lock state at height.
func (p *Position) Status(height uint64) Status {
	if height >= p.UnlockHeight {
		return Unlockable
	}
	return Active
}

// Account aggregates the live positions of one depositor.
type Account struct {
	Owner       pocm.Address
	TotalAmount *big.Int
	PositionIDs []uint64 // ascending
}

func (a *Account) PositionCount() int {
	return len(a.PositionIDs)
}

// IsEmpty returns true when the account holds no position.
func (a *Account) IsEmpty() bool {
	return len(a.PositionIDs) == 0
}

func (a *Account) removeID(id uint64) bool {
	for i, v := range a.PositionIDs {
		if v == id {
			a.PositionIDs = append(a.PositionIDs[:i], a.PositionIDs[i+1:]...)
			return true
		}
	}
	return false
}
