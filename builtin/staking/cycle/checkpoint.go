// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cycle

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
)

// Checkpoint pins the total stake and the undivided unit price for the cycles
// (Cycle-Span, Cycle].
type Checkpoint struct {
	Cycle uint64
	Stake *big.Int // base units of the locked asset
	Price *big.Int // unit price scaled by 10^decimals
	Span  uint64
}

// First returns the first cycle covered by the checkpoint.
func (c *Checkpoint) First() uint64 {
	return c.Cycle - c.Span + 1
}

// Overlap returns how many cycles of [start, end] the checkpoint covers.
func (c *Checkpoint) Overlap(start, end uint64) uint64 {
	if c.Span == 0 {
		return 0
	}
	lo := max(c.First(), start)
	hi := min(c.Cycle, end)
	if hi < lo {
		return 0
	}
	return hi - lo + 1
}

// UnitRate is the reward of one display unit of stake for one cycle of the
// checkpoint, truncated at the token precision. It is zero when nothing is staked.
func (c *Checkpoint) UnitRate(decimals int32) decimal.Decimal {
	if c.Stake.Sign() == 0 {
		return decimal.Zero
	}
	return fixedpoint.Quo(
		fixedpoint.FromScaled(c.Price, decimals),
		fixedpoint.ToDisplay(c.Stake, pocm.AssetDecimals),
		decimals,
	)
}
