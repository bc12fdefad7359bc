// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/builtin/staking/cycle"
	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/builtin/token"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
)

// Config holds the creation parameters of a contract. It is immutable once
// the contract exists.
type Config struct {
	Token         token.Metadata
	InitialAmount *big.Int // display units of the reward token
	Allocations   []token.Allocation

	Price              string   // reward per cycle, display units of the reward token
	AwardingCycle      uint64   // heights per reward cycle
	MinimumDeposit     *big.Int // base units of the locked asset
	MinimumLocked      uint64   // heights a position stays locked
	RewardHalvingCycle uint64   // heights between halvings, 0 disables halving
	MaxDepositors      uint64   // 0 means unlimited

	Owner        pocm.Address
	CreateHeight uint64
}

// Validate checks the creation parameters and returns the parsed price.
func (c *Config) Validate() (decimal.Decimal, error) {
	if c.Token.Name == "" || c.Token.Symbol == "" {
		return decimal.Zero, reverts.New(reverts.Validation, "token name and symbol are required")
	}
	if c.Token.Decimals > pocm.MaxTokenDecimals {
		return decimal.Zero, reverts.Newf(reverts.Validation, "decimals should be at most %d", pocm.MaxTokenDecimals)
	}
	if c.InitialAmount == nil || c.InitialAmount.Sign() < 0 {
		return decimal.Zero, reverts.New(reverts.Validation, "initial amount should be greater than or equal to 0")
	}
	for _, a := range c.Allocations {
		if a.Address.IsZero() || a.Amount == nil || a.Amount.Sign() < 0 {
			return decimal.Zero, reverts.Newf(reverts.Validation, "invalid allocation to %v", a.Address)
		}
	}

	price, err := fixedpoint.Parse(c.Price)
	if err != nil {
		return decimal.Zero, reverts.New(reverts.Validation, err.Error())
	}
	if !price.IsPositive() {
		return decimal.Zero, reverts.New(reverts.Validation, "price should be greater than 0")
	}
	if !fixedpoint.FitsPrecision(price, int32(c.Token.Decimals)) {
		return decimal.Zero, reverts.Newf(reverts.Validation, "maximum %d-bit decimal", c.Token.Decimals)
	}
	if c.MinimumLocked == 0 {
		return decimal.Zero, reverts.New(reverts.Validation, "the minimum lock value should be greater than 0")
	}
	if c.AwardingCycle == 0 {
		return decimal.Zero, reverts.New(reverts.Validation, "awarding cycle should be greater than 0")
	}
	if c.MinimumDeposit == nil || c.MinimumDeposit.Sign() <= 0 {
		return decimal.Zero, reverts.New(reverts.Validation, "minimum deposit should be greater than 0")
	}
	return price, nil
}

func (c *Config) cycleParams() cycle.Params {
	return cycle.Params{
		CreateHeight:    c.CreateHeight,
		AwardingCycle:   c.AwardingCycle,
		HalvingInterval: c.RewardHalvingCycle,
		Decimals:        int32(c.Token.Decimals),
	}
}

func (c *Config) depositParams() deposit.Params {
	return deposit.Params{
		MinimumDeposit: c.MinimumDeposit,
		MinimumLocked:  c.MinimumLocked,
		MaxDepositors:  c.MaxDepositors,
	}
}
