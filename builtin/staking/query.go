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
	"github.com/vechain/pocm/builtin/staking/mining"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/pocm"
)

//
// Getters - no state change, except the lazy checkpoint of CurrentPrice
//

// DepositInfo is the position set of a depositor.
type DepositInfo struct {
	*deposit.Account
	Positions []*deposit.Position
}

// MiningInfo is the reward aggregate of a receiver.
type MiningInfo struct {
	*mining.Info
	Cursors []*mining.Cursor
}

func (s *Staking) DepositInfo(addr pocm.Address) (*DepositInfo, error) {
	acc, err := s.depositService.Account(addr)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, reverts.Newf(reverts.NotFound, "%v is not involved in the deposit", addr)
	}
	positions, err := s.depositService.Positions(acc)
	if err != nil {
		return nil, err
	}
	return &DepositInfo{Account: acc, Positions: positions}, nil
}

func (s *Staking) MiningInfo(addr pocm.Address) (*MiningInfo, error) {
	info, err := s.miningService.Info(addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, reverts.Newf(reverts.NotFound, "no mining information for %v", addr)
	}
	cursors, err := s.miningService.Cursors(info)
	if err != nil {
		return nil, err
	}
	return &MiningInfo{Info: info, Cursors: cursors}, nil
}

// Position returns a live position by id.
func (s *Staking) Position(id uint64) (*deposit.Position, error) {
	pos, err := s.depositService.Position(id)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		return nil, reverts.Newf(reverts.NotFound, "position %d not found", id)
	}
	return pos, nil
}

// CurrentPrice returns the reward per display unit of stake for the cycle of height.
func (s *Staking) CurrentPrice(height uint64) (decimal.Decimal, error) {
	if height < s.config.CreateHeight {
		height = s.config.CreateHeight
	}
	return s.cycleService.CurrentPrice(height)
}

func (s *Staking) InitialPrice() (decimal.Decimal, error) {
	return s.cycleService.InitialPrice()
}

// TotalDeposit returns the stake locked by live positions, in base units.
func (s *Staking) TotalDeposit() (*big.Int, error) {
	return s.depositService.TotalDeposit()
}

func (s *Staking) TotalDepositAddressCount() (uint64, error) {
	return s.depositService.DepositorCount()
}

// Checkpoints dumps the reward cycle ledger.
func (s *Staking) Checkpoints() ([]*cycle.Checkpoint, error) {
	return s.cycleService.Checkpoints()
}

// TotalDepositNumber returns the number of checkpoints in the ledger.
func (s *Staking) TotalDepositNumber() (uint64, error) {
	return s.cycleService.Len()
}

// CurrentRewardCycle returns the cycle of height.
func (s *Staking) CurrentRewardCycle(height uint64) uint64 {
	if height < s.config.CreateHeight {
		return 0
	}
	return s.cycleService.CycleOf(height)
}

// HalvingRounds returns the number of halvings applied to the ledger so far.
func (s *Staking) HalvingRounds() (uint64, error) {
	return s.cycleService.HalvingRounds()
}

// TotalMinted returns the reward minted by settlements.
func (s *Staking) TotalMinted() (*big.Int, error) {
	return s.miningService.TotalMinted()
}

// Accounts traverses the depositor accounts in first deposit order.
func (s *Staking) Accounts(cb func(*deposit.Account) error) error {
	return s.depositService.Accounts(cb)
}
