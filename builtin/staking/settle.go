// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/xenv"
)

// Reward is the amount minted to one receiver by a call.
type Reward struct {
	Receiver pocm.Address
	Amount   *big.Int
}

// Claim settles every position of the caller.
func (s *Staking) Claim(env *xenv.Environment) ([]*Reward, error) {
	if err := nonPayable(env); err != nil {
		return nil, err
	}
	acc, err := s.depositService.Account(env.Caller())
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, reverts.Newf(reverts.NotFound, "%v is not involved in the deposit", env.Caller())
	}
	return s.settle(env, []*deposit.Account{acc})
}

// ClaimAsReceiver settles every depositor account that has a position paying
// the caller, each account once.
func (s *Staking) ClaimAsReceiver(env *xenv.Environment) ([]*Reward, error) {
	if err := nonPayable(env); err != nil {
		return nil, err
	}
	info, err := s.miningService.Info(env.Caller())
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, reverts.Newf(reverts.NotFound, "no mining information for %v", env.Caller())
	}
	cursors, err := s.miningService.Cursors(info)
	if err != nil {
		return nil, err
	}

	seen := make(map[pocm.Address]bool)
	var accounts []*deposit.Account
	for _, cur := range cursors {
		if seen[cur.Depositor] {
			continue
		}
		seen[cur.Depositor] = true
		acc, err := s.depositService.Account(cur.Depositor)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			return nil, reverts.Newf(reverts.NotFound, "%v is not involved in the deposit", cur.Depositor)
		}
		accounts = append(accounts, acc)
	}
	return s.settle(env, accounts)
}

// settle pays every cursor of the accounts up to the current cycle and mints
// the rewards, once per receiver.
func (s *Staking) settle(env *xenv.Environment, accounts []*deposit.Account) ([]*Reward, error) {
	current := s.cycleService.CycleOf(env.Height())
	ensured := false

	var rewards []*Reward
	byReceiver := make(map[pocm.Address]*Reward)
	for _, acc := range accounts {
		positions, err := s.depositService.Positions(acc)
		if err != nil {
			return nil, err
		}
		for _, pos := range positions {
			cur, err := s.miningService.Cursor(pos.ID)
			if err != nil {
				return nil, err
			}
			if cur == nil {
				return nil, reverts.Newf(reverts.NotFound, "mining details of position %d not found", pos.ID)
			}
			if cur.NextStartCycle > current {
				continue
			}
			if !ensured {
				if _, err := s.cycleService.Ensure(current); err != nil {
					return nil, err
				}
				ensured = true
			}

			start := cur.NextStartCycle
			rate, err := s.cycleService.RateBetween(start, current)
			if err != nil {
				return nil, err
			}
			amount := fixedpoint.ToBase(fixedpoint.ToDisplay(pos.Amount, pocm.AssetDecimals).Mul(rate), s.decimals())
			if err := s.miningService.Advance(cur, current, amount); err != nil {
				return nil, err
			}
			metricSettlements().Add(1)
			logger.Trace("position settled", "id", pos.ID, "from", start, "to", current, "amount", amount)

			r, ok := byReceiver[cur.Receiver]
			if !ok {
				r = &Reward{Receiver: cur.Receiver, Amount: new(big.Int)}
				byReceiver[cur.Receiver] = r
				rewards = append(rewards, r)
			}
			r.Amount.Add(r.Amount, amount)
		}
	}
	if err := s.mint(env, rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

func (s *Staking) mint(env *xenv.Environment, rewards []*Reward) error {
	if len(rewards) == 0 {
		return nil
	}
	total := new(big.Int)
	for _, r := range rewards {
		if err := s.token.Credit(r.Receiver, r.Amount); err != nil {
			return err
		}
		total.Add(total, r.Amount)
		env.Emit(&TransferEvent{To: r.Receiver, Value: new(big.Int).Set(r.Amount)})

		info, err := s.miningService.Info(r.Receiver)
		if err != nil {
			return err
		}
		ev := &MiningEvent{Receiver: r.Receiver, Amount: new(big.Int).Set(r.Amount)}
		if info != nil {
			ev.TotalMining = info.TotalMining
			ev.ReceivedMining = info.ReceivedMining
		}
		env.Emit(ev)
	}

	supply, err := s.token.TotalSupply()
	if err != nil {
		return err
	}
	if err := s.token.SetTotalSupply(supply.Add(supply, total)); err != nil {
		return err
	}
	metricRewardMinted().Add(fixedpoint.ToDisplay(total, s.decimals()).IntPart())
	logger.Debug("reward minted", "receivers", len(rewards), "amount", total, "height", env.Height())
	return nil
}
