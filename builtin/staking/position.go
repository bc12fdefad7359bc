// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/xenv"
)

// Withdrawal is the outcome of ClosePosition.
type Withdrawal struct {
	Positions []*deposit.Position
	Principal *big.Int
	Rewards   []*Reward
}

// catchUp materializes the checkpoint of the cycle governing height.
func (s *Staking) catchUp(height uint64) (uint64, error) {
	c := s.cycleService.CycleOf(height)
	if _, err := s.cycleService.Ensure(c); err != nil {
		return 0, err
	}
	return c, nil
}

// OpenPosition locks the value attached to the call. The reward of the new
// position is paid to receiver, or to the caller when receiver is nil.
func (s *Staking) OpenPosition(env *xenv.Environment, receiver *pocm.Address) (*deposit.Position, error) {
	owner := env.Caller()
	amount := env.Value()
	height := env.Height()

	to := owner
	if receiver != nil {
		if receiver.IsZero() {
			return nil, reverts.New(reverts.Validation, "receiver should not be the zero address")
		}
		to = *receiver
	}
	if err := s.depositService.Admit(owner, amount); err != nil {
		return nil, err
	}

	c, err := s.catchUp(height)
	if err != nil {
		return nil, err
	}
	start := c + pocm.DepositGraceCycles
	for next := c + 1; next <= start; next++ {
		if _, err := s.cycleService.Ensure(next); err != nil {
			return nil, err
		}
	}
	if err := s.cycleService.AddStake(start, amount); err != nil {
		return nil, err
	}

	pos, acc, err := s.depositService.Open(owner, to, amount, height)
	if err != nil {
		return nil, err
	}
	if _, err := s.miningService.Open(pos.ID, to, owner, start); err != nil {
		return nil, err
	}
	if err := env.Receive(); err != nil {
		return nil, errors.WithMessage(err, "receive deposit")
	}

	env.Emit(&DepositEvent{
		Action:        ActionDeposit,
		Owner:         owner,
		Positions:     []*deposit.Position{pos},
		Amount:        new(big.Int).Set(amount),
		TotalAmount:   new(big.Int).Set(acc.TotalAmount),
		PositionCount: acc.PositionCount(),
	})
	if err := s.updateGauges(); err != nil {
		return nil, err
	}
	metricPositions().AddWithLabel(1, map[string]string{"action": ActionDeposit})
	logger.Debug("position opened",
		"id", pos.ID,
		"owner", owner,
		"receiver", to,
		"amount", amount,
		"height", height,
		"startCycle", start,
	)
	return pos, nil
}

// ClosePosition withdraws the position id of the caller, or all of its
// positions when id is 0. Pending rewards of the caller's account are settled
// first. A single locked position aborts the whole withdrawal.
func (s *Staking) ClosePosition(env *xenv.Environment, id uint64) (*Withdrawal, error) {
	owner := env.Caller()
	height := env.Height()

	if err := nonPayable(env); err != nil {
		return nil, err
	}
	acc, err := s.depositService.Account(owner)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, reverts.Newf(reverts.NotFound, "%v is not involved in the deposit", owner)
	}

	c, err := s.catchUp(height)
	if err != nil {
		return nil, err
	}
	rewards, err := s.settle(env, []*deposit.Account{acc})
	if err != nil {
		return nil, err
	}

	var targets []*deposit.Position
	if id == 0 {
		if targets, err = s.depositService.Positions(acc); err != nil {
			return nil, err
		}
	} else {
		pos, err := s.depositService.Position(id)
		if err != nil {
			return nil, err
		}
		if pos == nil || pos.Owner != owner {
			return nil, reverts.Newf(reverts.NotFound, "position %d of %v not found", id, owner)
		}
		targets = []*deposit.Position{pos}
	}
	if err := deposit.CheckUnlocked(targets, height); err != nil {
		return nil, err
	}

	for _, pos := range targets {
		// a position still in its grace period has only reached the ledger at origin+2
		eff := max(c+1, s.cycleService.CycleOf(pos.OriginHeight)+pocm.DepositGraceCycles)
		if _, err := s.cycleService.Ensure(eff); err != nil {
			return nil, err
		}
		if err := s.cycleService.SubStake(eff, pos.Amount); err != nil {
			return nil, err
		}
		if err := s.miningService.Close(pos.ID); err != nil {
			return nil, err
		}
	}
	principal, err := s.depositService.Close(acc, targets)
	if err != nil {
		return nil, err
	}
	if err := env.TransferTo(owner, principal); err != nil {
		return nil, errors.WithMessage(err, "return principal")
	}

	env.Emit(&DepositEvent{
		Action:        ActionWithdraw,
		Owner:         owner,
		Positions:     targets,
		Amount:        new(big.Int).Set(principal),
		TotalAmount:   new(big.Int).Set(acc.TotalAmount),
		PositionCount: acc.PositionCount(),
	})
	if err := s.updateGauges(); err != nil {
		return nil, err
	}
	metricPositions().AddWithLabel(int64(len(targets)), map[string]string{"action": ActionWithdraw})
	logger.Debug("positions closed",
		"owner", owner,
		"count", len(targets),
		"principal", principal,
		"height", height,
	)
	return &Withdrawal{Positions: targets, Principal: principal, Rewards: rewards}, nil
}

func nonPayable(env *xenv.Environment) error {
	if env.Value().Sign() != 0 {
		return reverts.New(reverts.Validation, "method does not accept value")
	}
	return nil
}

func (s *Staking) updateGauges() error {
	total, err := s.depositService.TotalDeposit()
	if err != nil {
		return err
	}
	count, err := s.depositService.DepositorCount()
	if err != nil {
		return err
	}
	metricLockedStake().Set(fixedpoint.ToDisplay(total, pocm.AssetDecimals).IntPart())
	metricDepositors().Set(int64(count))
	return nil
}
