// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/staking/deposit"
)

// Verify recomputes every aggregate from the records it summarizes and fails
// on the first mismatch. progress, if not nil, is called once per checked
// checkpoint or account.
func (s *Staking) Verify(progress func()) error {
	tick := func() {
		if progress != nil {
			progress()
		}
	}

	total, err := s.depositService.TotalDeposit()
	if err != nil {
		return err
	}

	checkpoints, err := s.cycleService.Checkpoints()
	if err != nil {
		return err
	}
	var prev uint64
	for i, cp := range checkpoints {
		if i > 0 && cp.Cycle <= prev {
			return errors.Errorf("checkpoint %d: cycle %d not above %d", i, cp.Cycle, prev)
		}
		if cp.Span != cp.Cycle-prev {
			return errors.Errorf("checkpoint %d: span %d, want %d", i, cp.Span, cp.Cycle-prev)
		}
		if cp.Stake.Sign() < 0 {
			return errors.Errorf("checkpoint %d: negative stake", i)
		}
		indexed, ok, err := s.cycleService.Get(cp.Cycle)
		if err != nil {
			return err
		}
		if !ok || indexed.Cycle != cp.Cycle {
			return errors.Errorf("checkpoint %d: cycle %d not indexed", i, cp.Cycle)
		}
		prev = cp.Cycle
		tick()
	}
	if n := len(checkpoints); n > 0 {
		if last := checkpoints[n-1]; last.Stake.Cmp(total) != 0 {
			return errors.Errorf("last checkpoint stake %v, total deposit %v", last.Stake, total)
		}
		if recorded, err := s.cycleService.LastRecordedCycle(); err != nil {
			return err
		} else if recorded != prev {
			return errors.Errorf("last recorded cycle %d, ledger ends at %d", recorded, prev)
		}
	}

	lastID, err := s.depositService.LastPositionID()
	if err != nil {
		return err
	}
	sum := new(big.Int)
	var accounts uint64
	if err := s.depositService.Accounts(func(acc *deposit.Account) error {
		if err := s.verifyAccount(acc, lastID); err != nil {
			return errors.WithMessagef(err, "account %v", acc.Owner)
		}
		sum.Add(sum, acc.TotalAmount)
		accounts++
		tick()
		return nil
	}); err != nil {
		return err
	}
	if sum.Cmp(total) != 0 {
		return errors.Errorf("total deposit %v, positions sum to %v", total, sum)
	}
	count, err := s.depositService.DepositorCount()
	if err != nil {
		return err
	}
	if count != accounts {
		return errors.Errorf("depositor count %d, %d accounts", count, accounts)
	}

	minted, err := s.miningService.TotalMinted()
	if err != nil {
		return err
	}
	supply, err := s.token.TotalSupply()
	if err != nil {
		return err
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.decimals())), nil)
	want := new(big.Int).Mul(s.config.InitialAmount, unit)
	if want.Add(want, minted).Cmp(supply) != 0 {
		return errors.Errorf("total supply %v, issued %v", supply, want)
	}
	return nil
}

func (s *Staking) verifyAccount(acc *deposit.Account, lastID uint64) error {
	if acc.IsEmpty() {
		return errors.New("empty account")
	}
	positions, err := s.depositService.Positions(acc)
	if err != nil {
		return err
	}
	sum := new(big.Int)
	for _, pos := range positions {
		if pos.Owner != acc.Owner {
			return errors.Errorf("position %d owned by %v", pos.ID, pos.Owner)
		}
		if pos.ID > lastID {
			return errors.Errorf("position %d beyond sequence %d", pos.ID, lastID)
		}
		if pos.UnlockHeight != pos.OriginHeight+s.config.MinimumLocked+1 {
			return errors.Errorf("position %d unlocks at %d", pos.ID, pos.UnlockHeight)
		}
		sum.Add(sum, pos.Amount)

		cur, err := s.miningService.Cursor(pos.ID)
		if err != nil {
			return err
		}
		if cur == nil || cur.Depositor != acc.Owner || cur.Receiver != pos.Receiver {
			return errors.Errorf("position %d has no matching cursor", pos.ID)
		}
		info, err := s.miningService.Info(cur.Receiver)
		if err != nil {
			return err
		}
		if info == nil || !slices.Contains(info.CursorIDs, pos.ID) {
			return errors.Errorf("cursor %d missing from receiver %v", pos.ID, cur.Receiver)
		}
	}
	if sum.Cmp(acc.TotalAmount) != 0 {
		return errors.Errorf("total amount %v, positions sum to %v", acc.TotalAmount, sum)
	}
	return nil
}
