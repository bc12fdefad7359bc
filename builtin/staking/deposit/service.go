// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package deposit

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/builtin/staking/linkedlist"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/pocm"
)

var (
	slotAccounts       = pocm.BytesToBytes32([]byte("accounts"))
	slotPositions      = pocm.BytesToBytes32([]byte("positions"))
	slotTotalDeposit   = pocm.BytesToBytes32([]byte("total-deposit"))
	slotSequence       = pocm.BytesToBytes32([]byte("position-sequence"))
	slotDepositorsHead = pocm.BytesToBytes32([]byte("depositors-head"))
	slotDepositorsTail = pocm.BytesToBytes32([]byte("depositors-tail"))
	slotDepositorCount = pocm.BytesToBytes32([]byte("depositor-count"))
)

// Params are the admission and lock settings of a contract.
type Params struct {
	MinimumDeposit *big.Int // base units
	MinimumLocked  uint64   // heights
	MaxDepositors  uint64   // 0 means unlimited
}

// Service is the position ledger.
type Service struct {
	params Params

	accounts     *solidity.Mapping[pocm.Address, *Account]
	positions    *solidity.Mapping[solidity.Uint64Key, *Position]
	totalDeposit *solidity.Uint256
	sequence     *solidity.Uint64
	depositors   *linkedlist.LinkedList
}

func New(sctx *solidity.Context, params Params) *Service {
	return &Service{
		params:       params,
		accounts:     solidity.NewMapping[pocm.Address, *Account](sctx, slotAccounts),
		positions:    solidity.NewMapping[solidity.Uint64Key, *Position](sctx, slotPositions),
		totalDeposit: solidity.NewUint256(sctx, slotTotalDeposit),
		sequence:     solidity.NewUint64(sctx, slotSequence),
		depositors:   linkedlist.NewLinkedList(sctx, slotDepositorsHead, slotDepositorsTail, slotDepositorCount),
	}
}

func (s *Service) Params() Params {
	return s.params
}

// Account returns the account of owner, nil if it holds no position.
func (s *Service) Account(owner pocm.Address) (*Account, error) {
	acc, err := s.accounts.Get(owner)
	if err != nil {
		return nil, err
	}
	if acc.IsEmpty() {
		return nil, nil
	}
	return acc, nil
}

// Position returns the live position of the id, nil if none.
func (s *Service) Position(id uint64) (*Position, error) {
	pos, err := s.positions.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if pos.ID == 0 {
		return nil, nil
	}
	return pos, nil
}

// Positions returns the live positions of the account in id order.
func (s *Service) Positions(acc *Account) ([]*Position, error) {
	all := make([]*Position, 0, len(acc.PositionIDs))
	for _, id := range acc.PositionIDs {
		pos, err := s.Position(id)
		if err != nil {
			return nil, err
		}
		if pos == nil {
			return nil, errors.Errorf("position %d of %v is missing", id, acc.Owner)
		}
		all = append(all, pos)
	}
	return all, nil
}

// Admit checks the deposit preconditions without mutating anything.
func (s *Service) Admit(owner pocm.Address, amount *big.Int) error {
	if amount.Cmp(s.params.MinimumDeposit) < 0 {
		return reverts.Newf(reverts.Admission, "minimum deposit not met: %v", s.params.MinimumDeposit)
	}
	if s.params.MaxDepositors == 0 {
		return nil
	}
	acc, err := s.Account(owner)
	if err != nil {
		return err
	}
	if acc != nil {
		return nil
	}
	count, err := s.depositors.Len()
	if err != nil {
		return err
	}
	if count+1 > s.params.MaxDepositors {
		return reverts.Newf(reverts.Admission, "exceeds max deposit address count: %d", s.params.MaxDepositors)
	}
	return nil
}

// Open admits and records a new position.
func (s *Service) Open(owner, receiver pocm.Address, amount *big.Int, height uint64) (*Position, *Account, error) {
	if err := s.Admit(owner, amount); err != nil {
		return nil, nil, err
	}

	seq, err := s.sequence.Get()
	if err != nil {
		return nil, nil, err
	}
	seq++
	s.sequence.Set(seq)

	pos := &Position{
		ID:           seq,
		Owner:        owner,
		Receiver:     receiver,
		Amount:       new(big.Int).Set(amount),
		OriginHeight: height,
		UnlockHeight: height + s.params.MinimumLocked + 1,
	}
	if err := s.positions.Set(solidity.Uint64Key(seq), pos); err != nil {
		return nil, nil, err
	}

	acc, err := s.accounts.Get(owner)
	if err != nil {
		return nil, nil, err
	}
	if acc.IsEmpty() {
		if err := s.depositors.Add(owner); err != nil {
			return nil, nil, err
		}
		acc = &Account{Owner: owner, TotalAmount: new(big.Int)}
	}
	acc.TotalAmount.Add(acc.TotalAmount, amount)
	acc.PositionIDs = append(acc.PositionIDs, seq)
	if err := s.accounts.Set(owner, acc); err != nil {
		return nil, nil, err
	}
	if err := s.totalDeposit.Add(amount); err != nil {
		return nil, nil, err
	}
	return pos, acc, nil
}

// CheckUnlocked fails with a lock revert carrying the unlock height of the
// first position still locked at height.
func CheckUnlocked(positions []*Position, height uint64) error {
	for _, pos := range positions {
		if pos.Status(height) == Active {
			return reverts.NewLocked(pos.UnlockHeight)
		}
	}
	return nil
}

// Close destroys the positions, all owned by acc, and returns the principal to
// pay back. The account is deleted once empty.
func (s *Service) Close(acc *Account, positions []*Position) (*big.Int, error) {
	principal := new(big.Int)
	for _, pos := range positions {
		if pos.Owner != acc.Owner || !acc.removeID(pos.ID) {
			return nil, errors.Errorf("position %d not owned by %v", pos.ID, acc.Owner)
		}
		s.positions.Delete(solidity.Uint64Key(pos.ID))
		principal.Add(principal, pos.Amount)
	}
	acc.TotalAmount.Sub(acc.TotalAmount, principal)

	if acc.IsEmpty() {
		s.accounts.Delete(acc.Owner)
		if err := s.depositors.Remove(acc.Owner); err != nil {
			return nil, err
		}
	} else if err := s.accounts.Set(acc.Owner, acc); err != nil {
		return nil, err
	}
	if err := s.totalDeposit.Sub(principal); err != nil {
		return nil, err
	}
	return principal, nil
}

func (s *Service) TotalDeposit() (*big.Int, error) {
	return s.totalDeposit.Get()
}

// DepositorCount returns the number of accounts holding at least one position.
func (s *Service) DepositorCount() (uint64, error) {
	return s.depositors.Len()
}

// LastPositionID returns the last assigned position id.
func (s *Service) LastPositionID() (uint64, error) {
	return s.sequence.Get()
}

// Accounts traverses every account in first deposit order.
func (s *Service) Accounts(cb func(*Account) error) error {
	return s.depositors.Iter(func(owner pocm.Address) error {
		acc, err := s.Account(owner)
		if err != nil {
			return err
		}
		if acc == nil {
			return errors.Errorf("depositor %v has no account", owner)
		}
		return cb(acc)
	})
}
