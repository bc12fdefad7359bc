// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package mining

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/pocm"
)

var (
	slotCursors = pocm.BytesToBytes32([]byte("mining-cursors"))
	slotInfos   = pocm.BytesToBytes32([]byte("mining-infos"))
	slotMinted  = pocm.BytesToBytes32([]byte("total-minted"))
)

// Cursor tracks the settlement progress of one position.
type Cursor struct {
	ID             uint64 // position id
	Receiver       pocm.Address
	Depositor      pocm.Address
	NextStartCycle uint64   // first cycle not yet paid out
	MiningAmount   *big.Int // minted so far
	MiningCount    uint64   // cycles settled so far
}

// Info aggregates the cursors paying one receiver.
type Info struct {
	Receiver       pocm.Address
	TotalMining    *big.Int
	ReceivedMining *big.Int
	CursorIDs      []uint64
}

func (i *Info) IsEmpty() bool {
	return len(i.CursorIDs) == 0
}

// Service stores cursors and receiver aggregates.
type Service struct {
	cursors *solidity.Mapping[solidity.Uint64Key, *Cursor]
	infos   *solidity.Mapping[pocm.Address, *Info]
	minted  *solidity.Uint256
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		cursors: solidity.NewMapping[solidity.Uint64Key, *Cursor](sctx, slotCursors),
		infos:   solidity.NewMapping[pocm.Address, *Info](sctx, slotInfos),
		minted:  solidity.NewUint256(sctx, slotMinted),
	}
}

// Open creates the cursor of a new position.
func (s *Service) Open(id uint64, receiver, depositor pocm.Address, startCycle uint64) (*Cursor, error) {
	if exists, err := s.cursors.Exists(solidity.Uint64Key(id)); err != nil {
		return nil, err
	} else if exists {
		return nil, errors.Errorf("cursor %d already exists", id)
	}
	cur := &Cursor{
		ID:             id,
		Receiver:       receiver,
		Depositor:      depositor,
		NextStartCycle: startCycle,
		MiningAmount:   new(big.Int),
	}
	if err := s.cursors.Set(solidity.Uint64Key(id), cur); err != nil {
		return nil, err
	}

	info, err := s.infos.Get(receiver)
	if err != nil {
		return nil, err
	}
	if info.IsEmpty() {
		info = &Info{Receiver: receiver, TotalMining: new(big.Int), ReceivedMining: new(big.Int)}
	}
	info.CursorIDs = append(info.CursorIDs, id)
	if err := s.infos.Set(receiver, info); err != nil {
		return nil, err
	}
	return cur, nil
}

// Cursor returns the cursor of the position, nil if none.
func (s *Service) Cursor(id uint64) (*Cursor, error) {
	cur, err := s.cursors.Get(solidity.Uint64Key(id))
	if err != nil {
		return nil, err
	}
	if cur.ID == 0 {
		return nil, nil
	}
	return cur, nil
}

// Info returns the aggregate of receiver, nil if no position pays it.
func (s *Service) Info(receiver pocm.Address) (*Info, error) {
	info, err := s.infos.Get(receiver)
	if err != nil {
		return nil, err
	}
	if info.IsEmpty() {
		return nil, nil
	}
	return info, nil
}

// Cursors returns the cursors feeding the aggregate, in opening order.
func (s *Service) Cursors(info *Info) ([]*Cursor, error) {
	all := make([]*Cursor, 0, len(info.CursorIDs))
	for _, id := range info.CursorIDs {
		cur, err := s.Cursor(id)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			return nil, errors.Errorf("cursor %d of %v is missing", id, info.Receiver)
		}
		all = append(all, cur)
	}
	return all, nil
}

// Advance records a settlement of the cycles [cur.NextStartCycle, end] that
// minted amount.
func (s *Service) Advance(cur *Cursor, end uint64, amount *big.Int) error {
	if end < cur.NextStartCycle {
		return errors.Errorf("cursor %d: settling up to cycle %d before start %d", cur.ID, end, cur.NextStartCycle)
	}
	cur.MiningCount += end - cur.NextStartCycle + 1
	cur.NextStartCycle = end + 1
	cur.MiningAmount.Add(cur.MiningAmount, amount)
	if err := s.cursors.Set(solidity.Uint64Key(cur.ID), cur); err != nil {
		return err
	}

	info, err := s.Info(cur.Receiver)
	if err != nil {
		return err
	}
	if info == nil {
		return errors.Errorf("receiver %v of cursor %d has no info", cur.Receiver, cur.ID)
	}
	info.TotalMining.Add(info.TotalMining, amount)
	info.ReceivedMining.Add(info.ReceivedMining, amount)
	if err := s.infos.Set(cur.Receiver, info); err != nil {
		return err
	}
	return s.minted.Add(amount)
}

// Close destroys the cursor of the position. The receiver aggregate is
// deleted with its last cursor.
func (s *Service) Close(id uint64) error {
	cur, err := s.Cursor(id)
	if err != nil {
		return err
	}
	if cur == nil {
		return errors.Errorf("cursor %d not found", id)
	}
	s.cursors.Delete(solidity.Uint64Key(id))

	info, err := s.Info(cur.Receiver)
	if err != nil {
		return err
	}
	if info == nil {
		return errors.Errorf("receiver %v of cursor %d has no info", cur.Receiver, id)
	}
	for i, v := range info.CursorIDs {
		if v == id {
			info.CursorIDs = append(info.CursorIDs[:i], info.CursorIDs[i+1:]...)
			break
		}
	}
	if info.IsEmpty() {
		s.infos.Delete(cur.Receiver)
		return nil
	}
	return s.infos.Set(cur.Receiver, info)
}

// TotalMinted returns the reward minted by settlements over the contract lifetime.
func (s *Service) TotalMinted() (*big.Int, error) {
	return s.minted.Get()
}
