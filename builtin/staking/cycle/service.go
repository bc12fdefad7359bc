// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cycle

import (
	"math/big"
	"sort"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/pocm"
)

var logger = log.WithContext("pkg", "cycle")

var (
	slotCheckpoints       = pocm.BytesToBytes32([]byte("checkpoints"))
	slotCheckpointIndex   = pocm.BytesToBytes32([]byte("checkpoint-index"))
	slotLastRecordedCycle = pocm.BytesToBytes32([]byte("last-recorded-cycle"))
	slotInitialPrice      = pocm.BytesToBytes32([]byte("initial-price"))
	slotCurrentPrice      = pocm.BytesToBytes32([]byte("current-price"))
	slotNextHalving       = pocm.BytesToBytes32([]byte("next-halving-height"))
	slotHalvingRounds     = pocm.BytesToBytes32([]byte("halving-rounds"))
)

// Params are the immutable cycle settings of a contract.
type Params struct {
	CreateHeight    uint64
	AwardingCycle   uint64 // heights per cycle, positive
	HalvingInterval uint64 // heights between halvings, 0 disables halving
	Decimals        int32  // reward token precision
}

// Service is the reward cycle ledger: a sparse, append only sequence of
// checkpoints plus an index from cycle number to sequence position.
type Service struct {
	params Params

	checkpoints  *solidity.Array[*Checkpoint]
	index        *solidity.Mapping[solidity.Uint64Key, uint64] // cycle => position + 1
	lastRecorded *solidity.Uint64

	initialPrice *solidity.Uint256
	price        *solidity.Uint256
	nextHalving  *solidity.Uint64
	rounds       *solidity.Uint64
}

func New(sctx *solidity.Context, params Params) *Service {
	return &Service{
		params:       params,
		checkpoints:  solidity.NewArray[*Checkpoint](sctx, slotCheckpoints),
		index:        solidity.NewMapping[solidity.Uint64Key, uint64](sctx, slotCheckpointIndex),
		lastRecorded: solidity.NewUint64(sctx, slotLastRecordedCycle),
		initialPrice: solidity.NewUint256(sctx, slotInitialPrice),
		price:        solidity.NewUint256(sctx, slotCurrentPrice),
		nextHalving:  solidity.NewUint64(sctx, slotNextHalving),
		rounds:       solidity.NewUint64(sctx, slotHalvingRounds),
	}
}

// Init stores the initial price and schedules the first halving.
func (s *Service) Init(initialPrice decimal.Decimal) error {
	scaled := fixedpoint.Scaled(initialPrice, s.params.Decimals)
	if err := s.initialPrice.Set(scaled); err != nil {
		return err
	}
	if err := s.price.Set(scaled); err != nil {
		return err
	}
	if s.params.HalvingInterval > 0 {
		s.nextHalving.Set(s.params.CreateHeight + s.params.HalvingInterval)
	}
	return nil
}

func (s *Service) Params() Params {
	return s.params
}

// CycleOf maps a height to its cycle. Heights below the creation height are a
// programming error.
func (s *Service) CycleOf(height uint64) uint64 {
	if height < s.params.CreateHeight {
		panic(errors.Errorf("height %d below creation height %d", height, s.params.CreateHeight))
	}
	return (height - s.params.CreateHeight) / s.params.AwardingCycle
}

func (s *Service) InitialPrice() (decimal.Decimal, error) {
	v, err := s.initialPrice.Get()
	if err != nil {
		return decimal.Zero, err
	}
	return fixedpoint.FromScaled(v, s.params.Decimals), nil
}

// Price returns the undivided unit price in effect for newly recorded checkpoints.
func (s *Service) Price() (decimal.Decimal, error) {
	v, err := s.price.Get()
	if err != nil {
		return decimal.Zero, err
	}
	return fixedpoint.FromScaled(v, s.params.Decimals), nil
}

func (s *Service) HalvingRounds() (uint64, error) {
	return s.rounds.Get()
}

func (s *Service) NextHalvingHeight() (uint64, error) {
	return s.nextHalving.Get()
}

func (s *Service) LastRecordedCycle() (uint64, error) {
	return s.lastRecorded.Get()
}

// Len returns the number of checkpoints.
func (s *Service) Len() (uint64, error) {
	return s.checkpoints.Len()
}

// Get returns the checkpoint recorded for cycle.
func (s *Service) Get(cycle uint64) (*Checkpoint, bool, error) {
	pos, ok, err := s.position(cycle)
	if err != nil || !ok {
		return nil, false, err
	}
	cp, err := s.checkpoints.Get(pos)
	if err != nil {
		return nil, false, err
	}
	return cp, true, nil
}

func (s *Service) position(cycle uint64) (uint64, bool, error) {
	p, err := s.index.Get(solidity.Uint64Key(cycle))
	if err != nil {
		return 0, false, err
	}
	if p == 0 {
		return 0, false, nil
	}
	return p - 1, true, nil
}

func (s *Service) last() (*Checkpoint, error) {
	n, err := s.checkpoints.Len()
	if err != nil || n == 0 {
		return nil, err
	}
	return s.checkpoints.Get(n - 1)
}

// Checkpoints returns the whole ledger in sequence order.
func (s *Service) Checkpoints() ([]*Checkpoint, error) {
	n, err := s.checkpoints.Len()
	if err != nil {
		return nil, err
	}
	all := make([]*Checkpoint, 0, n)
	for i := range n {
		cp, err := s.checkpoints.Get(i)
		if err != nil {
			return nil, err
		}
		all = append(all, cp)
	}
	return all, nil
}

func (s *Service) append(last *Checkpoint, cycle uint64) (*Checkpoint, error) {
	price, err := s.price.Get()
	if err != nil {
		return nil, err
	}
	cp := &Checkpoint{
		Cycle: cycle,
		Stake: new(big.Int),
		Price: price,
		Span:  cycle,
	}
	if last != nil {
		cp.Stake.Set(last.Stake)
		cp.Span = cycle - last.Cycle
	}
	pos, err := s.checkpoints.Push(cp)
	if err != nil {
		return nil, err
	}
	if err := s.index.Set(solidity.Uint64Key(cycle), pos+1); err != nil {
		return nil, err
	}
	s.lastRecorded.Set(cycle)

	metricCheckpoints().Add(1)
	logger.Debug("checkpoint recorded", "cycle", cycle, "stake", cp.Stake, "price", cp.Price, "span", cp.Span)
	return cp, nil
}

// Ensure materializes the checkpoint of cycle, synthesizing the checkpoints of
// any halving boundary crossed since the last recorded cycle. Stake is
// inherited from the last checkpoint.
func (s *Service) Ensure(cycle uint64) (*Checkpoint, error) {
	if cp, ok, err := s.Get(cycle); err != nil || ok {
		return cp, err
	}

	last, err := s.last()
	if err != nil {
		return nil, err
	}
	if last != nil && cycle < last.Cycle {
		return nil, errors.Errorf("cycle %d precedes last recorded cycle %d", cycle, last.Cycle)
	}

	for {
		boundary, ok, err := s.nextBoundary()
		if err != nil {
			return nil, err
		}
		if !ok || boundary > cycle {
			break
		}
		if err := s.applyHalvings(boundary); err != nil {
			return nil, err
		}
		// the boundary checkpoint spans back to the previous one at the halved price
		if boundary < cycle && (last == nil || boundary > last.Cycle) {
			if last, err = s.append(last, boundary); err != nil {
				return nil, err
			}
		}
	}
	return s.append(last, cycle)
}

func (s *Service) adjust(from uint64, amount *big.Int, add bool) error {
	start, ok, err := s.position(from)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Errorf("no checkpoint recorded for cycle %d", from)
	}
	n, err := s.checkpoints.Len()
	if err != nil {
		return err
	}
	for pos := start; pos < n; pos++ {
		cp, err := s.checkpoints.Get(pos)
		if err != nil {
			return err
		}
		if add {
			cp.Stake.Add(cp.Stake, amount)
		} else {
			if cp.Stake.Cmp(amount) < 0 {
				return errors.Errorf("stake underflow at cycle %d", cp.Cycle)
			}
			cp.Stake.Sub(cp.Stake, amount)
		}
		if err := s.checkpoints.Set(pos, cp); err != nil {
			return err
		}
	}
	return nil
}

// AddStake adds amount to the checkpoint of cycle and to every later one.
// The checkpoint must be recorded.
func (s *Service) AddStake(from uint64, amount *big.Int) error {
	return s.adjust(from, amount, true)
}

// SubStake removes amount from the checkpoint of cycle and from every later one.
// The checkpoint must be recorded.
func (s *Service) SubStake(from uint64, amount *big.Int) error {
	return s.adjust(from, amount, false)
}

// search returns the position of the first checkpoint whose cycle is not below cycle.
func (s *Service) search(cycle uint64) (uint64, error) {
	if pos, ok, err := s.position(cycle); err != nil || ok {
		return pos, err
	}
	n, err := s.checkpoints.Len()
	if err != nil {
		return 0, err
	}
	var serr error
	pos := sort.Search(int(n), func(i int) bool {
		if serr != nil {
			return true
		}
		cp, err := s.checkpoints.Get(uint64(i))
		if err != nil {
			serr = err
			return true
		}
		return cp.Cycle >= cycle
	})
	return uint64(pos), serr
}

// RateBetween sums the per display unit reward over the cycles [start, end].
// Each checkpoint term is truncated before summing. The checkpoint of end must
// be recorded.
func (s *Service) RateBetween(start, end uint64) (decimal.Decimal, error) {
	rate := decimal.Zero
	if start > end {
		return rate, nil
	}
	pos, err := s.search(start)
	if err != nil {
		return rate, err
	}
	n, err := s.checkpoints.Len()
	if err != nil {
		return rate, err
	}
	for ; pos < n; pos++ {
		cp, err := s.checkpoints.Get(pos)
		if err != nil {
			return rate, err
		}
		if overlap := cp.Overlap(start, end); overlap > 0 && cp.Stake.Sign() > 0 {
			span := decimal.NewFromBigInt(new(big.Int).SetUint64(overlap), 0)
			rate = rate.Add(cp.UnitRate(s.params.Decimals).Mul(span))
		}
		if cp.Cycle >= end {
			break
		}
	}
	return rate, nil
}

// CurrentPrice returns the per display unit price at height: the price of the
// latest checkpoint divided by its stake, or the halved initial price when
// nothing was ever recorded.
func (s *Service) CurrentPrice(height uint64) (decimal.Decimal, error) {
	n, err := s.checkpoints.Len()
	if err != nil {
		return decimal.Zero, err
	}
	if n == 0 {
		initial, err := s.InitialPrice()
		if err != nil {
			return decimal.Zero, err
		}
		return HalvedPrice(initial, s.params.HalvingRoundsAt(height), s.params.Decimals)
	}
	last, err := s.last()
	if err != nil {
		return decimal.Zero, err
	}
	if cycle := s.CycleOf(height); cycle > last.Cycle {
		if _, err := s.Ensure(cycle); err != nil {
			return decimal.Zero, err
		}
		if last, err = s.last(); err != nil {
			return decimal.Zero, err
		}
	}
	if last.Stake.Sign() == 0 {
		return fixedpoint.FromScaled(last.Price, s.params.Decimals), nil
	}
	return last.UnitRate(s.params.Decimals), nil
}
