// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cycle

import (
	"github.com/shopspring/decimal"

	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
)

// nextBoundary returns the cycle holding the next halving height.
// The second return value is false when halving is disabled.
func (s *Service) nextBoundary() (uint64, bool, error) {
	if s.params.HalvingInterval == 0 {
		return 0, false, nil
	}
	next, err := s.nextHalving.Get()
	if err != nil {
		return 0, false, err
	}
	return s.CycleOf(next), true, nil
}

// applyHalvings halves the price once for each pending boundary height lying in
// a cycle up to and including boundary.
func (s *Service) applyHalvings(boundary uint64) error {
	next, err := s.nextHalving.Get()
	if err != nil {
		return err
	}
	rounds, err := s.rounds.Get()
	if err != nil {
		return err
	}
	price, err := s.Price()
	if err != nil {
		return err
	}

	for s.CycleOf(next) <= boundary {
		if rounds+1 > pocm.MaxHalvingRounds {
			return reverts.Newf(reverts.ScheduleOverflow,
				"maximum allowable number of halving cycles is %d, which has been reached", pocm.MaxHalvingRounds)
		}
		rounds++
		price = fixedpoint.Halve(price, s.params.Decimals)
		logger.Debug("reward halved", "round", rounds, "height", next, "price", price)
		next += s.params.HalvingInterval
	}

	s.rounds.Set(rounds)
	s.nextHalving.Set(next)
	return s.price.Set(fixedpoint.Scaled(price, s.params.Decimals))
}

// HalvingRoundsAt returns the number of halving heights reached at height.
func (p *Params) HalvingRoundsAt(height uint64) uint64 {
	if p.HalvingInterval == 0 || height < p.CreateHeight {
		return 0
	}
	return (height - p.CreateHeight) / p.HalvingInterval
}

// HalvedPrice halves price rounds times, truncating at precision after each halving.
func HalvedPrice(price decimal.Decimal, rounds uint64, precision int32) (decimal.Decimal, error) {
	if rounds > pocm.MaxHalvingRounds {
		return decimal.Zero, reverts.Newf(reverts.ScheduleOverflow,
			"maximum allowable number of halving cycles is %d, which has reached %d", pocm.MaxHalvingRounds, rounds)
	}
	for range rounds {
		price = fixedpoint.Halve(price, precision)
	}
	return price, nil
}
