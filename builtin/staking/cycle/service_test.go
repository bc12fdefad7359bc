// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cycle

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

const testDecimals = 8

func newSvc(t *testing.T, params Params, price string) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sctx := solidity.NewContext(pocm.BytesToAddress([]byte("staking")), state.New(db, nil), nil)
	svc := New(sctx, params)
	require.NoError(t, svc.Init(decimal.RequireFromString(price)))
	return svc
}

// units returns n display units of the locked asset in base units.
func units(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e8))
}

func scaled(price string) *big.Int {
	return decimal.RequireFromString(price).Shift(testDecimals).BigInt()
}

func assertSpans(t *testing.T, svc *Service) {
	all, err := svc.Checkpoints()
	require.NoError(t, err)
	var prev uint64
	for i, cp := range all {
		if i > 0 {
			assert.Greater(t, cp.Cycle, prev, "cycles strictly increasing")
		}
		assert.Equal(t, cp.Cycle-prev, cp.Span, "span of cycle %d", cp.Cycle)
		prev = cp.Cycle
	}
}

func TestCycleOf(t *testing.T) {
	svc := newSvc(t, Params{CreateHeight: 100, AwardingCycle: 10, Decimals: testDecimals}, "1")

	assert.Equal(t, uint64(0), svc.CycleOf(100))
	assert.Equal(t, uint64(0), svc.CycleOf(109))
	assert.Equal(t, uint64(1), svc.CycleOf(110))
	assert.Equal(t, uint64(10), svc.CycleOf(205))
	assert.Panics(t, func() { svc.CycleOf(99) })
}

func TestEnsureSparse(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, Decimals: testDecimals}, "1")

	cp, err := svc.Ensure(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cp.Span)

	cp, err = svc.Ensure(5)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), cp.Span)
	assert.Equal(t, scaled("1"), cp.Price)

	// idempotent
	_, err = svc.Ensure(5)
	require.NoError(t, err)
	n, err := svc.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	last, err := svc.LastRecordedCycle()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), last)

	_, err = svc.Ensure(3)
	assert.Error(t, err)
	assertSpans(t, svc)
}

func TestEnsureInheritsStake(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, Decimals: testDecimals}, "1")

	_, err := svc.Ensure(0)
	require.NoError(t, err)
	_, err = svc.Ensure(1)
	require.NoError(t, err)
	_, err = svc.Ensure(2)
	require.NoError(t, err)
	require.NoError(t, svc.AddStake(2, units(100)))

	cp, err := svc.Ensure(9)
	require.NoError(t, err)
	assert.Equal(t, units(100), cp.Stake)

	// earlier checkpoints untouched
	cp, _, err = svc.Get(1)
	require.NoError(t, err)
	assert.Zero(t, cp.Stake.Sign())

	require.NoError(t, svc.SubStake(9, units(40)))
	cp, _, err = svc.Get(9)
	require.NoError(t, err)
	assert.Equal(t, units(60), cp.Stake)
	cp, _, err = svc.Get(2)
	require.NoError(t, err)
	assert.Equal(t, units(100), cp.Stake)

	assert.Error(t, svc.SubStake(9, units(61)))
	assert.Error(t, svc.AddStake(7, units(1)), "no checkpoint at cycle 7")
}

func TestHalvingCheckpoints(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, HalvingInterval: 50, Decimals: testDecimals}, "8")

	_, err := svc.Ensure(0)
	require.NoError(t, err)

	cp, err := svc.Ensure(7)
	require.NoError(t, err)
	assert.Equal(t, scaled("4"), cp.Price)

	_, ok, err := svc.Get(4)
	require.NoError(t, err)
	assert.False(t, ok, "no checkpoint before the boundary")

	boundary, ok, err := svc.Get(5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scaled("4"), boundary.Price, "P/2 after height 50")
	assert.Equal(t, uint64(5), boundary.Span)

	_, err = svc.Ensure(12)
	require.NoError(t, err)
	boundary, ok, err = svc.Get(10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scaled("2"), boundary.Price, "P/4 after height 100")

	rounds, err := svc.HalvingRounds()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rounds)
	next, err := svc.NextHalvingHeight()
	require.NoError(t, err)
	assert.Equal(t, uint64(150), next)

	assertSpans(t, svc)
}

func TestHalvingSeveralBoundariesInOneCall(t *testing.T) {
	// several halving heights fall into each cycle
	svc := newSvc(t, Params{AwardingCycle: 10, HalvingInterval: 4, Decimals: testDecimals}, "1")

	_, err := svc.Ensure(0)
	require.NoError(t, err)
	cp, err := svc.Ensure(3)
	require.NoError(t, err)

	// heights 4 8 in cycle 0, 12 16 in cycle 1, 20 24 28 in cycle 2, 32 36 in cycle 3
	rounds, err := svc.HalvingRounds()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), rounds)
	assert.Equal(t, scaled("0.00195312"), cp.Price)

	cp, ok, err := svc.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, scaled("0.0625"), cp.Price)
	assertSpans(t, svc)
}

func TestHalvingTruncates(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 1, HalvingInterval: 1, Decimals: 2}, "0.05")

	cp, err := svc.Ensure(1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), cp.Price, "0.025 truncates to 0.02")
}

func TestHalvingRoundCap(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 1, HalvingInterval: 1, Decimals: 18}, "1")

	_, err := svc.Ensure(0)
	require.NoError(t, err)
	_, err = svc.Ensure(90)
	require.NoError(t, err)

	rounds, err := svc.HalvingRounds()
	require.NoError(t, err)
	assert.Equal(t, uint64(90), rounds)

	_, err = svc.Ensure(91)
	assert.True(t, reverts.IsKind(err, reverts.ScheduleOverflow))
}

func TestRateBetween(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, Decimals: testDecimals}, "10")

	for c := uint64(0); c <= 2; c++ {
		_, err := svc.Ensure(c)
		require.NoError(t, err)
	}
	require.NoError(t, svc.AddStake(2, units(100)))
	_, err := svc.Ensure(6)
	require.NoError(t, err)

	// 10 / 100 per cycle
	rate, err := svc.RateBetween(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "0.1", rate.String())

	rate, err = svc.RateBetween(2, 6)
	require.NoError(t, err)
	assert.Equal(t, "0.5", rate.String())

	rate, err = svc.RateBetween(4, 6)
	require.NoError(t, err)
	assert.Equal(t, "0.3", rate.String())

	// zero stake cycles contribute nothing
	rate, err = svc.RateBetween(0, 1)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())

	rate, err = svc.RateBetween(7, 6)
	require.NoError(t, err)
	assert.True(t, rate.IsZero())
}

func TestRateTruncatesPerTerm(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, Decimals: 2}, "1")

	_, err := svc.Ensure(0)
	require.NoError(t, err)
	require.NoError(t, svc.AddStake(0, units(3)))
	_, err = svc.Ensure(3)
	require.NoError(t, err)

	// 1/3 truncates to 0.33, times 3 cycles
	rate, err := svc.RateBetween(1, 3)
	require.NoError(t, err)
	assert.Equal(t, "0.99", rate.String())
}

func TestCurrentPrice(t *testing.T) {
	svc := newSvc(t, Params{AwardingCycle: 10, HalvingInterval: 50, Decimals: testDecimals}, "8")

	price, err := svc.CurrentPrice(0)
	require.NoError(t, err)
	assert.Equal(t, "8", price.String())

	// nothing recorded, halved by the heights reached
	price, err = svc.CurrentPrice(100)
	require.NoError(t, err)
	assert.Equal(t, "2", price.String())
	n, err := svc.Len()
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = svc.Ensure(0)
	require.NoError(t, err)
	require.NoError(t, svc.AddStake(0, units(4)))

	price, err = svc.CurrentPrice(5)
	require.NoError(t, err)
	assert.Equal(t, "2", price.String(), "8 / 4")

	price, err = svc.CurrentPrice(60)
	require.NoError(t, err)
	assert.Equal(t, "1", price.String(), "4 / 4 after the first halving")
}

func TestHalvedPrice(t *testing.T) {
	p, err := HalvedPrice(decimal.NewFromInt(1), 3, 8)
	require.NoError(t, err)
	assert.Equal(t, "0.125", p.String())

	_, err = HalvedPrice(decimal.NewFromInt(1), 91, 8)
	assert.True(t, reverts.IsKind(err, reverts.ScheduleOverflow))
}

func TestCheckpointOverlap(t *testing.T) {
	cp := &Checkpoint{Cycle: 10, Span: 5, Stake: new(big.Int), Price: new(big.Int)}
	assert.Equal(t, uint64(6), cp.First())
	assert.Equal(t, uint64(5), cp.Overlap(0, 20))
	assert.Equal(t, uint64(3), cp.Overlap(8, 20))
	assert.Equal(t, uint64(2), cp.Overlap(0, 7))
	assert.Equal(t, uint64(0), cp.Overlap(11, 20))
	assert.Equal(t, uint64(0), (&Checkpoint{Cycle: 0}).Overlap(0, 0))
}
