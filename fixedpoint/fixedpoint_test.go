// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedpoint

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDisplayToBase(t *testing.T) {
	base := big.NewInt(12345678901)
	display := ToDisplay(base, 8)
	assert.Equal(t, "123.45678901", display.String())
	assert.Equal(t, base, ToBase(display, 8))

	// digits below one base unit are dropped
	assert.Equal(t, big.NewInt(1), ToBase(decimal.RequireFromString("0.000000019"), 8))
	assert.True(t, ToDisplay(nil, 8).IsZero())
}

func TestQuoTruncates(t *testing.T) {
	q := Quo(decimal.NewFromInt(2), decimal.NewFromInt(3), 8)
	assert.Equal(t, "0.66666666", q.String())

	q = Quo(decimal.NewFromInt(1), decimal.NewFromInt(7), 0)
	assert.True(t, q.IsZero())

	assert.Panics(t, func() { Quo(decimal.NewFromInt(1), decimal.Zero, 8) })
}

func TestHalve(t *testing.T) {
	p := decimal.RequireFromString("0.00000003")
	p = Halve(p, 8)
	assert.Equal(t, "0.00000001", p.String())
	p = Halve(p, 8)
	assert.True(t, p.IsZero())
}

func TestScaled(t *testing.T) {
	p := decimal.RequireFromString("2.5")
	scaled := Scaled(p, 8)
	assert.Equal(t, big.NewInt(250000000), scaled)
	assert.True(t, FromScaled(scaled, 8).Equal(p))
}

func TestFitsPrecision(t *testing.T) {
	assert.True(t, FitsPrecision(decimal.RequireFromString("1.25"), 2))
	assert.True(t, FitsPrecision(decimal.RequireFromString("1.2500"), 2))
	assert.False(t, FitsPrecision(decimal.RequireFromString("1.255"), 2))
	assert.True(t, FitsPrecision(decimal.NewFromInt(7), 0))
}

func TestParse(t *testing.T) {
	d, err := Parse("200")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.NewFromInt(200)))

	_, err = Parse("-1")
	assert.Error(t, err)

	_, err = Parse("abc")
	assert.Error(t, err)
}

// Quo never rounds up: q*b <= a < (q+ulp)*b for positive operands.
func TestQuoFuzz(t *testing.T) {
	f := fuzz.New().NilChance(0)
	ulp := decimal.New(1, -8)
	for i := 0; i < 500; i++ {
		var num, den uint32
		f.Fuzz(&num)
		f.Fuzz(&den)
		if den == 0 {
			den = 1
		}
		a := decimal.New(int64(num), -3)
		b := decimal.New(int64(den), -2)

		q := Quo(a, b, 8)
		assert.True(t, q.Mul(b).LessThanOrEqual(a), "a=%v b=%v q=%v", a, b, q)
		assert.True(t, q.Add(ulp).Mul(b).GreaterThan(a), "a=%v b=%v q=%v", a, b, q)
	}
}

func TestBaseRoundTripFuzz(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for i := 0; i < 500; i++ {
		var v uint64
		f.Fuzz(&v)
		base := new(big.Int).SetUint64(v)
		assert.Equal(t, base, ToBase(ToDisplay(base, 8), 8))
	}
}
