// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedpoint implements the exact decimal arithmetic used for reward
// accounting. Every division truncates toward zero at an explicit precision,
// and truncation is applied to each term where it is computed.
package fixedpoint

import (
	"math/big"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// ToDisplay converts an amount in base units into display units, given the
// number of fractional digits of the unit.
func ToDisplay(base *big.Int, decimals int32) decimal.Decimal {
	if base == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(base, -decimals)
}

// ToBase converts a display amount into base units. Digits beyond the base
// unit are truncated.
func ToBase(display decimal.Decimal, decimals int32) *big.Int {
	return display.Shift(decimals).BigInt()
}

// Quo divides a by b and truncates the quotient to precision fractional digits.
// It panics if b is zero.
func Quo(a, b decimal.Decimal, precision int32) decimal.Decimal {
	q, _ := a.QuoRem(b, precision)
	return q
}

// Halve divides the price by two, truncated to precision fractional digits.
func Halve(price decimal.Decimal, precision int32) decimal.Decimal {
	return Quo(price, two, precision)
}

// Scaled returns d as an integer count of 10^-precision units, truncating any
// digit beyond precision. It is the storage form of a price.
func Scaled(d decimal.Decimal, precision int32) *big.Int {
	return d.Shift(precision).BigInt()
}

// FromScaled is the inverse of Scaled.
func FromScaled(v *big.Int, precision int32) decimal.Decimal {
	return ToDisplay(v, precision)
}

// FitsPrecision reports whether d has at most precision fractional digits.
func FitsPrecision(d decimal.Decimal, precision int32) bool {
	return d.Truncate(precision).Equal(d)
}

// Parse parses a decimal string. Negative values are rejected.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse decimal %q", s)
	}
	if d.IsNegative() {
		return decimal.Zero, errors.Errorf("negative decimal %q", s)
	}
	return d, nil
}
