// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixpoint implements ratio arithmetic over a 1e18 fixed-point unit.
// Commission rates, refund ratios, burn fractions and the per-token reward
// accumulator are all expressed in this unit.
package fixpoint

import "math/big"

var unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// Unit returns the fixed-point scale, 1e18.
func Unit() *big.Int {
	return new(big.Int).Set(unit)
}

// IsValidRatio reports whether r lies in [0, 1e18].
func IsValidRatio(r *big.Int) bool {
	return r != nil && r.Sign() >= 0 && r.Cmp(unit) <= 0
}

// Apply scales x by the ratio r: x * r / 1e18, rounded down.
func Apply(x, r *big.Int) *big.Int {
	res := new(big.Int).Mul(x, r)
	return res.Div(res, unit)
}

// Complement returns 1e18 - r.
func Complement(r *big.Int) *big.Int {
	return new(big.Int).Sub(unit, r)
}

// Ratio returns num / den scaled into the fixed-point unit, rounded down.
// A zero denominator yields zero.
func Ratio(num, den *big.Int) *big.Int {
	if den.Sign() == 0 {
		return new(big.Int)
	}
	res := new(big.Int).Mul(num, unit)
	return res.Div(res, den)
}
