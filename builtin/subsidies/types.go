// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subsidies

import (
	"math/big"

	"github.com/orionchain/orion/orion"
)

// Fund is a pooled subsidy balance with proportional-share accounting.
// Contributor weights always sum to TotalContributions; fee deductions
// shrink Available without touching the weights, scaling every share down
// proportionally.
type Fund struct {
	Available          *big.Int
	TotalContributions *big.Int
}

// Exists reports whether the fund has ever been contributed to.
func (f *Fund) Exists() bool {
	return f.TotalContributions.Sign() != 0 || f.Available.Sign() != 0
}

type fundKey orion.Bytes32

func (k fundKey) Bytes() []byte { return orion.Bytes32(k).Bytes() }

type contributorKey struct {
	fund    orion.Bytes32
	sponsor orion.Address
}

func (k contributorKey) Bytes() []byte {
	b := make([]byte, 0, 52)
	b = append(b, k.fund.Bytes()...)
	return append(b, k.sponsor.Bytes()...)
}

// GasConfig carries the gas budgets granted to subsidized execution: the
// read-only classification call, the fee deduction call and a fixed
// overhead charged on top.
type GasConfig struct {
	Classification uint64
	Deduction      uint64
	FixedOverhead  uint64
}
