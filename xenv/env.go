// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package xenv carries the execution environment an operation runs under:
// the resolved caller identity and role, the block position and the effective
// gas price. Engines authorize against the role instead of inspecting an
// implicit caller.
package xenv

import (
	"math/big"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/orion"
)

// Environment is the per-operation execution context.
type Environment struct {
	caller      orion.Address
	role        orion.Role
	blockNumber uint64
	time        uint64
	gasPrice    *big.Int
}

// New creates an environment for one operation.
func New(caller orion.Address, role orion.Role, blockNumber, time uint64, gasPrice *big.Int) *Environment {
	if gasPrice == nil {
		gasPrice = new(big.Int)
	}
	return &Environment{
		caller:      caller,
		role:        role,
		blockNumber: blockNumber,
		time:        time,
		gasPrice:    gasPrice,
	}
}

func (env *Environment) Caller() orion.Address { return env.caller }

func (env *Environment) Role() orion.Role { return env.role }

func (env *Environment) BlockNumber() uint64 { return env.blockNumber }

// Time returns the block timestamp in seconds.
func (env *Environment) Time() uint64 { return env.time }

// GasPrice returns the effective gas price of the enclosing transaction.
// Sponsored transactions carry a zero gas price.
func (env *Environment) GasPrice() *big.Int { return new(big.Int).Set(env.gasPrice) }

// RequireRole rejects the operation unless the environment carries the role.
func (env *Environment) RequireRole(role orion.Role) error {
	if env.role != role {
		return reverts.New("caller is not authorized: " + role.String() + " role required")
	}
	return nil
}
