// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package driver is the messaging boundary between the consensus client
// and the built-in engines. It resolves caller identities to roles before
// dispatching, and hands the engines' outbound notifications back to the
// client after every call.
package driver

import (
	"math/big"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/staking"
	"github.com/orionchain/orion/builtin/subsidies"
	"github.com/orionchain/orion/log"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/xenv"
)

var logger = log.WithContext("pkg", "driver")

// Clock supplies the chain position for dispatched calls.
type Clock struct {
	BlockNumber uint64
	Time        uint64
}

// Driver dispatches inbound calls into the engines under resolved roles.
type Driver struct {
	staking   *staking.Staking
	subsidies *subsidies.Subsidies
	queue     *notify.Queue

	owner  orion.Address
	bridge orion.Address
}

// New creates a driver trusting the given owner and bridge identities. The
// zero address is always resolved to the internal-transaction sentinel.
func New(stk *staking.Staking, sub *subsidies.Subsidies, queue *notify.Queue, owner, bridge orion.Address) *Driver {
	return &Driver{
		staking:   stk,
		subsidies: sub,
		queue:     queue,
		owner:     owner,
		bridge:    bridge,
	}
}

// Resolve maps a caller identity to its role.
func (d *Driver) Resolve(caller orion.Address) orion.Role {
	switch caller {
	case d.owner:
		return orion.RoleOwner
	case d.bridge:
		return orion.RoleDriver
	case (orion.Address{}):
		return orion.RoleInternal
	default:
		return orion.RoleNone
	}
}

// Env builds the execution environment for a dispatched call.
func (d *Driver) Env(caller orion.Address, clock Clock, gasPrice *big.Int) *xenv.Environment {
	return xenv.New(caller, d.Resolve(caller), clock.BlockNumber, clock.Time, gasPrice)
}

// Notifications drains the outbound queue. Called by the node after every
// successful dispatch; a failed dispatch leaves the queue untouched.
func (d *Driver) Notifications() []notify.Message {
	messages := d.queue.Drain()
	if len(messages) > 0 {
		logger.Debug("notifications drained", "count", len(messages))
	}
	return messages
}

// Staking returns the staking engine for direct user dispatch.
func (d *Driver) Staking() *staking.Staking {
	return d.staking
}

// Subsidies returns the subsidies ledger for direct user dispatch.
func (d *Driver) Subsidies() *subsidies.Subsidies {
	return d.subsidies
}

//
// Inbound bridge calls
//

// SealEpoch closes the current epoch with the node's observed metrics and
// returns the notifications produced.
func (d *Driver) SealEpoch(caller orion.Address, clock Clock, offlineTimes, offlineBlocks, uptimes []uint64, originatedFees []*big.Int) ([]notify.Message, error) {
	env := d.Env(caller, clock, new(big.Int))
	if err := d.staking.SealEpoch(env, offlineTimes, offlineBlocks, uptimes, originatedFees); err != nil {
		return nil, err
	}
	return d.Notifications(), nil
}

// SealEpochValidators commits the next epoch's validator set.
func (d *Driver) SealEpochValidators(caller orion.Address, clock Clock, nextIDs []uint64) ([]notify.Message, error) {
	env := d.Env(caller, clock, new(big.Int))
	if err := d.staking.SealEpochValidators(env, nextIDs); err != nil {
		return nil, err
	}
	return d.Notifications(), nil
}

// DeactivateValidator merges status bits into a validator's status.
func (d *Driver) DeactivateValidator(caller orion.Address, clock Clock, id, statusBits uint64) ([]notify.Message, error) {
	env := d.Env(caller, clock, new(big.Int))
	if err := d.staking.DeactivateValidator(env, id, statusBits); err != nil {
		return nil, err
	}
	return d.Notifications(), nil
}

// DeductFees charges a subsidized transaction's fee to its fund. Only the
// internal-transaction sentinel resolves to the authorized role.
func (d *Driver) DeductFees(caller orion.Address, clock Clock, fund orion.Bytes32, fee *big.Int) error {
	// fee deduction happens inside subsidized execution, gas price zero
	env := d.Env(caller, clock, new(big.Int))
	return d.subsidies.DeductFees(env, fund, fee)
}
