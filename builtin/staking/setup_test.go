// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
	"github.com/orionchain/orion/xenv"
)

var (
	ownerAddr  = orion.BytesToAddress([]byte("owner"))
	driverAddr = orion.BytesToAddress([]byte("driver"))
	alice      = orion.BytesToAddress([]byte("alice"))
	bob        = orion.BytesToAddress([]byte("bob"))
	carol      = orion.BytesToAddress([]byte("carol"))
)

// testChain drives the staking engine the way the surrounding node would,
// with a fake clock and explicit caller roles.
type testChain struct {
	t *testing.T

	state   *state.State
	params  *params.Params
	supply  *supply.Supply
	queue   *notify.Queue
	staking *Staking

	block      uint64
	time       uint64
	epochStart uint64

	// delegators seen per validator, for the stake-sum invariant
	delegators map[uint64][]orion.Address
}

func newTestChain(t *testing.T) *testChain {
	st := state.New(kv.NewMemStore())
	p := params.New(storage.NewContext(orion.ParamsNamespace, st, nil))
	sp := supply.New(storage.NewContext(orion.SupplyNamespace, st, nil))
	queue := notify.NewQueue()

	// small numbers keep the arithmetic in tests easy to follow
	p.Set(params.KeyMinSelfStake, big.NewInt(1000))
	p.Set(params.KeyBaseRewardPerSecond, big.NewInt(10))
	p.Set(params.KeyValidatorCommission, new(big.Int))
	p.Set(params.KeyWithdrawalPeriodEpochs, big.NewInt(2))
	p.Set(params.KeyWithdrawalPeriodTime, big.NewInt(1000))

	return &testChain{
		t:          t,
		state:      st,
		params:     p,
		supply:     sp,
		queue:      queue,
		staking:    New(st, p, sp, queue, nil),
		block:      1,
		time:       1000,
		delegators: map[uint64][]orion.Address{},
	}
}

func (c *testChain) env(caller orion.Address, role orion.Role) *xenv.Environment {
	return xenv.New(caller, role, c.block, c.time, big.NewInt(1))
}

func (c *testChain) user(addr orion.Address) *xenv.Environment {
	return c.env(addr, orion.RoleNone)
}

func (c *testChain) owner() *xenv.Environment {
	return c.env(ownerAddr, orion.RoleOwner)
}

func (c *testChain) driver() *xenv.Environment {
	return c.env(driverAddr, orion.RoleDriver)
}

func (c *testChain) advance(blocks, seconds uint64) {
	c.block += blocks
	c.time += seconds
}

func (c *testChain) fund(addr orion.Address, amount int64) {
	require.NoError(c.t, c.supply.Mint(addr, big.NewInt(amount)))
}

func (c *testChain) balance(addr orion.Address) int64 {
	b, err := c.supply.Balance(addr)
	require.NoError(c.t, err)
	return b.Int64()
}

func (c *testChain) createValidator(auth orion.Address, selfStake int64) uint64 {
	c.t.Helper()
	c.fund(auth, selfStake)
	id, err := c.staking.CreateValidator(c.user(auth), append([]byte("pk-"), auth.Bytes()...), big.NewInt(selfStake))
	require.NoError(c.t, err)
	c.delegators[id] = append(c.delegators[id], auth)
	return id
}

func (c *testChain) delegate(delegator orion.Address, id uint64, amount int64) {
	c.t.Helper()
	c.fund(delegator, amount)
	require.NoError(c.t, c.staking.Delegate(c.user(delegator), id, big.NewInt(amount)))
	c.delegators[id] = append(c.delegators[id], delegator)
}

// initialize commits the given validators as the first epoch's set.
func (c *testChain) initialize(ids ...uint64) {
	c.t.Helper()
	require.NoError(c.t, c.staking.Initialize(c.driver(), ids))
	c.epochStart = c.time
}

// seal advances the clock and runs a full epoch transition with full
// uptime and no fees, keeping the same validator set.
func (c *testChain) seal(duration uint64) {
	c.t.Helper()
	set, err := c.staking.EpochValidators()
	require.NoError(c.t, err)

	c.advance(duration/10+1, duration)
	elapsed := c.time - c.epochStart
	n := len(set.IDs)
	uptimes := make([]uint64, n)
	for i := range uptimes {
		uptimes[i] = elapsed
	}
	fees := make([]*big.Int, n)
	for i := range fees {
		fees[i] = new(big.Int)
	}
	require.NoError(c.t, c.staking.SealEpoch(c.driver(), make([]uint64, n), make([]uint64, n), uptimes, fees))
	require.NoError(c.t, c.staking.SealEpochValidators(c.driver(), set.IDs))
	c.epochStart = c.time
}

// requireStakeInvariant checks that every validator's received stake equals
// the sum of its delegations.
func (c *testChain) requireStakeInvariant() {
	c.t.Helper()
	for id, delegators := range c.delegators {
		v, err := c.staking.Validator(id)
		require.NoError(c.t, err)
		sum := new(big.Int)
		for _, delegator := range delegators {
			d, err := c.staking.Delegation(delegator, id)
			require.NoError(c.t, err)
			sum.Add(sum, d.Stake)
		}
		require.Zero(c.t, v.ReceivedStake.Cmp(sum), "stake sum mismatch for validator %d", id)
	}
}

func (c *testChain) pending(delegator orion.Address, id uint64) int64 {
	p, err := c.staking.PendingRewards(delegator, id)
	require.NoError(c.t, err)
	return p.Int64()
}
