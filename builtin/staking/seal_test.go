// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking/validation"
)

// Three validators with a 5:3:2 stake split and full uptime share the base
// reward pool exactly, with no dust.
func TestSealRewardSplit(t *testing.T) {
	c := newTestChain(t)

	id1 := c.createValidator(alice, 5000)
	id2 := c.createValidator(bob, 3000)
	id3 := c.createValidator(carol, 2000)
	c.initialize(id1, id2, id3)

	// base reward pool = 10/sec * 100s = 1000
	c.seal(100)

	snapshot, err := c.staking.EpochSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), snapshot.TotalBaseReward.Int64())

	assert.Equal(t, int64(500), c.pending(alice, id1))
	assert.Equal(t, int64(300), c.pending(bob, id2))
	assert.Equal(t, int64(200), c.pending(carol, id3))
}

func TestSealOrdering(t *testing.T) {
	c := newTestChain(t)

	id := c.createValidator(alice, 2000)
	c.initialize(id)

	err := c.staking.SealEpochValidators(c.driver(), []uint64{id})
	assert.EqualError(t, err, "validator set commit without epoch seal")

	c.advance(10, 100)
	zeros := []uint64{0}
	fees := []*big.Int{new(big.Int)}
	require.NoError(t, c.staking.SealEpoch(c.driver(), zeros, zeros, []uint64{100}, fees))

	err = c.staking.SealEpoch(c.driver(), zeros, zeros, []uint64{100}, fees)
	assert.EqualError(t, err, "epoch seal already in progress")

	require.NoError(t, c.staking.SealEpochValidators(c.driver(), []uint64{id}))

	// the transition is complete, a second commit must fail
	err = c.staking.SealEpochValidators(c.driver(), []uint64{id})
	assert.EqualError(t, err, "validator set commit without epoch seal")

	epoch, err := c.staking.CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), epoch)
}

func TestSealChecks(t *testing.T) {
	c := newTestChain(t)

	id := c.createValidator(alice, 2000)
	c.initialize(id)
	c.advance(10, 100)

	err := c.staking.SealEpoch(c.user(alice), []uint64{0}, []uint64{0}, []uint64{100}, []*big.Int{new(big.Int)})
	assert.EqualError(t, err, "caller is not authorized: driver role required")

	err = c.staking.SealEpoch(c.driver(), []uint64{0, 0}, []uint64{0}, []uint64{100}, []*big.Int{new(big.Int)})
	assert.EqualError(t, err, "wrong array length")

	err = c.staking.SealEpochValidators(c.user(alice), []uint64{id})
	assert.EqualError(t, err, "caller is not authorized: driver role required")

	err = c.staking.Initialize(c.user(alice), []uint64{id})
	assert.EqualError(t, err, "caller is not authorized: driver role required")
}

func TestEpochFeeSettlement(t *testing.T) {
	c := newTestChain(t)
	c.params.Set(params.KeyBaseRewardPerSecond, new(big.Int))

	id := c.createValidator(alice, 2000)
	c.initialize(id)

	burnedBefore, err := c.supply.TotalBurned()
	require.NoError(t, err)

	c.advance(10, 100)
	require.NoError(t, c.staking.SealEpoch(c.driver(),
		[]uint64{0}, []uint64{0}, []uint64{100}, []*big.Int{big.NewInt(1000)}))
	require.NoError(t, c.staking.SealEpochValidators(c.driver(), []uint64{id}))

	// 20% of the fee is burned
	burnedAfter, err := c.supply.TotalBurned()
	require.NoError(t, err)
	assert.Equal(t, int64(200), new(big.Int).Sub(burnedAfter, burnedBefore).Int64())

	// 10% accumulates while no treasury is configured
	unresolved, err := c.staking.UnresolvedTreasuryFees()
	require.NoError(t, err)
	assert.Equal(t, int64(100), unresolved.Int64())

	// the remaining 70% accrues to the validator set
	assert.Equal(t, int64(700), c.pending(alice, id))

	err = c.staking.ResolveTreasury(c.user(bob))
	assert.EqualError(t, err, "treasury isn't set")

	c.params.SetAddress(params.KeyTreasuryAddress, carol)
	require.NoError(t, c.staking.ResolveTreasury(c.user(bob)))
	assert.Equal(t, int64(100), c.balance(carol))

	messages := c.queue.Drain()
	resolved := messages[len(messages)-1].(notify.TreasuryResolved)
	assert.Equal(t, carol, resolved.Treasury)
	assert.Equal(t, int64(100), resolved.Amount.Int64())

	err = c.staking.ResolveTreasury(c.user(bob))
	assert.EqualError(t, err, "no unresolved treasury fees")

	// with a treasury configured the share is paid out at sealing
	c.advance(10, 100)
	require.NoError(t, c.staking.SealEpoch(c.driver(),
		[]uint64{0}, []uint64{0}, []uint64{100}, []*big.Int{big.NewInt(500)}))
	require.NoError(t, c.staking.SealEpochValidators(c.driver(), []uint64{id}))
	assert.Equal(t, int64(150), c.balance(carol))
}

func TestOfflineDeactivation(t *testing.T) {
	c := newTestChain(t)
	c.params.Set(params.KeyOfflinePenaltyThresholdBlocks, big.NewInt(100))
	c.params.Set(params.KeyOfflinePenaltyThresholdTime, big.NewInt(500))

	id1 := c.createValidator(alice, 2000)
	id2 := c.createValidator(bob, 2000)
	c.initialize(id1, id2)
	c.queue.Drain()

	c.advance(100, 1000)
	require.NoError(t, c.staking.SealEpoch(c.driver(),
		[]uint64{600, 200},  // offline seconds
		[]uint64{150, 150},  // offline blocks
		[]uint64{400, 800},  // uptime
		[]*big.Int{new(big.Int), new(big.Int)}))

	// id1 exceeded both thresholds, id2 only the block threshold
	v1, err := c.staking.Validator(id1)
	require.NoError(t, err)
	assert.False(t, v1.IsActive())
	assert.Equal(t, uint64(validation.StatusOffline), v1.Status)

	v2, err := c.staking.Validator(id2)
	require.NoError(t, err)
	assert.True(t, v2.IsActive())

	// deactivation zeroes the weight downstream
	var zeroed bool
	for _, msg := range c.queue.Drain() {
		if weight, ok := msg.(notify.ValidatorWeightChanged); ok && weight.ValidatorID == id1 {
			zeroed = weight.NewWeight.Sign() == 0
		}
	}
	assert.True(t, zeroed)
}

func TestUptimeWindowThroughSealing(t *testing.T) {
	c := newTestChain(t)

	id := c.createValidator(alice, 2000)
	c.initialize(id)

	// full uptime
	c.seal(100)
	avg, err := c.staking.AverageUptime(id)
	require.NoError(t, err)
	assert.Zero(t, avg.Cmp(fixpoint.Unit()))

	// half uptime drops the two-epoch average to 75%
	c.advance(10, 100)
	require.NoError(t, c.staking.SealEpoch(c.driver(),
		[]uint64{0}, []uint64{0}, []uint64{50}, []*big.Int{new(big.Int)}))
	require.NoError(t, c.staking.SealEpochValidators(c.driver(), []uint64{id}))

	avg, err = c.staking.AverageUptime(id)
	require.NoError(t, err)
	assert.Zero(t, avg.Cmp(fixpoint.Ratio(big.NewInt(3), big.NewInt(4))))
}

// Stake added mid-epoch only weighs in once the next validator set commits.
func TestStakeChangeAffectsNextEpoch(t *testing.T) {
	c := newTestChain(t)

	id := c.createValidator(alice, 5000)
	c.initialize(id)

	c.delegate(bob, id, 5000)

	c.seal(100)
	snapshot, err := c.staking.EpochSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), snapshot.Validators[0].ReceivedStake.Int64())

	c.seal(100)
	snapshot, err = c.staking.EpochSnapshot(2)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), snapshot.Validators[0].ReceivedStake.Int64())
}
