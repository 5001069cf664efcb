// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

func newService() *Service {
	st := state.New(kv.NewMemStore())
	return New(storage.NewContext(orion.BytesToAddress([]byte("epochs")), st, nil))
}

func snapshotFor(epoch uint64) *Snapshot {
	return &Snapshot{
		Epoch:           epoch,
		EndBlock:        epoch * 100,
		EndTime:         epoch * 1000,
		Duration:        1000,
		TotalBaseReward: big.NewInt(500),
		EpochFee:        big.NewInt(30),
		Validators: []ValidatorSnapshot{
			{
				ValidatorID:               1,
				ReceivedStake:             big.NewInt(5000),
				AccumulatedRewardPerToken: big.NewInt(10),
				AccumulatedOriginatedFee:  big.NewInt(30),
			},
		},
	}
}

func set(ids ...uint64) *ValidatorSet {
	stakes := make([]*big.Int, len(ids))
	for i := range stakes {
		stakes[i] = big.NewInt(int64(1000 * (i + 1)))
	}
	return &ValidatorSet{IDs: ids, Stakes: stakes}
}

func TestInitializeAndSealCycle(t *testing.T) {
	s := newService()
	require.NoError(t, s.Initialize(0, 1000, set(1)))

	cur, err := s.CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cur)

	sealed, err := s.SealedEpoch()
	require.NoError(t, err)
	assert.Zero(t, sealed)

	require.NoError(t, s.Seal(snapshotFor(1), 100, 2000))

	awaiting, err := s.IsAwaitingValidators()
	require.NoError(t, err)
	assert.True(t, awaiting)

	// counter does not advance until the validator set is committed
	cur, err = s.CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cur)

	require.NoError(t, s.CommitValidators(set(1, 2)))

	cur, err = s.CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), cur)

	got, err := s.ValidatorSet()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, got.IDs)
	assert.Equal(t, big.NewInt(2000), got.StakeOf(2))
	assert.Nil(t, got.StakeOf(3))

	block, time, err := s.Start()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), block)
	assert.Equal(t, uint64(2000), time)
}

func TestSealOrdering(t *testing.T) {
	s := newService()
	require.NoError(t, s.Initialize(0, 1000, set(1)))

	// commit without seal
	assert.ErrorIs(t, s.CommitValidators(set(1)), errNoSealToCommit)

	require.NoError(t, s.Seal(snapshotFor(1), 100, 2000))

	// duplicate seal while awaiting
	assert.ErrorIs(t, s.Seal(snapshotFor(1), 100, 2000), errSealInProgress)

	require.NoError(t, s.CommitValidators(set(1)))

	// duplicate commit after the cycle completed
	assert.ErrorIs(t, s.CommitValidators(set(1)), errNoSealToCommit)

	// sealing an old epoch again
	assert.ErrorIs(t, s.Seal(snapshotFor(1), 100, 2000), errAlreadySealed)
}

func TestGetSnapshot(t *testing.T) {
	s := newService()
	require.NoError(t, s.Initialize(0, 1000, set(1)))

	_, err := s.GetSnapshot(1)
	assert.ErrorIs(t, err, errEpochNotSealed)

	require.NoError(t, s.Seal(snapshotFor(1), 100, 2000))
	require.NoError(t, s.CommitValidators(set(1)))

	got, err := s.GetSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Epoch)
	assert.Equal(t, big.NewInt(5000), got.Find(1).ReceivedStake)
	assert.Nil(t, got.Find(99))
	assert.Equal(t, big.NewInt(5000), got.TotalStake())

	// cached read returns the same snapshot
	again, err := s.GetSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	_, err = s.GetSnapshot(2)
	assert.ErrorIs(t, err, errEpochNotSealed)

	s.FlushCache()
	got, err = s.GetSnapshot(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got.Epoch)
}
