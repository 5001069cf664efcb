// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package delegation

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
	return New(storage.NewContext(orion.BytesToAddress([]byte("delegation")), st, nil))
}

func TestStake(t *testing.T) {
	s := newService()
	alice := orion.BytesToAddress([]byte("alice"))

	d, err := s.Get(alice, 1)
	require.NoError(t, err)
	assert.False(t, d.Exists())

	require.NoError(t, s.AddStake(alice, 1, big.NewInt(100)))
	require.NoError(t, s.AddStake(alice, 1, big.NewInt(50)))
	require.NoError(t, s.SubStake(alice, 1, big.NewInt(30)))

	d, err = s.Get(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(120), d.Stake)

	// positions are isolated per validator
	d2, err := s.Get(alice, 2)
	require.NoError(t, err)
	assert.Zero(t, d2.Stake.Sign())

	err = s.SubStake(alice, 1, big.NewInt(121))
	assert.ErrorIs(t, err, errStakeExceeded)
}

func TestStashAndWatermark(t *testing.T) {
	s := newService()
	alice := orion.BytesToAddress([]byte("alice"))

	require.NoError(t, s.Stash(alice, 1, big.NewInt(10), 5))
	require.NoError(t, s.Stash(alice, 1, big.NewInt(7), 8))

	d, err := s.Get(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(17), d.Stash)
	assert.Equal(t, uint64(8), d.StashedRewardsUntilEpoch)

	taken, err := s.TakeStash(alice, 1, 9)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(17), taken)

	d, err = s.Get(alice, 1)
	require.NoError(t, err)
	assert.Zero(t, d.Stash.Sign())
	assert.Equal(t, uint64(9), d.StashedRewardsUntilEpoch)
}
