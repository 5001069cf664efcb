// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package uptime

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

func newService() *Service {
	st := state.New(kv.NewMemStore())
	return New(storage.NewContext(orion.BytesToAddress([]byte("uptime")), st, nil))
}

func percent(n int64) *big.Int {
	r := new(big.Int).Mul(fixpoint.Unit(), big.NewInt(n))
	return r.Div(r, big.NewInt(100))
}

func TestWindowAverage(t *testing.T) {
	s := newService()

	avg, err := s.Average(1)
	require.NoError(t, err)
	assert.Zero(t, avg.Sign())

	// constant 50% over a full window of 10 reports exactly 50%
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Add(1, percent(50), 10))
	}
	avg, err = s.Average(1)
	require.NoError(t, err)
	assert.Equal(t, percent(50), avg)

	// the 11th entry averages over 11 with the count saturated at the window
	require.NoError(t, s.Add(1, percent(28), 10))
	avg, err = s.Average(1)
	require.NoError(t, err)
	assert.Equal(t, percent(48), avg)
}

func TestWindowFillsIncrementally(t *testing.T) {
	s := newService()

	require.NoError(t, s.Add(1, percent(100), 10))
	require.NoError(t, s.Add(1, percent(50), 10))

	avg, err := s.Average(1)
	require.NoError(t, err)
	assert.Equal(t, percent(75), avg)

	// per-validator isolation
	avg, err = s.Average(2)
	require.NoError(t, err)
	assert.Zero(t, avg.Sign())
}
