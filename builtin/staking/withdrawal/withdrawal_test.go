// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package withdrawal

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
	return New(storage.NewContext(orion.BytesToAddress([]byte("withdrawal")), st, nil))
}

func TestRequestLifecycle(t *testing.T) {
	s := newService()
	alice := orion.BytesToAddress([]byte("alice"))

	_, err := s.Get(alice, 1, 1)
	assert.ErrorIs(t, err, errRequestMissing)

	require.NoError(t, s.Create(alice, 1, 1, big.NewInt(500), 3, 3000))

	req, err := s.Get(alice, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), req.Amount)
	assert.Equal(t, uint64(3), req.Epoch)
	assert.Equal(t, uint64(3000), req.Time)

	require.NoError(t, s.Delete(alice, 1, 1))
	_, err = s.Get(alice, 1, 1)
	assert.ErrorIs(t, err, errRequestMissing)

	// a deleted ID can be reused
	require.NoError(t, s.Create(alice, 1, 1, big.NewInt(100), 5, 5000))
}

func TestRequestIDUniquePerPair(t *testing.T) {
	s := newService()
	alice := orion.BytesToAddress([]byte("alice"))
	bob := orion.BytesToAddress([]byte("bob"))

	require.NoError(t, s.Create(alice, 1, 7, big.NewInt(100), 1, 100))

	err := s.Create(alice, 1, 7, big.NewInt(200), 1, 100)
	assert.ErrorIs(t, err, errRequestExists)

	// same ID is fine for another validator or another account
	require.NoError(t, s.Create(alice, 2, 7, big.NewInt(200), 1, 100))
	require.NoError(t, s.Create(bob, 1, 7, big.NewInt(200), 1, 100))
}
