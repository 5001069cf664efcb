// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/orion"
)

func TestRequireRole(t *testing.T) {
	env := New(orion.BytesToAddress([]byte("driver")), orion.RoleDriver, 10, 1000, nil)

	require.NoError(t, env.RequireRole(orion.RoleDriver))

	err := env.RequireRole(orion.RoleOwner)
	require.Error(t, err)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestGasPriceCopy(t *testing.T) {
	price := big.NewInt(100)
	env := New(orion.Address{}, orion.RoleNone, 0, 0, price)

	got := env.GasPrice()
	got.SetInt64(0)
	assert.Equal(t, big.NewInt(100), env.GasPrice())
}
