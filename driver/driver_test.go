// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package driver

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/subsidies"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

var (
	ownerAddr  = orion.BytesToAddress([]byte("owner"))
	bridgeAddr = orion.BytesToAddress([]byte("bridge"))
	userAddr   = orion.BytesToAddress([]byte("user"))
)

func newTestDriver(t *testing.T) (*Driver, *supply.Supply) {
	st := state.New(kv.NewMemStore())
	p := params.New(storage.NewContext(orion.ParamsNamespace, st, nil))
	sp := supply.New(storage.NewContext(orion.SupplyNamespace, st, nil))
	queue := notify.NewQueue()

	p.Set(params.KeyMinSelfStake, big.NewInt(1000))

	stk := staking.New(st, p, sp, queue, nil)
	sub := subsidies.New(st, p, sp, nil)
	return New(stk, sub, queue, ownerAddr, bridgeAddr), sp
}

func TestResolve(t *testing.T) {
	d, _ := newTestDriver(t)

	assert.Equal(t, orion.RoleOwner, d.Resolve(ownerAddr))
	assert.Equal(t, orion.RoleDriver, d.Resolve(bridgeAddr))
	assert.Equal(t, orion.RoleInternal, d.Resolve(orion.Address{}))
	assert.Equal(t, orion.RoleNone, d.Resolve(userAddr))
}

func TestBridgeDispatch(t *testing.T) {
	d, sp := newTestDriver(t)
	clock := Clock{BlockNumber: 1, Time: 1000}

	require.NoError(t, sp.Mint(userAddr, big.NewInt(2000)))
	env := d.Env(userAddr, clock, big.NewInt(1))
	id, err := d.Staking().CreateValidator(env, []byte("pk"), big.NewInt(2000))
	require.NoError(t, err)

	// creation notifications are handed over on the next dispatch
	require.NoError(t, d.Staking().Initialize(d.Env(bridgeAddr, clock, new(big.Int)), []uint64{id}))

	// an untrusted caller resolves to an unprivileged role
	_, err = d.DeactivateValidator(userAddr, clock, id, 1<<7)
	assert.EqualError(t, err, "caller is not authorized: driver role required")

	messages, err := d.DeactivateValidator(bridgeAddr, clock, id, 1<<7)
	require.NoError(t, err)

	var zeroed bool
	for _, msg := range messages {
		if weight, ok := msg.(notify.ValidatorWeightChanged); ok && weight.ValidatorID == id {
			zeroed = weight.NewWeight.Sign() == 0
		}
	}
	assert.True(t, zeroed)
	assert.Empty(t, d.Notifications())
}

func TestSealDispatch(t *testing.T) {
	d, sp := newTestDriver(t)
	clock := Clock{BlockNumber: 1, Time: 1000}

	require.NoError(t, sp.Mint(userAddr, big.NewInt(2000)))
	id, err := d.Staking().CreateValidator(d.Env(userAddr, clock, big.NewInt(1)), []byte("pk"), big.NewInt(2000))
	require.NoError(t, err)
	require.NoError(t, d.Staking().Initialize(d.Env(bridgeAddr, clock, new(big.Int)), []uint64{id}))

	clock = Clock{BlockNumber: 11, Time: 1100}
	_, err = d.SealEpoch(bridgeAddr, clock, []uint64{0}, []uint64{0}, []uint64{100}, []*big.Int{new(big.Int)})
	require.NoError(t, err)
	_, err = d.SealEpochValidators(bridgeAddr, clock, []uint64{id})
	require.NoError(t, err)

	epoch, err := d.Staking().CurrentEpoch()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), epoch)
}

func TestDeductFeesDispatch(t *testing.T) {
	d, sp := newTestDriver(t)
	clock := Clock{BlockNumber: 1, Time: 1000}

	require.NoError(t, d.Subsidies().Initialize(d.Env(bridgeAddr, clock, new(big.Int))))

	fund := subsidies.AccountFundID(userAddr)
	require.NoError(t, sp.Mint(userAddr, big.NewInt(500)))
	require.NoError(t, d.Subsidies().Sponsor(d.Env(userAddr, clock, big.NewInt(1)), fund, big.NewInt(500)))

	// only the zero-address sentinel may deduct
	err := d.DeductFees(userAddr, clock, fund, big.NewInt(100))
	assert.EqualError(t, err, "caller is not authorized: internal role required")

	require.NoError(t, d.DeductFees(orion.Address{}, clock, fund, big.NewInt(100)))

	available, err := d.Subsidies().AvailableFunds(fund)
	require.NoError(t, err)
	assert.Equal(t, int64(400), available.Int64())
}
