// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

type testRecord struct {
	Field1 uint64
	Field2 uint64
	Addr1  orion.Address
	Hash1  orion.Bytes32
}

func newTestContext(charger UseGasFunc) *Context {
	st := state.New(kv.NewMemStore())
	return NewContext(orion.BytesToAddress([]byte("test-ns")), st, charger)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(nil)
	mapping := NewMapping[orion.Bytes32, *testRecord](ctx, orion.Bytes32{1})

	key := orion.Blake2b([]byte("k"))

	// absent key yields allocated zero value
	got, err := mapping.Get(key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, uint64(0), got.Field1)

	has, err := mapping.Has(key)
	require.NoError(t, err)
	assert.False(t, has)

	want := &testRecord{
		Field1: 100,
		Field2: 200,
		Addr1:  orion.BytesToAddress([]byte("addr")),
		Hash1:  orion.Blake2b([]byte("hash")),
	}
	require.NoError(t, mapping.Set(key, want, true))

	got, err = mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	has, err = mapping.Has(key)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, mapping.Delete(key))
	has, err = mapping.Has(key)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMappingNamespaceIsolation(t *testing.T) {
	st := state.New(kv.NewMemStore())
	ctxA := NewContext(orion.BytesToAddress([]byte("a")), st, nil)
	ctxB := NewContext(orion.BytesToAddress([]byte("b")), st, nil)

	key := orion.Blake2b([]byte("shared"))
	mapA := NewMapping[orion.Bytes32, uint64](ctxA, orion.Bytes32{1})
	mapB := NewMapping[orion.Bytes32, uint64](ctxB, orion.Bytes32{1})

	require.NoError(t, mapA.Set(key, 7, true))

	got, err := mapB.Get(key)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), got)
}

func TestMappingGasCharging(t *testing.T) {
	var used uint64
	ctx := newTestContext(func(gas uint64) { used += gas })
	mapping := NewMapping[orion.Bytes32, uint64](ctx, orion.Bytes32{1})

	key := orion.Blake2b([]byte("k"))

	require.NoError(t, mapping.Set(key, 7, true))
	assert.Equal(t, orion.SstoreSetGas, used)

	used = 0
	require.NoError(t, mapping.Set(key, 9, false))
	assert.Equal(t, orion.SstoreResetGas, used)

	used = 0
	_, err := mapping.Get(key)
	require.NoError(t, err)
	assert.Equal(t, orion.SloadGas, used)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(nil)
	slot := NewUint256(ctx, orion.Bytes32{2})

	value, err := slot.Get()
	require.NoError(t, err)
	assert.Zero(t, value.Sign())

	slot.Set(big.NewInt(1000))
	require.NoError(t, slot.Add(big.NewInt(500)))
	require.NoError(t, slot.Sub(big.NewInt(200)))

	value, err = slot.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1300), value)
}

func TestAddressAndBytes32(t *testing.T) {
	ctx := newTestContext(nil)

	addrSlot := NewAddress(ctx, orion.Bytes32{3})
	addr := orion.BytesToAddress([]byte("someone"))
	addrSlot.Set(&addr)
	got, err := addrSlot.Get()
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	addrSlot.Set(nil)
	got, err = addrSlot.Get()
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	wordSlot := NewBytes32(ctx, orion.Bytes32{4})
	word := orion.Blake2b([]byte("word"))
	wordSlot.Set(&word)
	gotWord, err := wordSlot.Get()
	require.NoError(t, err)
	assert.Equal(t, word, gotWord)
}

func TestConfigVariable(t *testing.T) {
	config := NewConfigVariable("epoch-length", 180)

	assert.Equal(t, uint32(180), config.Get())
	assert.Equal(t, "epoch-length", config.Name())
	assert.Equal(t, orion.BytesToBytes32([]byte("epoch-length")), config.Slot())

	// zero stored value keeps the default
	ctx := newTestContext(nil)
	config.Override(ctx)
	assert.Equal(t, uint32(180), config.Get())

	// stored override wins, but only before the first read
	ctx2 := newTestContext(nil)
	config2 := NewConfigVariable("epoch-length", 180)
	ctx2.SetStorage(config2.Slot(), orion.BytesToBytes32(big.NewInt(360).Bytes()))
	config2.Override(ctx2)
	assert.Equal(t, uint32(360), config2.Get())

	ctx2.SetStorage(config2.Slot(), orion.BytesToBytes32(big.NewInt(720).Bytes()))
	config2.Override(ctx2)
	assert.Equal(t, uint32(360), config2.Get())
}
