// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/orion"
)

func key(s string) orion.Bytes32 {
	return orion.Blake2b([]byte(s))
}

func TestStorage(t *testing.T) {
	st := New(kv.NewMemStore())

	k := key("k1")
	v := orion.Blake2b([]byte("value"))

	got, err := st.GetStorage(k)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	st.SetStorage(k, v)
	got, err = st.GetStorage(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)

	st.SetStorage(k, orion.Bytes32{})
	raw, err := st.GetRawStorage(k)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestEncodeDecodeStorage(t *testing.T) {
	st := New(kv.NewMemStore())

	type record struct {
		A uint64
		B []byte
	}

	k := key("rec")
	want := record{42, []byte("payload")}

	err := st.EncodeStorage(k, func() ([]byte, error) {
		return rlp.EncodeToBytes(&want)
	})
	require.NoError(t, err)

	var got record
	err = st.DecodeStorage(k, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &got)
	})
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// absent key decodes with nil raw
	called := false
	err = st.DecodeStorage(key("absent"), func(raw []byte) error {
		called = true
		assert.Nil(t, []byte(raw))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestCheckpointRevert(t *testing.T) {
	st := New(kv.NewMemStore())

	k := key("k")
	v1 := orion.Blake2b([]byte("v1"))
	v2 := orion.Blake2b([]byte("v2"))

	st.SetStorage(k, v1)

	cp := st.NewCheckpoint()
	st.SetStorage(k, v2)
	got, err := st.GetStorage(k)
	require.NoError(t, err)
	assert.Equal(t, v2, got)

	st.RevertTo(cp)
	got, err = st.GetStorage(k)
	require.NoError(t, err)
	assert.Equal(t, v1, got)
}

func TestWriteBeforeAnyCheckpoint(t *testing.T) {
	store := kv.NewMemStore()
	st := New(store)

	k := key("boot")
	v := orion.Blake2b([]byte("v"))

	// the very first write on a fresh state lands in the base journal level
	st.SetStorage(k, v)

	// a full checkpoint cycle must not disturb the base level
	cp := st.NewCheckpoint()
	st.SetStorage(key("tmp"), v)
	st.RevertTo(cp)

	require.NoError(t, st.Commit())

	st2 := New(store)
	got, err := st2.GetStorage(k)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	got, err = st2.GetStorage(key("tmp"))
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestCommit(t *testing.T) {
	store := kv.NewMemStore()

	st := New(store)
	k1, k2 := key("k1"), key("k2")
	v := orion.Blake2b([]byte("v"))

	st.SetStorage(k1, v)
	st.SetStorage(k2, v)
	st.SetStorage(k2, orion.Bytes32{}) // deleted before commit
	require.NoError(t, st.Commit())

	// fresh state over the same store sees committed values
	st2 := New(store)
	got, err := st2.GetStorage(k1)
	require.NoError(t, err)
	assert.Equal(t, v, got)
	got, err = st2.GetStorage(k2)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
