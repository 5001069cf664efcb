// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stackedmap_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/orionchain/orion/stackedmap"
)

func TestStackedMap(t *testing.T) {
	assert := assert.New(t)
	src := make(map[string]string)
	src["foo"] = "bar"

	sm := stackedmap.New(func(key any) (any, bool, error) {
		v, ok := src[key.(string)]
		return v, ok, nil
	})

	tests := []struct {
		f         func()
		key       string
		wantValue any
		wantExist bool
	}{
		{func() {}, "foo", "bar", true},
		{func() { sm.Push() }, "foo", "bar", true},
		{func() { sm.Put("foo", "baz") }, "foo", "baz", true},
		{func() { sm.Pop() }, "foo", "bar", true},

		{func() { sm.Push() }, "qux", nil, false},
		{func() { sm.Put("qux", "x") }, "qux", "x", true},
		{func() { sm.Push(); sm.Put("qux", "y") }, "qux", "y", true},
		{func() { sm.Pop() }, "qux", "x", true},
		{func() { sm.PopTo(0) }, "qux", nil, false},
	}

	for _, tt := range tests {
		tt.f()
		v, ok, err := sm.Get(tt.key)
		assert.Nil(err)
		assert.Equal(tt.wantExist, ok)
		if tt.wantExist {
			assert.Equal(tt.wantValue, v)
		}
	}
}

func TestStackedMapPuts(t *testing.T) {
	assert := assert.New(t)
	sm := stackedmap.New(func(_ any) (any, bool, error) {
		return nil, false, nil
	})

	kvs := []struct{ k, v string }{
		{"a", "b"},
		{"a", "c"},
		{"d", "e"},
		{"f", "g"},
	}

	sm.Push()
	for _, kv := range kvs {
		sm.Put(kv.k, kv.v)
	}

	var got []struct{ k, v string }
	sm.Journal(func(k, v any) bool {
		got = append(got, struct{ k, v string }{k.(string), v.(string)})
		return true
	})
	assert.Equal(kvs, got, "journal should preserve put order")

	got = got[:0]
	sm.Journal(func(k, v any) bool {
		got = append(got, struct{ k, v string }{k.(string), v.(string)})
		return false
	})
	assert.Equal(1, len(got), "journal iteration should abort")
}
