// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/orionchain/orion/orion"
)

// Key is anything that can key a mapping slot.
type Key interface {
	Bytes() []byte
}

// Mapping is a key/value storage abstraction for built-in engines, similar to
// a mapping in contract storage. Entry positions are derived from the key and
// the mapping's base position.
type Mapping[K Key, V any] struct {
	context *Context
	basePos orion.Bytes32
}

// NewMapping creates a mapping rooted at pos.
func NewMapping[K Key, V any](context *Context, pos orion.Bytes32) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, basePos: pos}
}

func (m *Mapping[K, V]) position(key K) orion.Bytes32 {
	return orion.Blake2b(key.Bytes(), m.basePos.Bytes())
}

// Get returns the value stored for key. An absent key yields the zero value,
// allocated if V is a pointer type.
func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	err = m.context.DecodeStorage(m.position(key), func(raw []byte) error {
		if reflect.ValueOf(value).Kind() == reflect.Ptr {
			value = reflect.New(reflect.TypeOf(value).Elem()).Interface().(V)
		}
		if len(raw) == 0 {
			return nil
		}
		m.context.UseGas(toWordSize(len(raw)) * orion.SloadGas)
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// Has reports whether key has a stored value.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	raw, err := m.context.GetRawStorage(m.position(key))
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Set stores the value for key. newValue distinguishes first writes from
// updates for gas charging.
func (m *Mapping[K, V]) Set(key K, value V, newValue bool) error {
	return m.context.EncodeStorage(m.position(key), func() ([]byte, error) {
		val, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if newValue {
			m.context.UseGas(toWordSize(len(val)) * orion.SstoreSetGas)
		} else {
			m.context.UseGas(toWordSize(len(val)) * orion.SstoreResetGas)
		}
		return val, nil
	})
}

// Delete removes the value stored for key.
func (m *Mapping[K, V]) Delete(key K) error {
	m.context.UseGas(orion.SstoreResetGas)
	return m.context.EncodeStorage(m.position(key), func() ([]byte, error) {
		return nil, nil
	})
}
