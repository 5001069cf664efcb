// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed storage slots for the built-in engines,
// modeled after contract storage. Each engine owns a namespace, and slot
// positions are hashed into the namespace so engines can never collide.
package storage

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

// UseGasFunc charges gas for storage access.
type UseGasFunc func(gas uint64)

// Context binds an engine namespace to the world state.
type Context struct {
	namespace orion.Address
	state     *state.State
	charger   UseGasFunc
}

// NewContext creates a storage context for the given engine namespace.
// A nil charger disables gas metering.
func NewContext(namespace orion.Address, state *state.State, charger UseGasFunc) *Context {
	return &Context{
		namespace: namespace,
		state:     state,
		charger:   charger,
	}
}

// State returns the underlying world state.
func (c *Context) State() *state.State {
	return c.state
}

// UseGas charges gas if a charger is attached.
func (c *Context) UseGas(gas uint64) {
	if c.charger != nil {
		c.charger(gas)
	}
}

func (c *Context) slotKey(pos orion.Bytes32) orion.Bytes32 {
	return orion.Blake2b(c.namespace.Bytes(), pos.Bytes())
}

// GetStorage reads the word stored at pos within the namespace.
func (c *Context) GetStorage(pos orion.Bytes32) (orion.Bytes32, error) {
	return c.state.GetStorage(c.slotKey(pos))
}

// SetStorage writes the word stored at pos within the namespace.
func (c *Context) SetStorage(pos, value orion.Bytes32) {
	c.state.SetStorage(c.slotKey(pos), value)
}

// DecodeStorage decodes the raw value at pos with the decoder.
func (c *Context) DecodeStorage(pos orion.Bytes32, dec func([]byte) error) error {
	return c.state.DecodeStorage(c.slotKey(pos), dec)
}

// EncodeStorage stores the value produced by the encoder at pos.
func (c *Context) EncodeStorage(pos orion.Bytes32, enc func() ([]byte, error)) error {
	return c.state.EncodeStorage(c.slotKey(pos), enc)
}

// GetRawStorage returns the raw rlp-encoded value at pos.
func (c *Context) GetRawStorage(pos orion.Bytes32) (rlp.RawValue, error) {
	return c.state.GetRawStorage(c.slotKey(pos))
}
