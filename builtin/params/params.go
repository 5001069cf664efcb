// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params persists governance parameters in state. Each parameter has
// a compiled-in default that applies until an override is stored.
package params

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

// Params binds the governance parameter table to state.
type Params struct {
	ctx *storage.Context
}

// New creates the params binder.
func New(ctx *storage.Context) *Params {
	return &Params{ctx}
}

// Get returns the parameter value for key, falling back to the compiled-in
// default when no override is stored. Values are rlp-encoded, so an override
// of zero is distinct from an empty slot.
func (p *Params) Get(key orion.Bytes32) (*big.Int, error) {
	value := new(big.Int)
	if err := p.ctx.DecodeStorage(key, func(raw []byte) error {
		if len(raw) == 0 {
			if def, ok := defaults[key]; ok {
				value.Set(def)
			}
			return nil
		}
		return rlp.DecodeBytes(raw, value)
	}); err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores an override for key.
func (p *Params) Set(key orion.Bytes32, value *big.Int) {
	// rlp encoding of a big.Int cannot fail
	_ = p.ctx.EncodeStorage(key, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}

// GetAddress returns an address-valued parameter. The zero address means unset.
func (p *Params) GetAddress(key orion.Bytes32) (orion.Address, error) {
	word, err := p.ctx.GetStorage(key)
	if err != nil {
		return orion.Address{}, err
	}
	return orion.BytesToAddress(word.Bytes()), nil
}

// SetAddress stores an address-valued parameter.
func (p *Params) SetAddress(key orion.Bytes32, addr orion.Address) {
	p.ctx.SetStorage(key, orion.BytesToBytes32(addr.Bytes()))
}
