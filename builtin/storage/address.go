// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import "github.com/orionchain/orion/orion"

// Address is a storage wrapper for a single account address.
type Address struct {
	context *Context
	pos     orion.Bytes32
}

// NewAddress creates an address slot at pos.
func NewAddress(context *Context, pos orion.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (orion.Address, error) {
	word, err := a.context.GetStorage(a.pos)
	if err != nil {
		return orion.Address{}, err
	}
	return orion.BytesToAddress(word.Bytes()), nil
}

func (a *Address) Set(addr *orion.Address) {
	var word orion.Bytes32
	if addr != nil {
		word = orion.BytesToBytes32(addr.Bytes())
	}
	a.context.SetStorage(a.pos, word)
}
