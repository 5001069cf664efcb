// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"math/big"

	"github.com/orionchain/orion/orion"
)

// Uint256 is a storage wrapper for a single unsigned 256-bit number.
// Values exceeding 256 bits are truncated to fit the storage word.
type Uint256 struct {
	context *Context
	pos     orion.Bytes32
}

// NewUint256 creates a numeric slot at pos.
func NewUint256(context *Context, pos orion.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	word, err := u.context.GetStorage(u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(word.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) {
	u.context.SetStorage(u.pos, orion.BytesToBytes32(value.Bytes()))
}

func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	current.Add(current, value)
	u.Set(current)
	return nil
}

func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	current.Sub(current, value)
	u.Set(current)
	return nil
}
