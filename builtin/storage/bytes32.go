// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import "github.com/orionchain/orion/orion"

// Bytes32 is a storage wrapper for a single 32-byte word.
type Bytes32 struct {
	context *Context
	pos     orion.Bytes32
}

// NewBytes32 creates a word slot at pos.
func NewBytes32(context *Context, pos orion.Bytes32) *Bytes32 {
	return &Bytes32{context: context, pos: pos}
}

func (b *Bytes32) Get() (orion.Bytes32, error) {
	return b.context.GetStorage(b.pos)
}

func (b *Bytes32) Set(word *orion.Bytes32) {
	if word == nil {
		word = &orion.Bytes32{}
	}
	b.context.SetStorage(b.pos, *word)
}
