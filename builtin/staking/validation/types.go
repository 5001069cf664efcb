// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"encoding/binary"
	"math/big"

	"github.com/orionchain/orion/orion"
)

// Validator status bits. A zero status means the validator is in good
// standing. Bits are OR-combinable.
const (
	StatusWithdrawn  uint64 = 1
	StatusOffline    uint64 = 1 << 3
	StatusDoubleSign uint64 = 1 << 7
)

// Validator is the registry record of one validator.
type Validator struct {
	Auth             orion.Address
	Status           uint64
	CreatedEpoch     uint64
	CreatedTime      uint64
	DeactivatedEpoch uint64
	DeactivatedTime  uint64
	ReceivedStake    *big.Int
	Pubkey           []byte
}

// Exists reports whether the record was ever created.
func (v *Validator) Exists() bool {
	return v.CreatedTime != 0
}

// IsActive reports whether the validator is in good standing.
func (v *Validator) IsActive() bool {
	return v.Exists() && v.Status == 0
}

// IsSlashed reports whether the validator carries the doublesign bit.
func (v *Validator) IsSlashed() bool {
	return v.Status&StatusDoubleSign != 0
}

type idKey uint64

func (k idKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}

type addrKey orion.Address

func (k addrKey) Bytes() []byte { return orion.Address(k).Bytes() }

type hashKey orion.Bytes32

func (k hashKey) Bytes() []byte { return orion.Bytes32(k).Bytes() }
