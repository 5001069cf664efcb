// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package epochs

import (
	"encoding/binary"
	"math/big"
)

// ValidatorSnapshot is the per-validator slice of a sealed epoch.
type ValidatorSnapshot struct {
	ValidatorID               uint64
	ReceivedStake             *big.Int
	AccumulatedRewardPerToken *big.Int
	AccumulatedUptime         uint64
	AccumulatedOriginatedFee  *big.Int
	OfflineTime               uint64
	OfflineBlocks             uint64
}

// Snapshot is an immutable record of one sealed epoch.
type Snapshot struct {
	Epoch           uint64
	EndBlock        uint64
	EndTime         uint64
	Duration        uint64
	TotalBaseReward *big.Int
	EpochFee        *big.Int
	Validators      []ValidatorSnapshot
}

// Find returns the slice of the given validator, nil when the validator was
// not in the epoch's set.
func (s *Snapshot) Find(validatorID uint64) *ValidatorSnapshot {
	for i := range s.Validators {
		if s.Validators[i].ValidatorID == validatorID {
			return &s.Validators[i]
		}
	}
	return nil
}

// TotalStake sums the received stake of all validators in the snapshot.
func (s *Snapshot) TotalStake() *big.Int {
	total := new(big.Int)
	for i := range s.Validators {
		total.Add(total, s.Validators[i].ReceivedStake)
	}
	return total
}

// ValidatorSet is the committed validator set of the open epoch, with each
// validator's stake frozen at commit time. Stake changes during the epoch
// affect the next commit, not the running one.
type ValidatorSet struct {
	IDs    []uint64
	Stakes []*big.Int
}

// StakeOf returns the frozen stake of the given validator, nil when the
// validator is not in the set.
func (vs *ValidatorSet) StakeOf(validatorID uint64) *big.Int {
	for i, id := range vs.IDs {
		if id == validatorID {
			return vs.Stakes[i]
		}
	}
	return nil
}

type epochKey uint64

func (k epochKey) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
