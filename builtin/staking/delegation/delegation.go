// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package delegation tracks per (delegator, validator) stake, the reward
// watermark and the stashed reward balance.
package delegation

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var slotDelegations = orion.BytesToBytes32([]byte("delegations"))

var errStakeExceeded = reverts.New("not enough stake")

// Delegation is the record of one delegator's position with one validator.
type Delegation struct {
	Stake *big.Int

	// StashedRewardsUntilEpoch is the reward watermark: rewards of sealed
	// epochs up to and including it are already stashed or claimed.
	StashedRewardsUntilEpoch uint64

	// Stash holds accrued but unclaimed rewards.
	Stash *big.Int
}

// Exists reports whether the position holds stake or stash.
func (d *Delegation) Exists() bool {
	return d.Stake.Sign() != 0 || d.Stash.Sign() != 0 || d.StashedRewardsUntilEpoch != 0
}

type pairKey struct {
	delegator orion.Address
	id        uint64
}

func (k pairKey) Bytes() []byte {
	b := make([]byte, 0, 28)
	b = append(b, k.delegator.Bytes()...)
	var idb [8]byte
	binary.BigEndian.PutUint64(idb[:], k.id)
	return append(b, idb[:]...)
}

// Service exposes delegation bookkeeping.
type Service struct {
	delegations *storage.Mapping[pairKey, *Delegation]
}

// New creates the delegation service.
func New(ctx *storage.Context) *Service {
	return &Service{
		delegations: storage.NewMapping[pairKey, *Delegation](ctx, slotDelegations),
	}
}

// Get returns the delegation of delegator with validator id. Absent positions
// come back zero-valued.
func (s *Service) Get(delegator orion.Address, id uint64) (*Delegation, error) {
	d, err := s.delegations.Get(pairKey{delegator, id})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get delegation")
	}
	if d.Stake == nil {
		d.Stake = new(big.Int)
	}
	if d.Stash == nil {
		d.Stash = new(big.Int)
	}
	return d, nil
}

func (s *Service) set(delegator orion.Address, id uint64, d *Delegation) error {
	if err := s.delegations.Set(pairKey{delegator, id}, d, false); err != nil {
		return errors.Wrap(err, "failed to set delegation")
	}
	return nil
}

// AddStake increases the position's stake.
func (s *Service) AddStake(delegator orion.Address, id uint64, amount *big.Int) error {
	d, err := s.Get(delegator, id)
	if err != nil {
		return err
	}
	d.Stake.Add(d.Stake, amount)
	return s.set(delegator, id, d)
}

// SubStake decreases the position's stake, failing when it exceeds the stake.
func (s *Service) SubStake(delegator orion.Address, id uint64, amount *big.Int) error {
	d, err := s.Get(delegator, id)
	if err != nil {
		return err
	}
	if d.Stake.Cmp(amount) < 0 {
		return errStakeExceeded
	}
	d.Stake.Sub(d.Stake, amount)
	return s.set(delegator, id, d)
}

// AddStash credits rewards to the stash without touching the watermark.
// Used for commission and out-of-band reward credits.
func (s *Service) AddStash(delegator orion.Address, id uint64, amount *big.Int) error {
	d, err := s.Get(delegator, id)
	if err != nil {
		return err
	}
	d.Stash.Add(d.Stash, amount)
	return s.set(delegator, id, d)
}

// Stash adds rewards to the stash and advances the watermark.
func (s *Service) Stash(delegator orion.Address, id uint64, rewards *big.Int, untilEpoch uint64) error {
	d, err := s.Get(delegator, id)
	if err != nil {
		return err
	}
	d.Stash.Add(d.Stash, rewards)
	d.StashedRewardsUntilEpoch = untilEpoch
	return s.set(delegator, id, d)
}

// TakeStash empties the stash and advances the watermark, returning the
// stashed amount.
func (s *Service) TakeStash(delegator orion.Address, id uint64, untilEpoch uint64) (*big.Int, error) {
	d, err := s.Get(delegator, id)
	if err != nil {
		return nil, err
	}
	taken := d.Stash
	d.Stash = new(big.Int)
	d.StashedRewardsUntilEpoch = untilEpoch
	if err := s.set(delegator, id, d); err != nil {
		return nil, err
	}
	return taken, nil
}
