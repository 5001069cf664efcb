// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package validation implements the validator registry: identity allocation,
// pubkey uniqueness, stake totals, status bits and slashing refund ratios.
package validation

import (
	"math/big"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var (
	errMalformedPubkey  = reverts.New("malformed pubkey")
	errPubkeyUsed       = reverts.New("pubkey already used")
	errValidatorExists  = reverts.New("validator already exists for this address")
	errSelfStakeTooLow  = reverts.New("insufficient self-stake")
	errValidatorMissing = reverts.New("validator doesn't exist")
	errNotSlashed       = reverts.New("validator isn't slashed")
	errRatioAlreadySet  = reverts.New("refund ratio already set")
	errRatioTooLarge    = reverts.New("must be less than or equal to 1.0")
	errZeroStatusBits   = reverts.New("wrong status bits")
	errZeroCreatedTime  = reverts.New("zero created time")
)

// Service exposes validator registry operations.
type Service struct {
	repo *repository
}

// New creates the registry service.
func New(ctx *storage.Context) *Service {
	return &Service{repo: newRepository(ctx)}
}

// Create registers a new validator with the given self-stake and returns the
// allocated sequential ID.
func (s *Service) Create(auth orion.Address, pubkey []byte, selfStake, minSelfStake *big.Int, epoch, time uint64) (uint64, error) {
	if len(pubkey) == 0 || len(pubkey) > orion.MaxValidatorPubkeyLength {
		return 0, errMalformedPubkey
	}
	pubkeyHash := hashKey(orion.Blake2b(pubkey))
	if used, err := s.repo.byPubkey.Has(pubkeyHash); err != nil {
		return 0, err
	} else if used {
		return 0, errPubkeyUsed
	}
	if existing, err := s.repo.byAuth.Get(addrKey(auth)); err != nil {
		return 0, err
	} else if existing != 0 {
		return 0, errValidatorExists
	}
	if selfStake.Cmp(minSelfStake) < 0 {
		return 0, errSelfStakeTooLow
	}

	last, err := s.repo.lastID.Get()
	if err != nil {
		return 0, err
	}
	id := last.Uint64() + 1
	s.repo.lastID.Set(new(big.Int).SetUint64(id))

	v := &Validator{
		Auth:          auth,
		CreatedEpoch:  epoch,
		CreatedTime:   time,
		ReceivedStake: new(big.Int),
		Pubkey:        pubkey,
	}
	if err := s.repo.setValidator(id, v, true); err != nil {
		return 0, err
	}
	if err := s.repo.byAuth.Set(addrKey(auth), id, true); err != nil {
		return 0, err
	}
	if err := s.repo.byPubkey.Set(pubkeyHash, id, true); err != nil {
		return 0, err
	}
	return id, nil
}

// SetGenesisValidator writes a validator record with a caller-chosen ID,
// bypassing stake checks. Restricted to genesis setup.
func (s *Service) SetGenesisValidator(id uint64, v *Validator) error {
	if len(v.Pubkey) == 0 || len(v.Pubkey) > orion.MaxValidatorPubkeyLength {
		return errMalformedPubkey
	}
	// existence is keyed on the created time, so a zero value would make
	// the record invisible to Get
	if v.CreatedTime == 0 {
		return errZeroCreatedTime
	}
	pubkeyHash := hashKey(orion.Blake2b(v.Pubkey))
	if used, err := s.repo.byPubkey.Has(pubkeyHash); err != nil {
		return err
	} else if used {
		return errPubkeyUsed
	}
	if existing, err := s.repo.byAuth.Get(addrKey(v.Auth)); err != nil {
		return err
	} else if existing != 0 {
		return errValidatorExists
	}
	if v.ReceivedStake == nil {
		v.ReceivedStake = new(big.Int)
	}
	if err := s.repo.setValidator(id, v, true); err != nil {
		return err
	}
	if err := s.repo.byAuth.Set(addrKey(v.Auth), id, true); err != nil {
		return err
	}
	if err := s.repo.byPubkey.Set(pubkeyHash, id, true); err != nil {
		return err
	}
	last, err := s.repo.lastID.Get()
	if err != nil {
		return err
	}
	if id > last.Uint64() {
		s.repo.lastID.Set(new(big.Int).SetUint64(id))
	}
	return nil
}

// Get returns the validator record, failing when it does not exist.
func (s *Service) Get(id uint64) (*Validator, error) {
	v, err := s.repo.getValidator(id)
	if err != nil {
		return nil, err
	}
	if !v.Exists() {
		return nil, errValidatorMissing
	}
	return v, nil
}

// Exists reports whether a validator with the ID was created.
func (s *Service) Exists(id uint64) (bool, error) {
	v, err := s.repo.getValidator(id)
	if err != nil {
		return false, err
	}
	return v.Exists(), nil
}

// IDByAuth returns the validator ID owned by auth, zero when none.
func (s *Service) IDByAuth(auth orion.Address) (uint64, error) {
	return s.repo.byAuth.Get(addrKey(auth))
}

// IDByPubkey returns the validator ID a pubkey is registered to, zero when none.
func (s *Service) IDByPubkey(pubkey []byte) (uint64, error) {
	return s.repo.byPubkey.Get(hashKey(orion.Blake2b(pubkey)))
}

// LastID returns the highest allocated validator ID.
func (s *Service) LastID() (uint64, error) {
	last, err := s.repo.lastID.Get()
	if err != nil {
		return 0, err
	}
	return last.Uint64(), nil
}

// AddStake increases the validator's received stake.
func (s *Service) AddStake(id uint64, amount *big.Int) error {
	v, err := s.Get(id)
	if err != nil {
		return err
	}
	v.ReceivedStake.Add(v.ReceivedStake, amount)
	if err := s.repo.setValidator(id, v, false); err != nil {
		return err
	}
	if err := s.repo.totalStake.Add(amount); err != nil {
		return err
	}
	if v.IsActive() {
		return s.repo.activeStake.Add(amount)
	}
	return nil
}

// SubStake decreases the validator's received stake. The caller has already
// verified the amount against the backing delegation.
func (s *Service) SubStake(id uint64, amount *big.Int) error {
	v, err := s.Get(id)
	if err != nil {
		return err
	}
	v.ReceivedStake.Sub(v.ReceivedStake, amount)
	if err := s.repo.setValidator(id, v, false); err != nil {
		return err
	}
	if err := s.repo.totalStake.Sub(amount); err != nil {
		return err
	}
	if v.IsActive() {
		return s.repo.activeStake.Sub(amount)
	}
	return nil
}

// TotalStake returns the sum of all received stake.
func (s *Service) TotalStake() (*big.Int, error) {
	return s.repo.totalStake.Get()
}

// TotalActiveStake returns the received stake of validators in good standing.
func (s *Service) TotalActiveStake() (*big.Int, error) {
	return s.repo.activeStake.Get()
}

// Deactivate merges status bits into the validator. The first deactivation
// records the epoch and time; later calls only accumulate bits.
func (s *Service) Deactivate(id uint64, statusBits, epoch, time uint64) error {
	if statusBits == 0 {
		return errZeroStatusBits
	}
	v, err := s.Get(id)
	if err != nil {
		return err
	}
	wasActive := v.IsActive()
	v.Status |= statusBits
	if v.DeactivatedTime == 0 {
		v.DeactivatedEpoch = epoch
		v.DeactivatedTime = time
	}
	if err := s.repo.setValidator(id, v, false); err != nil {
		return err
	}
	if wasActive {
		return s.repo.activeStake.Sub(v.ReceivedStake)
	}
	return nil
}

// SetRefundRatio assigns the slashing refund ratio for a slashed validator.
// It can be set exactly once and only after the doublesign bit is present.
func (s *Service) SetRefundRatio(id uint64, ratio *big.Int) error {
	v, err := s.Get(id)
	if err != nil {
		return err
	}
	if !v.IsSlashed() {
		return errNotSlashed
	}
	if !fixpoint.IsValidRatio(ratio) {
		return errRatioTooLarge
	}
	if set, err := s.repo.hasRefundRatio(id); err != nil {
		return err
	} else if set {
		return errRatioAlreadySet
	}
	return s.repo.setRefundRatio(id, ratio)
}

// RefundRatio returns the assigned refund ratio and whether one was set.
func (s *Service) RefundRatio(id uint64) (*big.Int, bool, error) {
	set, err := s.repo.hasRefundRatio(id)
	if err != nil {
		return nil, false, err
	}
	if !set {
		return nil, false, nil
	}
	ratio, err := s.repo.getRefundRatio(id)
	if err != nil {
		return nil, false, err
	}
	return ratio, true, nil
}
