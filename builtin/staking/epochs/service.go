// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package epochs keeps the append-only sequence of sealed epoch snapshots and
// the two-step sealing state machine. Sealed snapshots are immutable, which
// makes them safe to serve from an in-memory cache.
package epochs

import (
	"math/big"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

const snapshotCacheSize = 64

var (
	slotCurrentEpoch = orion.BytesToBytes32([]byte("current-epoch"))
	slotSealingPhase = orion.BytesToBytes32([]byte("sealing-phase"))
	slotStartTime    = orion.BytesToBytes32([]byte("epoch-start-time"))
	slotStartBlock   = orion.BytesToBytes32([]byte("epoch-start-block"))
	slotValidatorSet = orion.BytesToBytes32([]byte("epoch-validator-set"))
	slotSnapshots    = orion.BytesToBytes32([]byte("epoch-snapshots"))

	errEpochNotSealed  = reverts.New("epoch isn't sealed yet")
	errSealInProgress  = reverts.New("epoch seal already in progress")
	errNoSealToCommit  = reverts.New("validator set commit without epoch seal")
	errAlreadySealed   = reverts.New("epoch already sealed")
	errUnknownSnapshot = reverts.New("unknown epoch snapshot")
)

// Service exposes the epoch ledger.
type Service struct {
	ctx       *storage.Context
	snapshots *storage.Mapping[epochKey, *Snapshot]
	current   *storage.Uint256
	cache     *lru.Cache
}

// New creates the epoch ledger service.
func New(ctx *storage.Context) *Service {
	cache, _ := lru.New(snapshotCacheSize)
	return &Service{
		ctx:       ctx,
		snapshots: storage.NewMapping[epochKey, *Snapshot](ctx, slotSnapshots),
		current:   storage.NewUint256(ctx, slotCurrentEpoch),
		cache:     cache,
	}
}

// CurrentEpoch returns the number of the currently open epoch.
func (s *Service) CurrentEpoch() (uint64, error) {
	cur, err := s.current.Get()
	if err != nil {
		return 0, err
	}
	return cur.Uint64(), nil
}

// SealedEpoch returns the number of the latest sealed epoch, zero when no
// epoch was sealed yet.
func (s *Service) SealedEpoch() (uint64, error) {
	cur, err := s.CurrentEpoch()
	if err != nil {
		return 0, err
	}
	if cur == 0 {
		return 0, nil
	}
	return cur - 1, nil
}

// Initialize opens the first epoch with the genesis validator set.
// Called once from genesis.
func (s *Service) Initialize(startBlock, startTime uint64, set *ValidatorSet) error {
	s.current.Set(big.NewInt(1))
	s.setStart(startBlock, startTime)
	return s.setValidatorSet(set)
}

func (s *Service) setStart(block, time uint64) {
	s.ctx.SetStorage(slotStartBlock, orion.BytesToBytes32(new(big.Int).SetUint64(block).Bytes()))
	s.ctx.SetStorage(slotStartTime, orion.BytesToBytes32(new(big.Int).SetUint64(time).Bytes()))
}

// Start returns the block and time the open epoch started at.
func (s *Service) Start() (block, time uint64, err error) {
	b, err := s.ctx.GetStorage(slotStartBlock)
	if err != nil {
		return 0, 0, err
	}
	tm, err := s.ctx.GetStorage(slotStartTime)
	if err != nil {
		return 0, 0, err
	}
	return new(big.Int).SetBytes(b.Bytes()).Uint64(), new(big.Int).SetBytes(tm.Bytes()).Uint64(), nil
}

// IsAwaitingValidators reports whether an epoch seal is waiting for its
// validator set commit.
func (s *Service) IsAwaitingValidators() (bool, error) {
	word, err := s.ctx.GetStorage(slotSealingPhase)
	if err != nil {
		return false, err
	}
	return !word.IsZero(), nil
}

func (s *Service) setAwaitingValidators(awaiting bool) {
	var word orion.Bytes32
	if awaiting {
		word[31] = 1
	}
	s.ctx.SetStorage(slotSealingPhase, word)
}

// ValidatorSet returns the committed validator set of the open epoch.
func (s *Service) ValidatorSet() (*ValidatorSet, error) {
	var set ValidatorSet
	err := s.ctx.DecodeStorage(slotValidatorSet, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &set)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator set")
	}
	return &set, nil
}

func (s *Service) setValidatorSet(set *ValidatorSet) error {
	err := s.ctx.EncodeStorage(slotValidatorSet, func() ([]byte, error) {
		if set == nil || len(set.IDs) == 0 {
			return nil, nil
		}
		return rlp.EncodeToBytes(set)
	})
	return errors.Wrap(err, "failed to set validator set")
}

// Seal freezes the given snapshot for the open epoch and moves the ledger
// into the awaiting-validators phase. The epoch counter does not advance
// until the validator set is committed.
func (s *Service) Seal(snapshot *Snapshot, endBlock, endTime uint64) error {
	awaiting, err := s.IsAwaitingValidators()
	if err != nil {
		return err
	}
	if awaiting {
		return errSealInProgress
	}
	cur, err := s.CurrentEpoch()
	if err != nil {
		return err
	}
	if snapshot.Epoch != cur {
		return errAlreadySealed
	}
	if err := s.snapshots.Set(epochKey(snapshot.Epoch), snapshot, true); err != nil {
		return errors.Wrap(err, "failed to store snapshot")
	}
	s.setAwaitingValidators(true)
	s.setStart(endBlock, endTime)
	return nil
}

// CommitValidators commits the validator set of the next epoch, completing
// the seal started by Seal and opening the next epoch.
func (s *Service) CommitValidators(next *ValidatorSet) error {
	awaiting, err := s.IsAwaitingValidators()
	if err != nil {
		return err
	}
	if !awaiting {
		return errNoSealToCommit
	}
	if err := s.setValidatorSet(next); err != nil {
		return err
	}
	if err := s.current.Add(big.NewInt(1)); err != nil {
		return err
	}
	s.setAwaitingValidators(false)
	return nil
}

// GetSnapshot returns the sealed snapshot of the given epoch.
func (s *Service) GetSnapshot(epoch uint64) (*Snapshot, error) {
	if cached, ok := s.cache.Get(epoch); ok {
		return cached.(*Snapshot), nil
	}
	sealed, err := s.SealedEpoch()
	if err != nil {
		return nil, err
	}
	if epoch == 0 || epoch > sealed {
		return nil, errEpochNotSealed
	}
	has, err := s.snapshots.Has(epochKey(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to probe snapshot")
	}
	if !has {
		return nil, errUnknownSnapshot
	}
	snapshot, err := s.snapshots.Get(epochKey(epoch))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get snapshot")
	}
	s.cache.Add(epoch, snapshot)
	return snapshot, nil
}

// FlushCache drops all cached snapshots. Called when an operation reverts,
// so a snapshot journaled by the reverted operation can never be served.
func (s *Service) FlushCache() {
	s.cache.Purge()
}
