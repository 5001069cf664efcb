// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validation

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var (
	slotValidators   = orion.BytesToBytes32([]byte("validators"))
	slotByAuth       = orion.BytesToBytes32([]byte("validator-by-auth"))
	slotByPubkey     = orion.BytesToBytes32([]byte("validator-by-pubkey"))
	slotRefundRatios = orion.BytesToBytes32([]byte("slashing-refund-ratios"))
	slotLastID       = orion.BytesToBytes32([]byte("last-validator-id"))
	slotTotalStake   = orion.BytesToBytes32([]byte("total-stake"))
	slotActiveStake  = orion.BytesToBytes32([]byte("total-active-stake"))
)

type repository struct {
	validators   *storage.Mapping[idKey, *Validator]
	byAuth       *storage.Mapping[addrKey, uint64]
	byPubkey     *storage.Mapping[hashKey, uint64]
	refundRatios *storage.Mapping[idKey, *big.Int]
	lastID       *storage.Uint256
	totalStake   *storage.Uint256
	activeStake  *storage.Uint256
}

func newRepository(ctx *storage.Context) *repository {
	return &repository{
		validators:   storage.NewMapping[idKey, *Validator](ctx, slotValidators),
		byAuth:       storage.NewMapping[addrKey, uint64](ctx, slotByAuth),
		byPubkey:     storage.NewMapping[hashKey, uint64](ctx, slotByPubkey),
		refundRatios: storage.NewMapping[idKey, *big.Int](ctx, slotRefundRatios),
		lastID:       storage.NewUint256(ctx, slotLastID),
		totalStake:   storage.NewUint256(ctx, slotTotalStake),
		activeStake:  storage.NewUint256(ctx, slotActiveStake),
	}
}

func (r *repository) getValidator(id uint64) (*Validator, error) {
	v, err := r.validators.Get(idKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	if v.ReceivedStake == nil {
		v.ReceivedStake = new(big.Int)
	}
	return v, nil
}

func (r *repository) setValidator(id uint64, v *Validator, isNew bool) error {
	if err := r.validators.Set(idKey(id), v, isNew); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

func (r *repository) getRefundRatio(id uint64) (*big.Int, error) {
	ratio, err := r.refundRatios.Get(idKey(id))
	if err != nil {
		return nil, errors.Wrap(err, "failed to get refund ratio")
	}
	return ratio, nil
}

func (r *repository) hasRefundRatio(id uint64) (bool, error) {
	return r.refundRatios.Has(idKey(id))
}

func (r *repository) setRefundRatio(id uint64, ratio *big.Int) error {
	if err := r.refundRatios.Set(idKey(id), ratio, true); err != nil {
		return errors.Wrap(err, "failed to set refund ratio")
	}
	return nil
}
