// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking/epochs"
	"github.com/orionchain/orion/builtin/staking/validation"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/xenv"
)

// Initialize installs the first epoch over a committed validator set. Used
// once at genesis, after genesis validators and delegations are in place.
func (s *Staking) Initialize(env *xenv.Environment, validatorIDs []uint64) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		set, err := s.buildValidatorSet(validatorIDs)
		if err != nil {
			return err
		}
		return s.epochs.Initialize(env.BlockNumber(), env.Time(), set)
	})
}

// SealEpoch closes the current epoch. The metric arrays are indexed
// parallel to the committed validator set order. Restricted to the node
// bridge; a second seal is rejected until the next validator set commits.
func (s *Staking) SealEpoch(env *xenv.Environment, offlineTimes, offlineBlocks, uptimes []uint64, originatedFees []*big.Int) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		set, err := s.epochs.ValidatorSet()
		if err != nil {
			return err
		}
		count := len(set.IDs)
		if len(offlineTimes) != count || len(offlineBlocks) != count ||
			len(uptimes) != count || len(originatedFees) != count {
			return errWrongArrayLength
		}
		epoch, err := s.epochs.CurrentEpoch()
		if err != nil {
			return err
		}
		_, startTime, err := s.epochs.Start()
		if err != nil {
			return err
		}
		var duration uint64
		if env.Time() > startTime {
			duration = env.Time() - startTime
		}

		snapshot, epochFee, err := s.buildEpochSnapshot(epoch, duration, env, set, uptimes, offlineTimes, offlineBlocks, originatedFees)
		if err != nil {
			return err
		}
		if err := s.settleEpochFee(epochFee); err != nil {
			return err
		}
		if err := s.recordUptimes(set, uptimes, duration); err != nil {
			return err
		}
		if err := s.deactivateOffline(env, set, offlineTimes, offlineBlocks); err != nil {
			return err
		}
		if err := s.epochs.Seal(snapshot, env.BlockNumber(), env.Time()); err != nil {
			return err
		}
		metricSealedEpochs().Add(1)
		logger.Info("epoch sealed",
			"epoch", epoch, "validators", count, "duration", duration,
			"baseRewards", snapshot.TotalBaseReward, "epochFee", epochFee)
		return nil
	})
}

// buildEpochSnapshot runs the reward accrual for one epoch: base rewards
// weighted by stake and squared uptime, tx rewards weighted by originated
// fees and uptime, commission split off to the validator, the remainder
// folded into the per-token accumulator.
func (s *Staking) buildEpochSnapshot(
	epoch, duration uint64,
	env *xenv.Environment,
	set *epochs.ValidatorSet,
	uptimes, offlineTimes, offlineBlocks []uint64,
	originatedFees []*big.Int,
) (*epochs.Snapshot, *big.Int, error) {
	baseRewardPerSecond, err := s.params.Get(params.KeyBaseRewardPerSecond)
	if err != nil {
		return nil, nil, err
	}
	burntShare, err := s.params.Get(params.KeyBurntFeeShare)
	if err != nil {
		return nil, nil, err
	}
	treasuryShare, err := s.params.Get(params.KeyTreasuryFeeShare)
	if err != nil {
		return nil, nil, err
	}
	commission, err := s.params.Get(params.KeyValidatorCommission)
	if err != nil {
		return nil, nil, err
	}

	epochFee := new(big.Int)
	for _, fee := range originatedFees {
		epochFee.Add(epochFee, fee)
	}

	// tx rewards exclude the burnt and treasury shares of the epoch fee
	validatorFeeShare := new(big.Int).Sub(fixpoint.Unit(), burntShare)
	validatorFeeShare.Sub(validatorFeeShare, treasuryShare)
	if validatorFeeShare.Sign() < 0 {
		validatorFeeShare.SetUint64(0)
	}

	durationBig := new(big.Int).SetUint64(duration)
	baseRewardPool := new(big.Int).Mul(baseRewardPerSecond, durationBig)

	baseWeights := make([]*big.Int, len(set.IDs))
	txWeights := make([]*big.Int, len(set.IDs))
	totalBaseWeight := new(big.Int)
	totalTxWeight := new(big.Int)
	for i, id := range set.IDs {
		baseWeights[i] = new(big.Int)
		txWeights[i] = new(big.Int)
		if duration == 0 {
			continue
		}
		uptimeBig := new(big.Int).SetUint64(uptimes[i])

		w := new(big.Int).Mul(set.StakeOf(id), uptimeBig)
		w.Div(w, durationBig)
		w.Mul(w, uptimeBig)
		baseWeights[i] = w.Div(w, durationBig)
		totalBaseWeight.Add(totalBaseWeight, baseWeights[i])

		w = new(big.Int).Mul(originatedFees[i], uptimeBig)
		txWeights[i] = w.Div(w, durationBig)
		totalTxWeight.Add(totalTxWeight, txWeights[i])
	}

	snapshot := &epochs.Snapshot{
		Epoch:           epoch,
		EndBlock:        env.BlockNumber(),
		EndTime:         env.Time(),
		Duration:        duration,
		TotalBaseReward: new(big.Int),
		EpochFee:        epochFee,
		Validators:      make([]epochs.ValidatorSnapshot, len(set.IDs)),
	}

	for i, id := range set.IDs {
		stake := set.StakeOf(id)

		baseReward := new(big.Int)
		if totalBaseWeight.Sign() > 0 {
			baseReward.Mul(baseRewardPool, baseWeights[i])
			baseReward.Div(baseReward, totalBaseWeight)
		}
		txReward := new(big.Int)
		if totalTxWeight.Sign() > 0 {
			txReward.Mul(epochFee, txWeights[i])
			txReward.Div(txReward, totalTxWeight)
			txReward = fixpoint.Apply(txReward, validatorFeeShare)
		}
		rawReward := new(big.Int).Add(baseReward, txReward)
		snapshot.TotalBaseReward.Add(snapshot.TotalBaseReward, baseReward)

		commissionReward := fixpoint.Apply(rawReward, commission)
		delegatorsReward := new(big.Int).Sub(rawReward, commissionReward)

		prevRPT, err := s.rewardPerTokenAt(epoch-1, id)
		if err != nil {
			return nil, nil, err
		}
		accRPT := new(big.Int).Set(prevRPT)
		if stake.Sign() > 0 {
			delta := new(big.Int).Mul(delegatorsReward, fixpoint.Unit())
			accRPT.Add(accRPT, delta.Div(delta, stake))
		} else {
			// no stake to accrue against, the whole reward is commission
			commissionReward = rawReward
		}
		if commissionReward.Sign() > 0 {
			v, err := s.validators.Get(id)
			if err != nil {
				return nil, nil, err
			}
			if err := s.delegations.AddStash(v.Auth, id, commissionReward); err != nil {
				return nil, nil, err
			}
		}

		prevUptime, prevFee, err := s.priorCounters(epoch-1, id)
		if err != nil {
			return nil, nil, err
		}
		snapshot.Validators[i] = epochs.ValidatorSnapshot{
			ValidatorID:               id,
			ReceivedStake:             new(big.Int).Set(stake),
			AccumulatedRewardPerToken: accRPT,
			AccumulatedUptime:         prevUptime + uptimes[i],
			AccumulatedOriginatedFee:  new(big.Int).Add(prevFee, originatedFees[i]),
			OfflineTime:               offlineTimes[i],
			OfflineBlocks:             offlineBlocks[i],
		}
	}
	return snapshot, epochFee, nil
}

// priorCounters reads the accumulated uptime and originated fee counters
// from the previous epoch's snapshot, zero when absent.
func (s *Staking) priorCounters(epoch, id uint64) (uint64, *big.Int, error) {
	if epoch == 0 {
		return 0, new(big.Int), nil
	}
	snapshot, err := s.epochs.GetSnapshot(epoch)
	if err != nil {
		return 0, nil, err
	}
	vs := snapshot.Find(id)
	if vs == nil {
		return 0, new(big.Int), nil
	}
	return vs.AccumulatedUptime, vs.AccumulatedOriginatedFee, nil
}

// settleEpochFee burns the configured share of the epoch fee and pushes
// the treasury share. A missing treasury address accumulates instead of
// failing, so a broken recipient never blocks sealing.
func (s *Staking) settleEpochFee(epochFee *big.Int) error {
	if epochFee.Sign() == 0 {
		return nil
	}
	burntShare, err := s.params.Get(params.KeyBurntFeeShare)
	if err != nil {
		return err
	}
	treasuryShare, err := s.params.Get(params.KeyTreasuryFeeShare)
	if err != nil {
		return err
	}
	if burnt := fixpoint.Apply(epochFee, burntShare); burnt.Sign() > 0 {
		if err := s.supply.NoteBurned(burnt); err != nil {
			return err
		}
	}
	treasuryFee := fixpoint.Apply(epochFee, treasuryShare)
	if treasuryFee.Sign() == 0 {
		return nil
	}
	treasury, err := s.params.GetAddress(params.KeyTreasuryAddress)
	if err != nil {
		return err
	}
	if treasury.IsZero() {
		logger.Warn("treasury isn't set, accumulating fees", "amount", treasuryFee)
		return s.unresolvedTreasury.Add(treasuryFee)
	}
	return s.supply.Mint(treasury, treasuryFee)
}

// recordUptimes feeds each validator's uptime fraction for the epoch into
// its rolling window.
func (s *Staking) recordUptimes(set *epochs.ValidatorSet, uptimes []uint64, duration uint64) error {
	windowSize, err := s.params.Get(params.KeyUptimeWindowSize)
	if err != nil {
		return err
	}
	for i, id := range set.IDs {
		fraction := new(big.Int)
		if duration > 0 {
			fraction.SetUint64(uptimes[i])
			fraction.Mul(fraction, fixpoint.Unit())
			fraction.Div(fraction, new(big.Int).SetUint64(duration))
		}
		if err := s.uptimes.Add(id, fraction, windowSize.Uint64()); err != nil {
			return err
		}
	}
	return nil
}

// deactivateOffline deactivates validators whose reported offline counters
// exceed both configured thresholds.
func (s *Staking) deactivateOffline(env *xenv.Environment, set *epochs.ValidatorSet, offlineTimes, offlineBlocks []uint64) error {
	thresholdBlocks, err := s.params.Get(params.KeyOfflinePenaltyThresholdBlocks)
	if err != nil {
		return err
	}
	thresholdTime, err := s.params.Get(params.KeyOfflinePenaltyThresholdTime)
	if err != nil {
		return err
	}
	for i, id := range set.IDs {
		if offlineBlocks[i] < thresholdBlocks.Uint64() || offlineTimes[i] < thresholdTime.Uint64() {
			continue
		}
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		if !v.IsActive() {
			continue
		}
		if err := s.deactivate(env, id, validation.StatusOffline); err != nil {
			return err
		}
	}
	return nil
}

// SealEpochValidators commits the validator set for the next epoch and
// advances the epoch counter. Must follow a SealEpoch for the same
// transition; a duplicate commit is rejected.
func (s *Staking) SealEpochValidators(env *xenv.Environment, nextIDs []uint64) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		set, err := s.buildValidatorSet(nextIDs)
		if err != nil {
			return err
		}
		return s.epochs.CommitValidators(set)
	})
}

// buildValidatorSet freezes each named validator's current received stake.
// Stake mutations from here on affect a later epoch's weights.
func (s *Staking) buildValidatorSet(ids []uint64) (*epochs.ValidatorSet, error) {
	set := &epochs.ValidatorSet{
		IDs:    make([]uint64, len(ids)),
		Stakes: make([]*big.Int, len(ids)),
	}
	for i, id := range ids {
		v, err := s.validators.Get(id)
		if err != nil {
			return nil, err
		}
		set.IDs[i] = id
		set.Stakes[i] = new(big.Int).Set(v.ReceivedStake)
	}
	return set, nil
}
