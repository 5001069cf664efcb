// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking/validation"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/xenv"
)

// highestPayableEpoch returns the last sealed epoch whose snapshot still
// carries the validator's accumulator. A deactivated validator drops out of
// later sets, so accrual stops at its deactivation epoch.
func (s *Staking) highestPayableEpoch(v *validation.Validator) (uint64, error) {
	sealed, err := s.epochs.SealedEpoch()
	if err != nil {
		return 0, err
	}
	if v.DeactivatedEpoch != 0 && v.DeactivatedEpoch < sealed {
		return v.DeactivatedEpoch, nil
	}
	return sealed, nil
}

// rewardPerTokenAt reads the validator's accumulator from a sealed epoch
// snapshot. Epoch 0 and validators absent from the snapshot read as zero.
func (s *Staking) rewardPerTokenAt(epoch, id uint64) (*big.Int, error) {
	if epoch == 0 {
		return new(big.Int), nil
	}
	snapshot, err := s.epochs.GetSnapshot(epoch)
	if err != nil {
		return nil, err
	}
	vs := snapshot.Find(id)
	if vs == nil {
		return new(big.Int), nil
	}
	return vs.AccumulatedRewardPerToken, nil
}

// accruedRewards computes rewards earned since the delegation's watermark,
// excluding the stash.
func (s *Staking) accruedRewards(delegator orion.Address, id uint64, v *validation.Validator) (*big.Int, uint64, error) {
	until, err := s.highestPayableEpoch(v)
	if err != nil {
		return nil, 0, err
	}
	d, err := s.delegations.Get(delegator, id)
	if err != nil {
		return nil, 0, err
	}
	if until <= d.StashedRewardsUntilEpoch || d.Stake.Sign() == 0 {
		return new(big.Int), until, nil
	}
	latest, err := s.rewardPerTokenAt(until, id)
	if err != nil {
		return nil, 0, err
	}
	claimed, err := s.rewardPerTokenAt(d.StashedRewardsUntilEpoch, id)
	if err != nil {
		return nil, 0, err
	}
	delta := new(big.Int).Sub(latest, claimed)
	if delta.Sign() <= 0 {
		return new(big.Int), until, nil
	}
	reward := delta.Mul(delta, d.Stake)
	return reward.Div(reward, fixpoint.Unit()), until, nil
}

// settleRewards banks accrued rewards into the stash and advances the
// watermark. Must run before any stake mutation for the pair, so rewards
// already earned stay priced at the old stake.
func (s *Staking) settleRewards(delegator orion.Address, id uint64, v *validation.Validator) error {
	reward, until, err := s.accruedRewards(delegator, id, v)
	if err != nil {
		return err
	}
	d, err := s.delegations.Get(delegator, id)
	if err != nil {
		return err
	}
	if until < d.StashedRewardsUntilEpoch {
		until = d.StashedRewardsUntilEpoch
	}
	return s.delegations.Stash(delegator, id, reward, until)
}

// PendingRewards returns the total claimable rewards for the pair: the
// stash plus everything accrued since the watermark.
func (s *Staking) PendingRewards(delegator orion.Address, id uint64) (*big.Int, error) {
	v, err := s.validators.Get(id)
	if err != nil {
		return nil, err
	}
	accrued, _, err := s.accruedRewards(delegator, id, v)
	if err != nil {
		return nil, err
	}
	d, err := s.delegations.Get(delegator, id)
	if err != nil {
		return nil, err
	}
	return accrued.Add(accrued, d.Stash), nil
}

// takeRewards settles and drains the pair's full pending balance.
func (s *Staking) takeRewards(delegator orion.Address, id uint64) (*big.Int, error) {
	v, err := s.validators.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.settleRewards(delegator, id, v); err != nil {
		return nil, err
	}
	d, err := s.delegations.Get(delegator, id)
	if err != nil {
		return nil, err
	}
	return s.delegations.TakeStash(delegator, id, d.StashedRewardsUntilEpoch)
}

// ClaimRewards pays out all pending rewards for the pair to the caller.
func (s *Staking) ClaimRewards(env *xenv.Environment, id uint64) error {
	return s.run(func() error {
		caller := env.Caller()
		rewards, err := s.takeRewards(caller, id)
		if err != nil {
			return err
		}
		if rewards.Sign() == 0 {
			return errZeroRewards
		}
		if err := s.supply.Mint(caller, rewards); err != nil {
			return err
		}
		logger.Info("rewards claimed", "account", caller, "id", id, "amount", rewards)
		return nil
	})
}

// RestakeRewards converts all pending rewards for the pair into additional
// stake with the same validator.
func (s *Staking) RestakeRewards(env *xenv.Environment, id uint64) error {
	return s.run(func() error {
		caller := env.Caller()
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		rewards, err := s.takeRewards(caller, id)
		if err != nil {
			return err
		}
		if rewards.Sign() == 0 {
			return errZeroRewards
		}
		if err := s.delegations.AddStake(caller, id, rewards); err != nil {
			return err
		}
		if err := s.validators.AddStake(id, rewards); err != nil {
			return err
		}
		if err := s.supply.Mint(orion.StakingPoolAddress, rewards); err != nil {
			return err
		}
		if v.IsActive() {
			s.queue.Push(notify.ValidatorWeightChanged{
				ValidatorID: id,
				NewWeight:   new(big.Int).Add(v.ReceivedStake, rewards),
			})
		}
		logger.Info("rewards restaked", "account", caller, "id", id, "amount", rewards)
		return nil
	})
}

// StashRewards banks accrued rewards for any (delegator, validator) pair
// without paying them out. Callable by anyone.
func (s *Staking) StashRewards(env *xenv.Environment, delegator orion.Address, id uint64) error {
	return s.run(func() error {
		pending, err := s.PendingRewards(delegator, id)
		if err != nil {
			return err
		}
		if pending.Sign() == 0 {
			return errNothingToStash
		}
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		return s.settleRewards(delegator, id, v)
	})
}

// DistributeExtraReward splits an out-of-band reward across the validators
// of an already sealed epoch, weighted by their stake in that epoch's
// snapshot. With burning enabled the configured fraction is withheld first.
// Allocations round down, so the distributed total never exceeds the
// post-burn amount.
func (s *Staking) DistributeExtraReward(env *xenv.Environment, epoch uint64, withBurn bool, amount *big.Int) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		if amount.Sign() == 0 {
			return errZeroAmount
		}
		snapshot, err := s.epochs.GetSnapshot(epoch)
		if err != nil {
			return err
		}
		distributable := new(big.Int).Set(amount)
		burnt := new(big.Int)
		if withBurn {
			burnRatio, err := s.params.Get(params.KeyExtraRewardBurnRatio)
			if err != nil {
				return err
			}
			burnt = fixpoint.Apply(amount, burnRatio)
			distributable.Sub(distributable, burnt)
		}
		totalStake := snapshot.TotalStake()
		if totalStake.Sign() == 0 || distributable.Sign() == 0 {
			return errZeroRewards
		}

		distributed := new(big.Int)
		for i := range snapshot.Validators {
			vs := &snapshot.Validators[i]
			allocation := new(big.Int).Mul(distributable, vs.ReceivedStake)
			allocation.Div(allocation, totalStake)
			if allocation.Sign() == 0 {
				continue
			}
			v, err := s.validators.Get(vs.ValidatorID)
			if err != nil {
				return err
			}
			if err := s.delegations.AddStash(v.Auth, vs.ValidatorID, allocation); err != nil {
				return err
			}
			distributed.Add(distributed, allocation)
		}
		metricExtraReward().Add(1)
		s.queue.Push(notify.ExtraRewardDistributed{
			Epoch:       epoch,
			Distributed: distributed,
			Burnt:       burnt,
		})
		logger.Info("extra reward distributed",
			"epoch", epoch, "amount", amount, "burnt", burnt, "distributed", distributed)
		return nil
	})
}
