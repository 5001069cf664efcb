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

// CreateValidator registers the caller as a validator with the given pubkey
// and self-stake, transferring the stake into the staking pool. Returns the
// allocated validator ID.
func (s *Staking) CreateValidator(env *xenv.Environment, pubkey []byte, value *big.Int) (uint64, error) {
	var id uint64
	err := s.run(func() error {
		if value.Sign() == 0 {
			return errZeroAmount
		}
		minSelfStake, err := s.params.Get(params.KeyMinSelfStake)
		if err != nil {
			return err
		}
		epoch, err := s.epochs.CurrentEpoch()
		if err != nil {
			return err
		}
		caller := env.Caller()
		id, err = s.validators.Create(caller, pubkey, value, minSelfStake, epoch, env.Time())
		if err != nil {
			return err
		}
		if err := s.delegate(caller, id, value); err != nil {
			return err
		}
		if err := s.supply.Transfer(caller, orion.StakingPoolAddress, value); err != nil {
			return err
		}
		s.queue.Push(notify.ValidatorPubkeySet{ValidatorID: id, Pubkey: pubkey})
		s.queue.Push(notify.ValidatorWeightChanged{ValidatorID: id, NewWeight: new(big.Int).Set(value)})
		logger.Info("validator created", "id", id, "auth", caller, "selfStake", value)
		return nil
	})
	return id, err
}

// Delegate stakes value with an existing validator on behalf of the caller.
func (s *Staking) Delegate(env *xenv.Environment, id uint64, value *big.Int) error {
	return s.run(func() error {
		if value.Sign() == 0 {
			return errZeroAmount
		}
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		caller := env.Caller()
		if err := s.delegate(caller, id, value); err != nil {
			return err
		}
		if err := s.supply.Transfer(caller, orion.StakingPoolAddress, value); err != nil {
			return err
		}
		if v.IsActive() {
			s.queue.Push(notify.ValidatorWeightChanged{
				ValidatorID: id,
				NewWeight:   new(big.Int).Add(v.ReceivedStake, value),
			})
		}
		return nil
	})
}

// delegate settles accrued rewards for the pair, then adds stake on both
// sides of the book. Settling first pins earned rewards to the old stake.
func (s *Staking) delegate(delegator orion.Address, id uint64, value *big.Int) error {
	v, err := s.validators.Get(id)
	if err != nil {
		return err
	}
	if err := s.settleRewards(delegator, id, v); err != nil {
		return err
	}
	if err := s.delegations.AddStake(delegator, id, value); err != nil {
		return err
	}
	return s.validators.AddStake(id, value)
}

// Undelegate removes amount from the caller's delegation immediately and
// records a withdrawal request gated by the epoch and time lockups. A
// validator draining its self-stake to zero is deactivated.
func (s *Staking) Undelegate(env *xenv.Environment, id, requestID uint64, amount *big.Int) error {
	return s.run(func() error {
		if amount.Sign() == 0 {
			return errZeroAmount
		}
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		caller := env.Caller()
		if err := s.settleRewards(caller, id, v); err != nil {
			return err
		}
		if err := s.delegations.SubStake(caller, id, amount); err != nil {
			return err
		}
		if err := s.validators.SubStake(id, amount); err != nil {
			return err
		}

		deactivated := false
		if caller == v.Auth && v.IsActive() {
			d, err := s.delegations.Get(caller, id)
			if err != nil {
				return err
			}
			minSelfStake, err := s.params.Get(params.KeyMinSelfStake)
			if err != nil {
				return err
			}
			if d.Stake.Sign() == 0 {
				if err := s.deactivate(env, id, validation.StatusWithdrawn); err != nil {
					return err
				}
				deactivated = true
			} else if d.Stake.Cmp(minSelfStake) < 0 {
				return errInsufficientSelfStake
			}
		}

		epoch, err := s.epochs.CurrentEpoch()
		if err != nil {
			return err
		}
		if err := s.withdrawals.Create(caller, id, requestID, amount, epoch, env.Time()); err != nil {
			return err
		}
		if v.IsActive() && !deactivated {
			s.queue.Push(notify.ValidatorWeightChanged{
				ValidatorID: id,
				NewWeight:   new(big.Int).Sub(v.ReceivedStake, amount),
			})
		}
		return nil
	})
}

// Withdraw pays out a matured withdrawal request, applying the slashing
// penalty when the validator was slashed. Both the epoch and the time
// lockup must have elapsed.
func (s *Staking) Withdraw(env *xenv.Environment, id, requestID uint64) error {
	return s.run(func() error {
		caller := env.Caller()
		req, err := s.withdrawals.Get(caller, id, requestID)
		if err != nil {
			return err
		}
		periodEpochs, err := s.params.Get(params.KeyWithdrawalPeriodEpochs)
		if err != nil {
			return err
		}
		periodTime, err := s.params.Get(params.KeyWithdrawalPeriodTime)
		if err != nil {
			return err
		}
		epoch, err := s.epochs.CurrentEpoch()
		if err != nil {
			return err
		}
		if epoch < req.Epoch+periodEpochs.Uint64() {
			return errEpochsNotElapsed
		}
		if env.Time() < req.Time+periodTime.Uint64() {
			return errTimeNotElapsed
		}

		penalty, err := s.slashingPenalty(id, req.Amount)
		if err != nil {
			return err
		}
		payout := new(big.Int).Sub(req.Amount, penalty)
		if payout.Sign() <= 0 {
			return errFullySlashed
		}
		if err := s.withdrawals.Delete(caller, id, requestID); err != nil {
			return err
		}
		if err := s.supply.Transfer(orion.StakingPoolAddress, caller, payout); err != nil {
			return err
		}
		if penalty.Sign() > 0 {
			if err := s.supply.Burn(orion.StakingPoolAddress, penalty); err != nil {
				return err
			}
			logger.Info("slashing penalty burned", "id", id, "account", caller, "penalty", penalty)
		}
		return nil
	})
}

// slashingPenalty computes the stake lost to slashing. An unslashed
// validator costs nothing. A slashed validator with no refund ratio costs
// the full amount.
func (s *Staking) slashingPenalty(id uint64, amount *big.Int) (*big.Int, error) {
	v, err := s.validators.Get(id)
	if err != nil {
		return nil, err
	}
	if !v.IsSlashed() {
		return new(big.Int), nil
	}
	ratio, set, err := s.validators.RefundRatio(id)
	if err != nil {
		return nil, err
	}
	if !set {
		return new(big.Int).Set(amount), nil
	}
	return fixpoint.Apply(amount, fixpoint.Complement(ratio)), nil
}
