// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the validator, delegation and epoch-reward
// engine. All mutating operations are atomic: on error the state journal,
// the notification queue and the snapshot cache are rolled back together.
package staking

import (
	"math/big"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/staking/delegation"
	"github.com/orionchain/orion/builtin/staking/epochs"
	"github.com/orionchain/orion/builtin/staking/uptime"
	"github.com/orionchain/orion/builtin/staking/validation"
	"github.com/orionchain/orion/builtin/staking/withdrawal"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/log"
	"github.com/orionchain/orion/metrics"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
	"github.com/orionchain/orion/xenv"
)

var (
	logger = log.WithContext("pkg", "staking")

	metricSealedEpochs = metrics.LazyLoadCounter("staking_sealed_epoch_count")
	metricExtraReward  = metrics.LazyLoadCounter("staking_extra_reward_distributed_count")

	slotUnresolvedTreasury = orion.BytesToBytes32([]byte("unresolved-treasury-fees"))
)

var (
	errZeroAmount            = reverts.New("zero amount")
	errZeroRewards           = reverts.New("zero rewards")
	errNothingToStash        = reverts.New("nothing to stash")
	errWrongArrayLength      = reverts.New("wrong array length")
	errTreasuryNotSet        = reverts.New("treasury isn't set")
	errNothingUnresolved     = reverts.New("no unresolved treasury fees")
	errInsufficientSelfStake = reverts.New("insufficient self-stake")
	errEpochsNotElapsed      = reverts.New("not enough epochs passed")
	errTimeNotElapsed        = reverts.New("not enough time passed")
	errFullySlashed          = reverts.New("stake is fully slashed")
)

// SetLogger replaces the package logger.
func SetLogger(l log.Logger) {
	logger = l
}

// Staking wires the validator registry, delegation book, epoch ledger,
// withdrawal ledger and uptime window over a shared storage namespace.
type Staking struct {
	state  *state.State
	params *params.Params
	supply *supply.Supply
	queue  *notify.Queue

	validators  *validation.Service
	delegations *delegation.Service
	epochs      *epochs.Service
	withdrawals *withdrawal.Service
	uptimes     *uptime.Service

	unresolvedTreasury *storage.Uint256
}

// New creates the staking engine over the given state.
func New(st *state.State, p *params.Params, sp *supply.Supply, queue *notify.Queue, charger storage.UseGasFunc) *Staking {
	ctx := storage.NewContext(orion.StakingNamespace, st, charger)

	return &Staking{
		state:  st,
		params: p,
		supply: sp,
		queue:  queue,

		validators:  validation.New(ctx),
		delegations: delegation.New(ctx),
		epochs:      epochs.New(ctx),
		withdrawals: withdrawal.New(ctx),
		uptimes:     uptime.New(ctx),

		unresolvedTreasury: storage.NewUint256(ctx, slotUnresolvedTreasury),
	}
}

// run executes fn atomically. On error the state journal and the outbound
// queue are reverted and the snapshot cache is dropped, so a failed
// operation leaves no observable trace.
func (s *Staking) run(fn func() error) error {
	statePoint := s.state.NewCheckpoint()
	queuePoint := s.queue.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(statePoint)
		s.queue.RevertTo(queuePoint)
		s.epochs.FlushCache()
		return err
	}
	return nil
}

//
// Getters - no state change
//

// Validator returns the registry record for id.
func (s *Staking) Validator(id uint64) (*validation.Validator, error) {
	return s.validators.Get(id)
}

// ValidatorIDByAuth returns the validator owned by auth, 0 when none.
func (s *Staking) ValidatorIDByAuth(auth orion.Address) (uint64, error) {
	return s.validators.IDByAuth(auth)
}

// ValidatorIDByPubkey returns the validator registered under pubkey, 0 when none.
func (s *Staking) ValidatorIDByPubkey(pubkey []byte) (uint64, error) {
	return s.validators.IDByPubkey(pubkey)
}

// LastValidatorID returns the highest allocated validator ID.
func (s *Staking) LastValidatorID() (uint64, error) {
	return s.validators.LastID()
}

// TotalStake returns the stake delegated across all validators.
func (s *Staking) TotalStake() (*big.Int, error) {
	return s.validators.TotalStake()
}

// TotalActiveStake returns the stake delegated to active validators.
func (s *Staking) TotalActiveStake() (*big.Int, error) {
	return s.validators.TotalActiveStake()
}

// Delegation returns the delegation book entry for (delegator, validator).
func (s *Staking) Delegation(delegator orion.Address, id uint64) (*delegation.Delegation, error) {
	return s.delegations.Get(delegator, id)
}

// WithdrawalRequest returns an in-flight withdrawal request.
func (s *Staking) WithdrawalRequest(account orion.Address, id, requestID uint64) (*withdrawal.Request, error) {
	return s.withdrawals.Get(account, id, requestID)
}

// SlashingRefundRatio returns the refund ratio for a slashed validator and
// whether one has been assigned.
func (s *Staking) SlashingRefundRatio(id uint64) (*big.Int, bool, error) {
	return s.validators.RefundRatio(id)
}

// CurrentEpoch returns the epoch currently accruing rewards.
func (s *Staking) CurrentEpoch() (uint64, error) {
	return s.epochs.CurrentEpoch()
}

// SealedEpoch returns the most recently sealed epoch, 0 when none.
func (s *Staking) SealedEpoch() (uint64, error) {
	return s.epochs.SealedEpoch()
}

// EpochSnapshot returns the immutable snapshot of a sealed epoch.
func (s *Staking) EpochSnapshot(epoch uint64) (*epochs.Snapshot, error) {
	return s.epochs.GetSnapshot(epoch)
}

// EpochValidators returns the validator set committed for the current epoch.
// Seal metric arrays must be indexed parallel to its ID order.
func (s *Staking) EpochValidators() (*epochs.ValidatorSet, error) {
	return s.epochs.ValidatorSet()
}

// AverageUptime returns the windowed average uptime fraction for a validator.
func (s *Staking) AverageUptime(id uint64) (*big.Int, error) {
	return s.uptimes.Average(id)
}

// UnresolvedTreasuryFees returns treasury fees accumulated while no
// treasury address was configured.
func (s *Staking) UnresolvedTreasuryFees() (*big.Int, error) {
	return s.unresolvedTreasury.Get()
}

//
// Bridge operations
//

// DeactivateValidator merges statusBits into the validator's status and
// zeroes its weight for the next epoch set. Restricted to the node bridge.
func (s *Staking) DeactivateValidator(env *xenv.Environment, id, statusBits uint64) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		return s.deactivate(env, id, statusBits)
	})
}

func (s *Staking) deactivate(env *xenv.Environment, id, statusBits uint64) error {
	epoch, err := s.epochs.CurrentEpoch()
	if err != nil {
		return err
	}
	if err := s.validators.Deactivate(id, statusBits, epoch, env.Time()); err != nil {
		return err
	}
	s.queue.Push(notify.ValidatorWeightChanged{ValidatorID: id, NewWeight: new(big.Int)})
	logger.Info("validator deactivated", "id", id, "status", statusBits, "epoch", epoch)
	return nil
}

// SetGenesisValidator installs a validator record with a pre-assigned ID.
// Restricted to the node bridge during genesis setup.
func (s *Staking) SetGenesisValidator(
	env *xenv.Environment,
	id uint64,
	auth orion.Address,
	pubkey []byte,
	status, createdEpoch, createdTime, deactivatedEpoch, deactivatedTime uint64,
) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		v := &validation.Validator{
			Auth:             auth,
			Status:           status,
			CreatedEpoch:     createdEpoch,
			CreatedTime:      createdTime,
			DeactivatedEpoch: deactivatedEpoch,
			DeactivatedTime:  deactivatedTime,
			ReceivedStake:    new(big.Int),
			Pubkey:           pubkey,
		}
		if err := s.validators.SetGenesisValidator(id, v); err != nil {
			return err
		}
		s.queue.Push(notify.ValidatorPubkeySet{ValidatorID: id, Pubkey: pubkey})
		return nil
	})
}

// SetGenesisDelegation installs a delegation with pre-minted stake.
// Restricted to the node bridge during genesis setup.
func (s *Staking) SetGenesisDelegation(env *xenv.Environment, delegator orion.Address, id uint64, stake *big.Int) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		if stake.Sign() == 0 {
			return errZeroAmount
		}
		v, err := s.validators.Get(id)
		if err != nil {
			return err
		}
		if err := s.delegations.AddStake(delegator, id, stake); err != nil {
			return err
		}
		if err := s.validators.AddStake(id, stake); err != nil {
			return err
		}
		// genesis stake is created out of thin air, backed by the pool
		if err := s.supply.Mint(orion.StakingPoolAddress, stake); err != nil {
			return err
		}
		s.queue.Push(notify.ValidatorWeightChanged{
			ValidatorID: id,
			NewWeight:   new(big.Int).Add(v.ReceivedStake, stake),
		})
		return nil
	})
}

//
// Owner operations
//

// SetSlashingRefundRatio assigns the stake fraction refunded on withdrawal
// from a slashed validator. Settable exactly once per validator.
func (s *Staking) SetSlashingRefundRatio(env *xenv.Environment, id uint64, ratio *big.Int) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		if err := s.validators.SetRefundRatio(id, ratio); err != nil {
			return err
		}
		logger.Info("slashing refund ratio set", "id", id, "ratio", ratio)
		return nil
	})
}

// UpdateNetworkRules forwards a network rules diff to the consensus client.
func (s *Staking) UpdateNetworkRules(env *xenv.Environment, diff []byte) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		s.queue.Push(notify.NetworkRulesUpdated{Diff: diff})
		return nil
	})
}

// UpdateNetworkVersion announces a network version to the consensus client.
func (s *Staking) UpdateNetworkVersion(env *xenv.Environment, version uint64) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		s.queue.Push(notify.NetworkVersionUpdated{Version: version})
		return nil
	})
}

// AdvanceEpochs asks the consensus client to force count epoch transitions.
func (s *Staking) AdvanceEpochs(env *xenv.Environment, count uint64) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		if count == 0 {
			return errZeroAmount
		}
		s.queue.Push(notify.EpochAdvanceRequest{Count: count})
		return nil
	})
}

// ResolveTreasury pays out treasury fees accumulated while the treasury
// address was unset. Callable by anyone once a treasury is configured.
func (s *Staking) ResolveTreasury(env *xenv.Environment) error {
	return s.run(func() error {
		treasury, err := s.params.GetAddress(params.KeyTreasuryAddress)
		if err != nil {
			return err
		}
		if treasury.IsZero() {
			return errTreasuryNotSet
		}
		unresolved, err := s.unresolvedTreasury.Get()
		if err != nil {
			return err
		}
		if unresolved.Sign() == 0 {
			return errNothingUnresolved
		}
		if err := s.supply.Mint(treasury, unresolved); err != nil {
			return err
		}
		s.unresolvedTreasury.Set(new(big.Int))
		s.queue.Push(notify.TreasuryResolved{Treasury: treasury, Amount: unresolved})
		logger.Info("unresolved treasury fees paid out", "treasury", treasury, "amount", unresolved)
		return nil
	})
}
