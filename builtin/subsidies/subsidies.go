// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subsidies implements the gas-subsidy fund ledger: sponsors
// co-fund buckets identified by transaction-classification rules, fees are
// deducted by the node's internal-transaction sentinel, and any sponsor
// can withdraw its proportional unspent share.
package subsidies

import (
	"math/big"

	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/log"
	"github.com/orionchain/orion/metrics"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
	"github.com/orionchain/orion/xenv"
)

var (
	logger = log.WithContext("pkg", "subsidies")

	metricDeductions = metrics.LazyLoadCounter("subsidies_fee_deduction_count")

	slotFunds        = orion.BytesToBytes32([]byte("funds"))
	slotContributors = orion.BytesToBytes32([]byte("fund-contributors"))
	slotInitialized  = orion.BytesToBytes32([]byte("initialized"))
)

var (
	errInvalidFund       = reverts.New("invalid fund id")
	errNotInitialized    = reverts.New("not initialized")
	errZeroAmount        = reverts.New("zero amount")
	errNotEnoughFunds    = reverts.New("not enough funds")
	errNothingToWithdraw = reverts.New("nothing to withdraw")
	errZeroGasPrice      = reverts.New("zero gas price")
)

// SetLogger replaces the package logger.
func SetLogger(l log.Logger) {
	logger = l
}

// Subsidies is the fund ledger over a dedicated storage namespace.
type Subsidies struct {
	state  *state.State
	params *params.Params
	supply *supply.Supply

	funds        *storage.Mapping[fundKey, *Fund]
	contributors *storage.Mapping[contributorKey, *big.Int]
	initialized  *storage.Bytes32
}

// New creates the subsidies ledger over the given state.
func New(st *state.State, p *params.Params, sp *supply.Supply, charger storage.UseGasFunc) *Subsidies {
	ctx := storage.NewContext(orion.SubsidiesNamespace, st, charger)
	return &Subsidies{
		state:  st,
		params: p,
		supply: sp,

		funds:        storage.NewMapping[fundKey, *Fund](ctx, slotFunds),
		contributors: storage.NewMapping[contributorKey, *big.Int](ctx, slotContributors),
		initialized:  storage.NewBytes32(ctx, slotInitialized),
	}
}

// run executes fn atomically against the state journal.
func (s *Subsidies) run(fn func() error) error {
	checkpoint := s.state.NewCheckpoint()
	if err := fn(); err != nil {
		s.state.RevertTo(checkpoint)
		return err
	}
	return nil
}

func (s *Subsidies) getFund(id orion.Bytes32) (*Fund, error) {
	f, err := s.funds.Get(fundKey(id))
	if err != nil {
		return nil, err
	}
	if f.Available == nil {
		f.Available = new(big.Int)
	}
	if f.TotalContributions == nil {
		f.TotalContributions = new(big.Int)
	}
	return f, nil
}

func (s *Subsidies) setFund(id orion.Bytes32, f *Fund) error {
	if !f.Exists() {
		return s.funds.Delete(fundKey(id))
	}
	return s.funds.Set(fundKey(id), f, false)
}

// Initialize opens the ledger for sponsoring. Restricted to the node
// bridge during genesis setup.
func (s *Subsidies) Initialize(env *xenv.Environment) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleDriver); err != nil {
			return err
		}
		flag := orion.BytesToBytes32([]byte{1})
		s.initialized.Set(&flag)
		return nil
	})
}

// IsInitialized reports whether the ledger accepts sponsoring.
func (s *Subsidies) IsInitialized() (bool, error) {
	v, err := s.initialized.Get()
	if err != nil {
		return false, err
	}
	return !v.IsZero(), nil
}

// Sponsor contributes value to a fund, establishing or growing the
// caller's proportional share.
func (s *Subsidies) Sponsor(env *xenv.Environment, id orion.Bytes32, value *big.Int) error {
	return s.run(func() error {
		if id.IsZero() {
			return errInvalidFund
		}
		if value.Sign() == 0 {
			return errZeroAmount
		}
		if ok, err := s.IsInitialized(); err != nil {
			return err
		} else if !ok {
			return errNotInitialized
		}
		caller := env.Caller()
		if err := s.supply.Transfer(caller, orion.SubsidiesPoolAddress, value); err != nil {
			return err
		}
		f, err := s.getFund(id)
		if err != nil {
			return err
		}
		f.Available.Add(f.Available, value)
		f.TotalContributions.Add(f.TotalContributions, value)
		if err := s.setFund(id, f); err != nil {
			return err
		}
		key := contributorKey{fund: id, sponsor: caller}
		weight, err := s.contributors.Get(key)
		if err != nil {
			return err
		}
		weight.Add(weight, value)
		return s.contributors.Set(key, weight, false)
	})
}

// DeductFees takes a subsidized transaction's fee out of the fund and
// burns it. Restricted to the internal-transaction sentinel.
func (s *Subsidies) DeductFees(env *xenv.Environment, id orion.Bytes32, fee *big.Int) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleInternal); err != nil {
			return err
		}
		if id.IsZero() {
			return errInvalidFund
		}
		if fee.Sign() == 0 {
			return nil
		}
		f, err := s.getFund(id)
		if err != nil {
			return err
		}
		if f.Available.Cmp(fee) < 0 {
			return errNotEnoughFunds
		}
		f.Available.Sub(f.Available, fee)
		if err := s.setFund(id, f); err != nil {
			return err
		}
		if err := s.supply.Burn(orion.SubsidiesPoolAddress, fee); err != nil {
			return err
		}
		metricDeductions().Add(1)
		return nil
	})
}

// Withdraw returns up to amount of the caller's proportional unspent share.
// The requested amount is capped to the withdrawable maximum. Blocked in
// zero-gas-price contexts, which mark subsidized execution.
func (s *Subsidies) Withdraw(env *xenv.Environment, id orion.Bytes32, amount *big.Int) error {
	return s.run(func() error {
		if env.GasPrice().Sign() == 0 {
			return errZeroGasPrice
		}
		if id.IsZero() {
			return errInvalidFund
		}
		caller := env.Caller()
		f, err := s.getFund(id)
		if err != nil {
			return err
		}
		key := contributorKey{fund: id, sponsor: caller}
		weight, err := s.contributors.Get(key)
		if err != nil {
			return err
		}
		withdrawable := new(big.Int)
		if f.TotalContributions.Sign() > 0 {
			withdrawable.Mul(f.Available, weight)
			withdrawable.Div(withdrawable, f.TotalContributions)
		}
		if amount.Cmp(withdrawable) > 0 {
			amount = withdrawable
		}
		if amount.Sign() == 0 {
			return errNothingToWithdraw
		}

		// the share reduction must be computed against the pre-withdrawal
		// available balance, the order changes rounding outcomes
		reduction := new(big.Int).Mul(amount, f.TotalContributions)
		reduction.Div(reduction, f.Available)
		f.TotalContributions.Sub(f.TotalContributions, reduction)
		weight.Sub(weight, reduction)
		f.Available.Sub(f.Available, amount)

		if err := s.setFund(id, f); err != nil {
			return err
		}
		if weight.Sign() > 0 {
			if err := s.contributors.Set(key, weight, false); err != nil {
				return err
			}
		} else if err := s.contributors.Delete(key); err != nil {
			return err
		}
		if err := s.supply.Transfer(orion.SubsidiesPoolAddress, caller, amount); err != nil {
			return err
		}
		logger.Debug("fund withdrawal", "fund", id, "sponsor", caller, "amount", amount)
		return nil
	})
}

//
// Getters - no state change
//

// AvailableFunds returns a fund's spendable balance.
func (s *Subsidies) AvailableFunds(id orion.Bytes32) (*big.Int, error) {
	f, err := s.getFund(id)
	if err != nil {
		return nil, err
	}
	return f.Available, nil
}

// TotalContributions returns a fund's lifetime net contributions.
func (s *Subsidies) TotalContributions(id orion.Bytes32) (*big.Int, error) {
	f, err := s.getFund(id)
	if err != nil {
		return nil, err
	}
	return f.TotalContributions, nil
}

// SponsorContribution returns a sponsor's current share weight in a fund.
func (s *Subsidies) SponsorContribution(id orion.Bytes32, sponsor orion.Address) (*big.Int, error) {
	return s.contributors.Get(contributorKey{fund: id, sponsor: sponsor})
}

// CurrentGasConfig returns the gas budgets granted to subsidized execution.
func (s *Subsidies) CurrentGasConfig() (*GasConfig, error) {
	classification, err := s.params.Get(params.KeyFundClassificationGas)
	if err != nil {
		return nil, err
	}
	deduction, err := s.params.Get(params.KeyFundDeductionGas)
	if err != nil {
		return nil, err
	}
	overhead, err := s.params.Get(params.KeyFundFixedOverheadGas)
	if err != nil {
		return nil, err
	}
	return &GasConfig{
		Classification: classification.Uint64(),
		Deduction:      deduction.Uint64(),
		FixedOverhead:  overhead.Uint64(),
	}, nil
}

// SetGasConfig updates the gas budgets. Restricted to the owner.
func (s *Subsidies) SetGasConfig(env *xenv.Environment, config *GasConfig) error {
	return s.run(func() error {
		if err := env.RequireRole(orion.RoleOwner); err != nil {
			return err
		}
		s.params.Set(params.KeyFundClassificationGas, new(big.Int).SetUint64(config.Classification))
		s.params.Set(params.KeyFundDeductionGas, new(big.Int).SetUint64(config.Deduction))
		s.params.Set(params.KeyFundFixedOverheadGas, new(big.Int).SetUint64(config.FixedOverhead))
		logger.Info("gas config updated",
			"classification", config.Classification,
			"deduction", config.Deduction,
			"overhead", config.FixedOverhead)
		return nil
	})
}
