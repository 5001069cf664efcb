// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis loads chain genesis specs and applies them to a fresh
// state through the same engine calls the node bridge would make.
package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/orion"
)

// Spec describes everything installed at block zero.
type Spec struct {
	Name       string `yaml:"name"`
	LaunchTime uint64 `yaml:"launchTime"`

	// Owner receives the governance role, Bridge the node-driver role.
	Owner  string `yaml:"owner"`
	Bridge string `yaml:"bridge"`

	// Treasury receives the treasury fee share. Optional; fees accumulate
	// unresolved until an owner sets the address when left empty.
	Treasury string `yaml:"treasury,omitempty"`

	// Params overrides governance parameters by key name, decimal values.
	Params map[string]string `yaml:"params,omitempty"`

	Accounts   []Account   `yaml:"accounts,omitempty"`
	Validators []Validator `yaml:"validators,omitempty"`
	Funds      []Fund      `yaml:"funds,omitempty"`
}

// Account pre-funds a plain balance.
type Account struct {
	Address string `yaml:"address"`
	Balance string `yaml:"balance"`
}

// Validator installs a validator record with a fixed ID and self-stake.
type Validator struct {
	ID          uint64       `yaml:"id"`
	Auth        string       `yaml:"auth"`
	Pubkey      string       `yaml:"pubkey"`
	Stake       string       `yaml:"stake"`
	Delegations []Delegation `yaml:"delegations,omitempty"`
}

// Delegation installs a third-party delegation against its validator.
type Delegation struct {
	Delegator string `yaml:"delegator"`
	Stake     string `yaml:"stake"`
}

// Fund seeds a subsidy fund with an initial sponsorship.
type Fund struct {
	// Kind selects the fund derivation: account, contract or bootstrap.
	Kind    string `yaml:"kind"`
	Address string `yaml:"address,omitempty"`
	Sponsor string `yaml:"sponsor"`
	Amount  string `yaml:"amount"`
}

// ParseSpec decodes and validates a yaml genesis spec.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, errors.Wrap(err, "decode genesis spec")
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// paramKeys maps spec-facing names to governance parameter keys.
var paramKeys = map[string]orion.Bytes32{
	"base-reward-per-second":           params.KeyBaseRewardPerSecond,
	"validator-commission":             params.KeyValidatorCommission,
	"burnt-fee-share":                  params.KeyBurntFeeShare,
	"treasury-fee-share":               params.KeyTreasuryFeeShare,
	"min-self-stake":                   params.KeyMinSelfStake,
	"withdrawal-period-epochs":         params.KeyWithdrawalPeriodEpochs,
	"withdrawal-period-time":           params.KeyWithdrawalPeriodTime,
	"offline-penalty-threshold-blocks": params.KeyOfflinePenaltyThresholdBlocks,
	"offline-penalty-threshold-time":   params.KeyOfflinePenaltyThresholdTime,
	"uptime-window-size":               params.KeyUptimeWindowSize,
	"extra-reward-burn-ratio":          params.KeyExtraRewardBurnRatio,
	"fund-classification-gas":          params.KeyFundClassificationGas,
	"fund-deduction-gas":               params.KeyFundDeductionGas,
	"fund-fixed-overhead-gas":          params.KeyFundFixedOverheadGas,
}

func (s *Spec) validate() error {
	if s.Name == "" {
		return errors.New("genesis: name is empty")
	}
	// the launch time doubles as the validators' created time, which must
	// be nonzero
	if s.LaunchTime == 0 {
		return errors.New("genesis: zero launch time")
	}
	if _, err := parseAddress(s.Owner); err != nil {
		return errors.Wrap(err, "genesis: owner")
	}
	if _, err := parseAddress(s.Bridge); err != nil {
		return errors.Wrap(err, "genesis: bridge")
	}
	if s.Treasury != "" {
		if _, err := parseAddress(s.Treasury); err != nil {
			return errors.Wrap(err, "genesis: treasury")
		}
	}
	for name, value := range s.Params {
		if _, ok := paramKeys[name]; !ok {
			return errors.Errorf("genesis: unknown param %q", name)
		}
		if _, err := parseAmount(value); err != nil {
			return errors.Wrapf(err, "genesis: param %q", name)
		}
	}
	for i, acc := range s.Accounts {
		if _, err := parseAddress(acc.Address); err != nil {
			return errors.Wrapf(err, "genesis: account #%d", i)
		}
		if _, err := parseAmount(acc.Balance); err != nil {
			return errors.Wrapf(err, "genesis: account #%d balance", i)
		}
	}
	seenIDs := make(map[uint64]bool)
	for i, v := range s.Validators {
		if v.ID == 0 {
			return errors.Errorf("genesis: validator #%d: zero id", i)
		}
		if seenIDs[v.ID] {
			return errors.Errorf("genesis: validator #%d: duplicate id %d", i, v.ID)
		}
		seenIDs[v.ID] = true
		if _, err := parseAddress(v.Auth); err != nil {
			return errors.Wrapf(err, "genesis: validator #%d auth", i)
		}
		if _, err := hexutil.Decode(v.Pubkey); err != nil {
			return errors.Wrapf(err, "genesis: validator #%d pubkey", i)
		}
		if _, err := parseAmount(v.Stake); err != nil {
			return errors.Wrapf(err, "genesis: validator #%d stake", i)
		}
		for j, d := range v.Delegations {
			if _, err := parseAddress(d.Delegator); err != nil {
				return errors.Wrapf(err, "genesis: validator #%d delegation #%d", i, j)
			}
			if _, err := parseAmount(d.Stake); err != nil {
				return errors.Wrapf(err, "genesis: validator #%d delegation #%d stake", i, j)
			}
		}
	}
	for i, f := range s.Funds {
		switch f.Kind {
		case "account", "contract":
			if _, err := parseAddress(f.Address); err != nil {
				return errors.Wrapf(err, "genesis: fund #%d address", i)
			}
		case "bootstrap":
			if f.Address != "" {
				return errors.Errorf("genesis: fund #%d: bootstrap fund takes no address", i)
			}
		default:
			return errors.Errorf("genesis: fund #%d: unknown kind %q", i, f.Kind)
		}
		if _, err := parseAddress(f.Sponsor); err != nil {
			return errors.Wrapf(err, "genesis: fund #%d sponsor", i)
		}
		if _, err := parseAmount(f.Amount); err != nil {
			return errors.Wrapf(err, "genesis: fund #%d amount", i)
		}
	}
	return nil
}

func parseAddress(s string) (orion.Address, error) {
	addr, err := orion.ParseAddress(s)
	if err != nil {
		return orion.Address{}, err
	}
	return *addr, nil
}

func parseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.Errorf("invalid decimal amount %q", s)
	}
	if v.Sign() < 0 {
		return nil, errors.Errorf("negative amount %q", s)
	}
	return v, nil
}
