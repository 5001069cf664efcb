// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/subsidies"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/driver"
	"github.com/orionchain/orion/log"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
	"github.com/orionchain/orion/xenv"
)

var logger = log.WithContext("pkg", "genesis")

// Build assembles the engines over the given state and applies the spec
// through bridge-role calls, exactly as the node would at block zero. The
// state is left uncommitted; genesis notifications remain queued on the
// returned driver.
func Build(st *state.State, spec *Spec) (*driver.Driver, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	p := params.New(storage.NewContext(orion.ParamsNamespace, st, nil))
	sp := supply.New(storage.NewContext(orion.SupplyNamespace, st, nil))
	queue := notify.NewQueue()
	stk := staking.New(st, p, sp, queue, nil)
	sub := subsidies.New(st, p, sp, nil)

	owner := orion.MustParseAddress(spec.Owner)
	bridge := orion.MustParseAddress(spec.Bridge)
	d := driver.New(stk, sub, queue, owner, bridge)

	clock := driver.Clock{BlockNumber: 0, Time: spec.LaunchTime}
	bridgeEnv := d.Env(bridge, clock, new(big.Int))

	for name, value := range spec.Params {
		amount, _ := parseAmount(value)
		p.Set(paramKeys[name], amount)
	}
	if spec.Treasury != "" {
		p.SetAddress(params.KeyTreasuryAddress, orion.MustParseAddress(spec.Treasury))
	}

	for _, acc := range spec.Accounts {
		balance, _ := parseAmount(acc.Balance)
		if err := sp.Mint(orion.MustParseAddress(acc.Address), balance); err != nil {
			return nil, errors.Wrapf(err, "fund account %s", acc.Address)
		}
	}

	if err := sub.Initialize(bridgeEnv); err != nil {
		return nil, errors.Wrap(err, "initialize subsidies")
	}
	for _, f := range spec.Funds {
		if err := seedFund(d, sub, sp, clock, &f); err != nil {
			return nil, err
		}
	}

	ids := make([]uint64, 0, len(spec.Validators))
	for _, v := range spec.Validators {
		if err := installValidator(stk, bridgeEnv, spec.LaunchTime, &v); err != nil {
			return nil, err
		}
		ids = append(ids, v.ID)
	}

	if err := stk.Initialize(bridgeEnv, ids); err != nil {
		return nil, errors.Wrap(err, "initialize epoch")
	}

	logger.Info("genesis built",
		"name", spec.Name,
		"validators", len(spec.Validators),
		"accounts", len(spec.Accounts),
		"funds", len(spec.Funds))
	return d, nil
}

func installValidator(stk *staking.Staking, env *xenv.Environment, launchTime uint64, v *Validator) error {
	auth := orion.MustParseAddress(v.Auth)
	pubkey, _ := hexutil.Decode(v.Pubkey)
	if err := stk.SetGenesisValidator(env, v.ID, auth, pubkey, 0, 0, launchTime, 0, 0); err != nil {
		return errors.Wrapf(err, "install validator %d", v.ID)
	}
	stake, _ := parseAmount(v.Stake)
	if err := stk.SetGenesisDelegation(env, auth, v.ID, stake); err != nil {
		return errors.Wrapf(err, "self-stake validator %d", v.ID)
	}
	for _, del := range v.Delegations {
		amount, _ := parseAmount(del.Stake)
		if err := stk.SetGenesisDelegation(env, orion.MustParseAddress(del.Delegator), v.ID, amount); err != nil {
			return errors.Wrapf(err, "delegate to validator %d", v.ID)
		}
	}
	return nil
}

// seedFund mints the seed amount to the sponsor and sponsors the fund on
// their behalf, so genesis sponsors hold withdrawable shares like any
// later contributor.
func seedFund(d *driver.Driver, sub *subsidies.Subsidies, sp *supply.Supply, clock driver.Clock, f *Fund) error {
	var id orion.Bytes32
	switch f.Kind {
	case "account":
		id = subsidies.AccountFundID(orion.MustParseAddress(f.Address))
	case "contract":
		id = subsidies.ContractFundID(orion.MustParseAddress(f.Address))
	case "bootstrap":
		id = subsidies.BootstrapFundID()
	}
	sponsor := orion.MustParseAddress(f.Sponsor)
	amount, _ := parseAmount(f.Amount)
	if err := sp.Mint(sponsor, amount); err != nil {
		return errors.Wrapf(err, "fund sponsor %s", f.Sponsor)
	}
	if err := sub.Sponsor(d.Env(sponsor, clock, big.NewInt(1)), id, amount); err != nil {
		return errors.Wrapf(err, "seed %s fund", f.Kind)
	}
	return nil
}
