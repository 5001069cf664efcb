// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/orionchain/orion/builtin/staking/validation"
	"github.com/orionchain/orion/genesis"
	"github.com/orionchain/orion/metrics"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

func loadSpec(ctx *cli.Context) (*genesis.Spec, error) {
	value := ctx.String(genesisFlag.Name)
	if value == "devnet" {
		return genesis.Devnet(), nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis spec")
	}
	return genesis.ParseSpec(data)
}

func genesisAction(ctx *cli.Context) error {
	initLogger(ctx)

	spec, err := loadSpec(ctx)
	if err != nil {
		return err
	}
	store, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	e := assembleEngines(store)
	if epoch, err := e.staking.CurrentEpoch(); err != nil {
		return err
	} else if epoch != 0 {
		return errors.Errorf("data dir already holds a built state (epoch %d)", epoch)
	}

	st := state.New(store)
	d, err := genesis.Build(st, spec)
	if err != nil {
		return err
	}
	if err := st.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis state")
	}

	messages := d.Notifications()
	logger.Info("genesis state committed",
		"name", spec.Name,
		"validators", len(spec.Validators),
		"notifications", len(messages))
	fmt.Printf("built genesis %q with %d validator(s)\n", spec.Name, len(spec.Validators))
	return nil
}

func inspectValidatorsAction(ctx *cli.Context) error {
	initLogger(ctx)

	store, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	e := assembleEngines(store)

	last, err := e.staking.LastValidatorID()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tAUTH\tSTATUS\tSTAKE\tPUBKEY")
	for id := uint64(1); id <= last; id++ {
		v, err := e.staking.Validator(id)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			id, v.Auth, statusString(v), v.ReceivedStake, hexutil.Encode(v.Pubkey))
	}
	return w.Flush()
}

func inspectEpochAction(ctx *cli.Context) error {
	initLogger(ctx)

	store, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	e := assembleEngines(store)

	current, err := e.staking.CurrentEpoch()
	if err != nil {
		return err
	}
	sealed, err := e.staking.SealedEpoch()
	if err != nil {
		return err
	}
	set, err := e.staking.EpochValidators()
	if err != nil {
		return err
	}
	fmt.Printf("current epoch:  %d\n", current)
	fmt.Printf("sealed epoch:   %d\n", sealed)
	fmt.Printf("active set:     %d validator(s)\n", len(set.IDs))
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tFROZEN STAKE")
	for i, id := range set.IDs {
		fmt.Fprintf(w, "%d\t%s\n", id, set.Stakes[i])
	}
	return w.Flush()
}

func inspectSupplyAction(ctx *cli.Context) error {
	initLogger(ctx)

	store, err := openMainDB(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	e := assembleEngines(store)

	total, err := e.supply.TotalSupply()
	if err != nil {
		return err
	}
	burned, err := e.supply.TotalBurned()
	if err != nil {
		return err
	}
	stakes, err := e.supply.Balance(orion.StakingPoolAddress)
	if err != nil {
		return err
	}
	subsidies, err := e.supply.Balance(orion.SubsidiesPoolAddress)
	if err != nil {
		return err
	}
	unresolved, err := e.staking.UnresolvedTreasuryFees()
	if err != nil {
		return err
	}
	fmt.Printf("total supply:        %s\n", total)
	fmt.Printf("total burned:        %s\n", burned)
	fmt.Printf("staking pool:        %s\n", stakes)
	fmt.Printf("subsidies pool:      %s\n", subsidies)
	fmt.Printf("unresolved treasury: %s\n", unresolved)
	return nil
}

func metricsAction(ctx *cli.Context) error {
	initLogger(ctx)

	metrics.InitializePrometheusMetrics()
	addr := ctx.String(metricsAddrFlag.Name)
	logger.Info("serving metrics", "addr", addr)
	return http.ListenAndServe(addr, metrics.HTTPHandler())
}

func statusString(v *validation.Validator) string {
	if v.Status == 0 {
		return "active"
	}
	var bits []string
	if v.Status&validation.StatusWithdrawn != 0 {
		bits = append(bits, "withdrawn")
	}
	if v.Status&validation.StatusOffline != 0 {
		bits = append(bits, "offline")
	}
	if v.Status&validation.StatusDoubleSign != 0 {
		bits = append(bits, "doublesign")
	}
	return strings.Join(bits, ",")
}
