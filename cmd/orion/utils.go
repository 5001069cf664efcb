// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"log/slog"
	"os"
	"path/filepath"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/orionchain/orion/builtin/notify"
	"github.com/orionchain/orion/builtin/params"
	"github.com/orionchain/orion/builtin/staking"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/builtin/subsidies"
	"github.com/orionchain/orion/builtin/supply"
	"github.com/orionchain/orion/kv"
	"github.com/orionchain/orion/log"
	"github.com/orionchain/orion/orion"
	"github.com/orionchain/orion/state"
)

func initLogger(ctx *cli.Context) {
	var level slog.Level
	switch ctx.Int(verbosityFlag.Name) {
	case 0:
		level = log.LevelCrit
	case 1:
		level = log.LevelError
	case 2:
		level = log.LevelWarn
	case 3:
		level = log.LevelInfo
	case 4:
		level = log.LevelDebug
	default:
		level = log.LevelTrace
	}
	var lvl slog.LevelVar
	lvl.Set(level)
	log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stderr, &lvl)))
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".orion")
}

func openMainDB(ctx *cli.Context) (kv.Store, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, cli.NewExitError("data-dir is not set", 1)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return kv.OpenLevelDB(filepath.Join(dir, "main.db"), kv.Options{
		CacheSize:              128,
		OpenFilesCacheCapacity: 64,
	})
}

// engines bundles read access to the built-in engines over one state.
type engines struct {
	state     *state.State
	params    *params.Params
	supply    *supply.Supply
	staking   *staking.Staking
	subsidies *subsidies.Subsidies
}

func assembleEngines(store kv.Store) *engines {
	st := state.New(store)
	p := params.New(storage.NewContext(orion.ParamsNamespace, st, nil))
	sp := supply.New(storage.NewContext(orion.SupplyNamespace, st, nil))
	return &engines{
		state:     st,
		params:    p,
		supply:    sp,
		staking:   staking.New(st, p, sp, notify.NewQueue(), nil),
		subsidies: subsidies.New(st, p, sp, nil),
	}
}
