// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/orionchain/orion/log"
)

var (
	version   string
	gitCommit string
	gitTag    string

	logger = log.WithContext("pkg", "main")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Orion",
		Usage:     "staking and fee-subsidy engine tooling for the Orion network",
		Copyright: "2025 The Orion developers",
		Commands: []cli.Command{
			{
				Name:  "genesis",
				Usage: "build a genesis state from a spec file",
				Flags: []cli.Flag{
					dataDirFlag,
					genesisFlag,
					verbosityFlag,
				},
				Action: genesisAction,
			},
			{
				Name:  "inspect",
				Usage: "inspect a built chain state",
				Subcommands: []cli.Command{
					{
						Name:   "validators",
						Usage:  "list validator records",
						Flags:  []cli.Flag{dataDirFlag, verbosityFlag},
						Action: inspectValidatorsAction,
					},
					{
						Name:   "epoch",
						Usage:  "show epoch counters and the active validator set",
						Flags:  []cli.Flag{dataDirFlag, verbosityFlag},
						Action: inspectEpochAction,
					},
					{
						Name:   "supply",
						Usage:  "show token supply and pool balances",
						Flags:  []cli.Flag{dataDirFlag, verbosityFlag},
						Action: inspectSupplyAction,
					},
				},
			},
			{
				Name:  "metrics",
				Usage: "serve prometheus metrics over http",
				Flags: []cli.Flag{
					metricsAddrFlag,
					verbosityFlag,
				},
				Action: metricsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
