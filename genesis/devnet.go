// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/orionchain/orion/orion"
)

// Devnet returns a single-node development spec with small, round numbers.
func Devnet() *Spec {
	dev := orion.BytesToAddress([]byte("orion-dev")).String()
	return &Spec{
		Name:       "devnet",
		LaunchTime: 1735689600, // 2025-01-01T00:00:00Z
		Owner:      dev,
		Bridge:     orion.BytesToAddress([]byte("orion-dev-bridge")).String(),
		Treasury:   orion.BytesToAddress([]byte("orion-dev-treasury")).String(),
		Params: map[string]string{
			"min-self-stake":           "1000",
			"base-reward-per-second":   "10",
			"withdrawal-period-epochs": "1",
			"withdrawal-period-time":   "60",
		},
		Accounts: []Account{
			{Address: dev, Balance: "1000000000000000000000000"},
		},
		Validators: []Validator{
			{
				ID:     1,
				Auth:   dev,
				Pubkey: hexutil.Encode([]byte("orion-dev-validator")),
				Stake:  "1000000",
			},
		},
		Funds: []Fund{
			{Kind: "bootstrap", Sponsor: dev, Amount: "1000000"},
		},
	}
}
