// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package params

import (
	"math/big"

	"github.com/orionchain/orion/builtin/fixpoint"
	"github.com/orionchain/orion/orion"
)

// Governance parameter keys.
var (
	// KeyBaseRewardPerSecond base reward tokens accrued per second of epoch
	// duration, split across the validator set by weight.
	KeyBaseRewardPerSecond = orion.BytesToBytes32([]byte("base-reward-per-second"))

	// KeyValidatorCommission commission rate a validator takes from its
	// delegators' rewards, in fixed-point units.
	KeyValidatorCommission = orion.BytesToBytes32([]byte("validator-commission"))

	// KeyBurntFeeShare share of epoch tx fees burned at sealing.
	KeyBurntFeeShare = orion.BytesToBytes32([]byte("burnt-fee-share"))

	// KeyTreasuryFeeShare share of epoch tx fees pushed to the treasury.
	KeyTreasuryFeeShare = orion.BytesToBytes32([]byte("treasury-fee-share"))

	// KeyMinSelfStake minimum self-stake to create a validator.
	KeyMinSelfStake = orion.BytesToBytes32([]byte("min-self-stake"))

	// KeyWithdrawalPeriodEpochs epochs that must elapse before a withdrawal
	// request unlocks.
	KeyWithdrawalPeriodEpochs = orion.BytesToBytes32([]byte("withdrawal-period-epochs"))

	// KeyWithdrawalPeriodTime seconds that must elapse before a withdrawal
	// request unlocks.
	KeyWithdrawalPeriodTime = orion.BytesToBytes32([]byte("withdrawal-period-time"))

	// KeyOfflinePenaltyThresholdBlocks offline blocks beyond which a
	// validator is deactivated at sealing.
	KeyOfflinePenaltyThresholdBlocks = orion.BytesToBytes32([]byte("offline-penalty-threshold-blocks"))

	// KeyOfflinePenaltyThresholdTime offline seconds beyond which a
	// validator is deactivated at sealing.
	KeyOfflinePenaltyThresholdTime = orion.BytesToBytes32([]byte("offline-penalty-threshold-time"))

	// KeyUptimeWindowSize number of sealed epochs in the rolling uptime window.
	KeyUptimeWindowSize = orion.BytesToBytes32([]byte("uptime-window-size"))

	// KeyExtraRewardBurnRatio fraction of an extra reward burned when
	// distribution is requested with burning enabled.
	KeyExtraRewardBurnRatio = orion.BytesToBytes32([]byte("extra-reward-burn-ratio"))

	// KeyTreasuryAddress recipient of the treasury fee share.
	KeyTreasuryAddress = orion.BytesToBytes32([]byte("treasury-address"))

	// Gas budgets for subsidized execution.
	KeyFundClassificationGas = orion.BytesToBytes32([]byte("fund-classification-gas"))
	KeyFundDeductionGas      = orion.BytesToBytes32([]byte("fund-deduction-gas"))
	KeyFundFixedOverheadGas  = orion.BytesToBytes32([]byte("fund-fixed-overhead-gas"))
)

func percent(n int64) *big.Int {
	r := new(big.Int).Mul(fixpoint.Unit(), big.NewInt(n))
	return r.Div(r, big.NewInt(100))
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), fixpoint.Unit())
}

// defaults apply when no override has been stored.
var defaults = map[orion.Bytes32]*big.Int{
	KeyBaseRewardPerSecond:           new(big.Int).Mul(big.NewInt(26), new(big.Int).Div(fixpoint.Unit(), big.NewInt(10))),
	KeyValidatorCommission:           percent(15),
	KeyBurntFeeShare:                 percent(20),
	KeyTreasuryFeeShare:              percent(10),
	KeyMinSelfStake:                  tokens(500_000),
	KeyWithdrawalPeriodEpochs:        big.NewInt(3),
	KeyWithdrawalPeriodTime:          big.NewInt(60 * 60 * 24 * 7),
	KeyOfflinePenaltyThresholdBlocks: big.NewInt(1000),
	KeyOfflinePenaltyThresholdTime:   big.NewInt(60 * 60 * 24 * 3),
	KeyUptimeWindowSize:              big.NewInt(10),
	KeyExtraRewardBurnRatio:          percent(20),
	KeyFundClassificationGas:         big.NewInt(300_000),
	KeyFundDeductionGas:              big.NewInt(150_000),
	KeyFundFixedOverheadGas:          big.NewInt(21_000),
}
