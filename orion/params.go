// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package orion

// Constants of the chain protocol level.
const (
	// MaxValidatorPubkeyLength upper bound accepted for a registered pubkey.
	MaxValidatorPubkeyLength = 128

	// BootstrapNonceLimit transactions with a nonce below this limit are
	// eligible for the bootstrap sponsorship fund.
	BootstrapNonceLimit = 3

	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
)

// Well-known built-in account addresses. They are derived from names so that
// they never collide with regular accounts.
var (
	// StakingPoolAddress holds delegated stake and pending reward payouts.
	StakingPoolAddress = BytesToAddress(Blake2b([]byte("orion.staking-pool")).Bytes()[12:])

	// SubsidiesPoolAddress holds pooled sponsorship fund balances.
	SubsidiesPoolAddress = BytesToAddress(Blake2b([]byte("orion.subsidies-pool")).Bytes()[12:])
)

// Storage namespaces of the built-in engines.
var (
	ParamsNamespace    = BytesToAddress(Blake2b([]byte("orion.params")).Bytes()[12:])
	SupplyNamespace    = BytesToAddress(Blake2b([]byte("orion.supply")).Bytes()[12:])
	StakingNamespace   = BytesToAddress(Blake2b([]byte("orion.staking")).Bytes()[12:])
	SubsidiesNamespace = BytesToAddress(Blake2b([]byte("orion.subsidies")).Bytes()[12:])
)

// Role is the capability under which an operation is invoked. The execution
// environment resolves the caller identity to a role before dispatching into
// the built-in engines, so the engines never inspect an implicit caller.
type Role uint8

const (
	// RoleNone an unprivileged caller.
	RoleNone Role = iota
	// RoleOwner the governance owner, authorized for parameter updates,
	// treasury updates and slashing refund ratio assignment.
	RoleOwner
	// RoleDriver the node bridge sentinel, authorized for epoch sealing,
	// validator deactivation and genesis setup.
	RoleDriver
	// RoleInternal the zero-address internal-transaction sentinel,
	// authorized for sponsorship fee deduction.
	RoleInternal
)

// String implements stringer.
func (r Role) String() string {
	switch r {
	case RoleOwner:
		return "owner"
	case RoleDriver:
		return "driver"
	case RoleInternal:
		return "internal"
	default:
		return "none"
	}
}
