// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subsidies

import (
	"bytes"
	"math/big"

	"github.com/orionchain/orion/orion"
)

// erc20ApproveSelector is the 4-byte selector of approve(address,uint256).
var erc20ApproveSelector = []byte{0x09, 0x5e, 0xa7, 0xb3}

// erc20ApproveDataLen is selector plus two 32-byte arguments.
const erc20ApproveDataLen = 4 + 32 + 32

// TokenReader answers read-only token queries during fund classification.
// The second return reports whether the query could be answered at all; a
// failed query makes the candidate ineligible, it never fails selection.
type TokenReader interface {
	Allowance(token, owner, spender orion.Address) (*big.Int, bool)
	BalanceOf(token, owner orion.Address) (*big.Int, bool)
}

// Fund identifier derivations. Identifiers are keccak hashes of a rule tag
// and the rule's inputs, so they can never collide with the reserved zero
// identifier.

// AccountOperationFundID identifies a fund covering one sender calling one
// method on one contract.
func AccountOperationFundID(from, to orion.Address, selector []byte) orion.Bytes32 {
	return orion.Keccak256([]byte("ao"), from.Bytes(), to.Bytes(), selector)
}

// ApprovalFundID identifies a fund covering first-time ERC20 approvals for
// a spender.
func ApprovalFundID(token, spender orion.Address) orion.Bytes32 {
	return orion.Keccak256([]byte("approval"), token.Bytes(), spender.Bytes())
}

// OperationFundID identifies a fund covering one method on one contract.
func OperationFundID(to orion.Address, selector []byte) orion.Bytes32 {
	return orion.Keccak256([]byte("o"), to.Bytes(), selector)
}

// BootstrapFundID identifies the fund covering a fresh account's first
// transactions.
func BootstrapFundID() orion.Bytes32 {
	return orion.Keccak256([]byte("b"))
}

// ContractFundID identifies a fund covering all calls to one contract.
func ContractFundID(to orion.Address) orion.Bytes32 {
	return orion.Keccak256([]byte("c"), to.Bytes())
}

// AccountFundID identifies a fund covering all transactions of one sender.
func AccountFundID(from orion.Address) orion.Bytes32 {
	return orion.Keccak256([]byte("a"), from.Bytes())
}

// ChooseFund classifies a pending transaction against the ledger and
// returns the first matching fund able to cover fee. Candidates are tried
// in a strict precedence order: account+operation, first-time approval,
// operation, bootstrap, contract, account. Returns the zero identifier
// when no fund matches.
func (s *Subsidies) ChooseFund(reader TokenReader, from, to orion.Address, nonce uint64, callData []byte, fee *big.Int) (orion.Bytes32, error) {
	var candidates []orion.Bytes32

	hasSelector := len(callData) >= 4 && !to.IsZero()
	if hasSelector {
		candidates = append(candidates, AccountOperationFundID(from, to, callData[:4]))
	}
	if spender, ok := s.approvalSpender(reader, from, to, callData); ok {
		candidates = append(candidates, ApprovalFundID(to, spender))
	}
	if hasSelector {
		candidates = append(candidates, OperationFundID(to, callData[:4]))
	}
	if nonce < orion.BootstrapNonceLimit {
		candidates = append(candidates, BootstrapFundID())
	}
	if !to.IsZero() {
		candidates = append(candidates, ContractFundID(to))
	}
	candidates = append(candidates, AccountFundID(from))

	for _, id := range candidates {
		available, err := s.AvailableFunds(id)
		if err != nil {
			return orion.Bytes32{}, err
		}
		if available.Cmp(fee) >= 0 {
			return id, nil
		}
	}
	return orion.Bytes32{}, nil
}

// approvalSpender decides whether the call is a first-time ERC20 approval
// eligible for an approval fund: an exact approve(address,uint256) call
// with a non-zero value, from a holder with a non-zero balance and a
// currently zero allowance for that spender.
func (s *Subsidies) approvalSpender(reader TokenReader, from, to orion.Address, callData []byte) (orion.Address, bool) {
	if reader == nil || to.IsZero() || len(callData) != erc20ApproveDataLen {
		return orion.Address{}, false
	}
	if !bytes.Equal(callData[:4], erc20ApproveSelector) {
		return orion.Address{}, false
	}
	value := new(big.Int).SetBytes(callData[36:68])
	if value.Sign() == 0 {
		return orion.Address{}, false
	}
	spender := orion.BytesToAddress(callData[16:36])

	allowance, ok := reader.Allowance(to, from, spender)
	if !ok || allowance.Sign() != 0 {
		return orion.Address{}, false
	}
	balance, ok := reader.BalanceOf(to, from)
	if !ok || balance.Sign() == 0 {
		return orion.Address{}, false
	}
	return spender, true
}
