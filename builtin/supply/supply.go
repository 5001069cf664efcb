// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package supply implements the native token-supply accounting: account
// balances, tracked total supply and the burn sink. Reward payouts,
// withdrawal payouts and fund withdrawals all move value through it as push
// payments.
package supply

import (
	"math/big"

	"github.com/orionchain/orion/builtin/reverts"
	"github.com/orionchain/orion/builtin/storage"
	"github.com/orionchain/orion/orion"
)

var (
	totalSupplyKey = orion.BytesToBytes32([]byte("token-supply"))
	totalBurnedKey = orion.BytesToBytes32([]byte("total-burned"))

	errInsufficientBalance = reverts.New("insufficient balance")
)

type addrKey orion.Address

func (k addrKey) Bytes() []byte { return orion.Address(k).Bytes() }

// Supply binds the token ledger to state.
type Supply struct {
	balances    *storage.Mapping[addrKey, *big.Int]
	totalSupply *storage.Uint256
	totalBurned *storage.Uint256
}

// New creates the supply ledger binder.
func New(ctx *storage.Context) *Supply {
	return &Supply{
		balances:    storage.NewMapping[addrKey, *big.Int](ctx, orion.BytesToBytes32([]byte("balances"))),
		totalSupply: storage.NewUint256(ctx, totalSupplyKey),
		totalBurned: storage.NewUint256(ctx, totalBurnedKey),
	}
}

// Balance returns the token balance of addr.
func (s *Supply) Balance(addr orion.Address) (*big.Int, error) {
	return s.balances.Get(addrKey(addr))
}

// TotalSupply returns the tracked total supply net of burns.
func (s *Supply) TotalSupply() (*big.Int, error) {
	total, err := s.totalSupply.Get()
	if err != nil {
		return nil, err
	}
	burned, err := s.totalBurned.Get()
	if err != nil {
		return nil, err
	}
	return total.Sub(total, burned), nil
}

// TotalBurned returns the cumulative burned amount.
func (s *Supply) TotalBurned() (*big.Int, error) {
	return s.totalBurned.Get()
}

// Mint credits addr and grows the total supply.
func (s *Supply) Mint(addr orion.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.add(addr, amount); err != nil {
		return err
	}
	return s.totalSupply.Add(amount)
}

// Transfer moves amount from one account to another. It fails when the
// source balance is insufficient.
func (s *Supply) Transfer(from, to orion.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.sub(from, amount); err != nil {
		return err
	}
	return s.add(to, amount)
}

// Burn destroys amount from addr's balance.
func (s *Supply) Burn(addr orion.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	if err := s.sub(addr, amount); err != nil {
		return err
	}
	return s.totalBurned.Add(amount)
}

// NoteBurned records amount as burned without touching any balance. Used for
// epoch fees and rounding dust that never sat in an account.
func (s *Supply) NoteBurned(amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	return s.totalBurned.Add(amount)
}

func (s *Supply) add(addr orion.Address, amount *big.Int) error {
	bal, err := s.balances.Get(addrKey(addr))
	if err != nil {
		return err
	}
	existed := bal.Sign() != 0
	bal.Add(bal, amount)
	return s.balances.Set(addrKey(addr), bal, !existed)
}

func (s *Supply) sub(addr orion.Address, amount *big.Int) error {
	bal, err := s.balances.Get(addrKey(addr))
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errInsufficientBalance
	}
	bal.Sub(bal, amount)
	return s.balances.Set(addrKey(addr), bal, false)
}
