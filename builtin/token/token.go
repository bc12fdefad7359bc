// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package token is the fungible reward token ledger minted by the staking
// contract. It lives in the storage of the contract that owns it.
package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/pocm"
)

var (
	slotMetadata    = pocm.BytesToBytes32([]byte("token-metadata"))
	slotTotalSupply = pocm.BytesToBytes32([]byte("token-supply"))
	slotBalances    = pocm.BytesToBytes32([]byte("token-balances"))
)

// Metadata describes the token.
type Metadata struct {
	Name     string
	Symbol   string
	Decimals uint8
}

// Allocation is an initial grant, in display units.
type Allocation struct {
	Address pocm.Address
	Amount  *big.Int
}

// Transfer is a balance movement. A zero From means newly issued tokens.
type Transfer struct {
	From  pocm.Address
	To    pocm.Address
	Value *big.Int
}

type Token struct {
	sctx        *solidity.Context
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[pocm.Address, *big.Int]
}

func New(sctx *solidity.Context) *Token {
	return &Token{
		sctx:        sctx,
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		balances:    solidity.NewMapping[pocm.Address, *big.Int](sctx, slotBalances),
	}
}

// Initialize records the metadata and issues the initial supply. Each
// allocation receives its amount, except one addressed to the creator, and the
// creator receives whatever the allocations leave.
func (t *Token) Initialize(meta Metadata, creator pocm.Address, initial *big.Int, allocations []Allocation) ([]*Transfer, error) {
	if err := t.sctx.State().EncodeStorage(t.sctx.Address(), slotMetadata, func() ([]byte, error) {
		return rlp.EncodeToBytes(&meta)
	}); err != nil {
		return nil, err
	}

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(meta.Decimals)), nil)
	remaining := new(big.Int).Set(initial)
	var transfers []*Transfer
	for _, a := range allocations {
		if a.Address == creator {
			continue
		}
		remaining.Sub(remaining, a.Amount)
		amount := new(big.Int).Mul(a.Amount, unit)
		if err := t.Credit(a.Address, amount); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{To: a.Address, Value: amount})
	}
	if remaining.Sign() < 0 {
		return nil, errors.Errorf("allocations exceed the initial amount %v", initial)
	}
	amount := new(big.Int).Mul(remaining, unit)
	if err := t.Credit(creator, amount); err != nil {
		return nil, err
	}
	transfers = append(transfers, &Transfer{To: creator, Value: amount})

	if err := t.SetTotalSupply(new(big.Int).Mul(initial, unit)); err != nil {
		return nil, err
	}
	return transfers, nil
}

func (t *Token) Metadata() (*Metadata, error) {
	var meta Metadata
	err := t.sctx.State().DecodeStorage(t.sctx.Address(), slotMetadata, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &meta)
	})
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (t *Token) BalanceOf(addr pocm.Address) (*big.Int, error) {
	return t.balances.Get(addr)
}

// Credit adds amount to the balance of addr. The total supply is left to the caller.
func (t *Token) Credit(addr pocm.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return errors.New("negative credit")
	}
	if addr.IsZero() {
		return errors.New("credit to the zero address")
	}
	bal, err := t.balances.Get(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, bal.Add(bal, amount))
}

// Transfer moves amount between holders.
func (t *Token) Transfer(from, to pocm.Address, amount *big.Int) (*Transfer, error) {
	if amount.Sign() < 0 {
		return nil, errors.New("negative transfer")
	}
	bal, err := t.balances.Get(from)
	if err != nil {
		return nil, err
	}
	if bal.Cmp(amount) < 0 {
		return nil, errors.Errorf("insufficient balance: %v < %v", bal, amount)
	}
	if err := t.balances.Set(from, bal.Sub(bal, amount)); err != nil {
		return nil, err
	}
	if err := t.Credit(to, amount); err != nil {
		return nil, err
	}
	return &Transfer{From: from, To: to, Value: new(big.Int).Set(amount)}, nil
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) SetTotalSupply(supply *big.Int) error {
	return t.totalSupply.Set(supply)
}
