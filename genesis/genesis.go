// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis parses the document that creates a contract and funds the
// accounts of a fresh data directory.
package genesis

import (
	"bytes"
	"context"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/token"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
)

// Document is the contract creation document.
type Document struct {
	Contract     pocm.Address `yaml:"contract"`
	Creator      pocm.Address `yaml:"creator"`
	CreateHeight uint64       `yaml:"createHeight"`

	Token                      Token     `yaml:"token"`
	Price                      string    `yaml:"price"`
	AwardingCycle              uint64    `yaml:"awardingCycle"`
	MinimumDeposit             string    `yaml:"minimumDeposit"` // display units of the native asset
	MinimumLocked              uint64    `yaml:"minimumLocked"`
	RewardHalvingCycle         uint64    `yaml:"rewardHalvingCycle"`
	MaximumDepositAddressCount uint64    `yaml:"maximumDepositAddressCount"`
	Accounts                   []Account `yaml:"accounts"`
}

type Token struct {
	Name          string                `yaml:"name"`
	Symbol        string                `yaml:"symbol"`
	Decimals      uint8                 `yaml:"decimals"`
	InitialAmount *math.HexOrDecimal256 `yaml:"initialAmount"` // display units
	Allocations   []Allocation          `yaml:"allocations"`
}

type Allocation struct {
	Address pocm.Address          `yaml:"address"`
	Amount  *math.HexOrDecimal256 `yaml:"amount"` // display units
}

// Account is a native asset balance credited before the contract is created.
type Account struct {
	Address pocm.Address `yaml:"address"`
	Balance string       `yaml:"balance"` // display units
}

// Parse decodes a document. Unknown fields are rejected.
func Parse(data []byte) (*Document, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if doc.Contract.IsZero() {
		return nil, errors.New("contract address required")
	}
	if doc.Creator.IsZero() {
		return nil, errors.New("creator address required")
	}
	return &doc, nil
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Config converts the document into contract creation parameters.
func (d *Document) Config() (staking.Config, error) {
	minimum, err := fixedpoint.Parse(d.MinimumDeposit)
	if err != nil {
		return staking.Config{}, errors.WithMessage(err, "minimumDeposit")
	}
	config := staking.Config{
		Token: token.Metadata{
			Name:     d.Token.Name,
			Symbol:   d.Token.Symbol,
			Decimals: d.Token.Decimals,
		},
		InitialAmount:      bigOf(d.Token.InitialAmount),
		Price:              d.Price,
		AwardingCycle:      d.AwardingCycle,
		MinimumDeposit:     fixedpoint.ToBase(minimum, pocm.AssetDecimals),
		MinimumLocked:      d.MinimumLocked,
		RewardHalvingCycle: d.RewardHalvingCycle,
		MaxDepositors:      d.MaximumDepositAddressCount,
	}
	for _, a := range d.Token.Allocations {
		config.Allocations = append(config.Allocations, token.Allocation{
			Address: a.Address,
			Amount:  bigOf(a.Amount),
		})
	}
	return config, nil
}

// Balances returns the native asset balances in base units.
func (d *Document) Balances() (map[pocm.Address]*big.Int, error) {
	balances := make(map[pocm.Address]*big.Int, len(d.Accounts))
	for _, acc := range d.Accounts {
		amount, err := fixedpoint.Parse(acc.Balance)
		if err != nil {
			return nil, errors.WithMessagef(err, "balance of %v", acc.Address)
		}
		if amount.IsNegative() {
			return nil, errors.Errorf("negative balance of %v", acc.Address)
		}
		if prev, ok := balances[acc.Address]; ok {
			prev.Add(prev, fixedpoint.ToBase(amount, pocm.AssetDecimals))
			continue
		}
		balances[acc.Address] = fixedpoint.ToBase(amount, pocm.AssetDecimals)
	}
	return balances, nil
}

// Apply funds the accounts and creates the contract through the executor.
func (d *Document) Apply(ctx context.Context, executor *runtime.Executor) error {
	if executor.Contract() != d.Contract {
		return errors.Errorf("executor bound to %v, document creates %v", executor.Contract(), d.Contract)
	}
	config, err := d.Config()
	if err != nil {
		return err
	}
	balances, err := d.Balances()
	if err != nil {
		return err
	}
	if err := executor.Fund(balances); err != nil {
		return errors.WithMessage(err, "fund accounts")
	}
	_, err = executor.Execute(ctx, &runtime.Call{
		Method: runtime.MethodCreate,
		Caller: d.Creator,
		Height: d.CreateHeight,
		Config: &config,
	})
	return err
}

func bigOf(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set((*big.Int)(v))
}
