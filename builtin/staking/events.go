// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"

	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/pocm"
)

// Actions of a DepositEvent.
const (
	ActionDeposit  = "deposit"
	ActionWithdraw = "withdraw"
)

// DepositEvent describes a change of the position set of a depositor.
type DepositEvent struct {
	Action        string              `json:"action"`
	Owner         pocm.Address        `json:"owner"`
	Positions     []*deposit.Position `json:"positions"` // created or destroyed
	Amount        *big.Int            `json:"amount"`
	TotalAmount   *big.Int            `json:"totalAmount"`
	PositionCount int                 `json:"positionCount"`
}

func (*DepositEvent) EventName() string { return "Deposit" }

// MiningEvent describes a reward minted to a receiver.
type MiningEvent struct {
	Receiver       pocm.Address `json:"receiver"`
	Amount         *big.Int     `json:"amount"`
	TotalMining    *big.Int     `json:"totalMining"`
	ReceivedMining *big.Int     `json:"receivedMining"`
}

func (*MiningEvent) EventName() string { return "Mining" }

// TransferEvent is a reward token movement. A zero From means newly issued tokens.
type TransferEvent struct {
	From  pocm.Address `json:"from"`
	To    pocm.Address `json:"to"`
	Value *big.Int     `json:"value"`
}

func (*TransferEvent) EventName() string { return "Transfer" }

func (e *TransferEvent) Transfer() (from, to pocm.Address, amount *big.Int) {
	return e.From, e.To, e.Value
}
