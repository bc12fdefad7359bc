// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/staking/cycle"
	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/mining"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
)

type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Summary describes the contract and its aggregates.
type Summary struct {
	Address                    pocm.Address          `json:"address"`
	Owner                      pocm.Address          `json:"owner"`
	Token                      Token                 `json:"token"`
	CreateHeight               uint64                `json:"createHeight"`
	AwardingCycle              uint64                `json:"awardingCycle"`
	RewardHalvingCycle         uint64                `json:"rewardHalvingCycle"`
	MinimumLocked              uint64                `json:"minimumLocked"`
	MinimumDeposit             *math.HexOrDecimal256 `json:"minimumDeposit"`
	MaximumDepositAddressCount uint64                `json:"maximumDepositAddressCount"`
	InitialPrice               string                `json:"initialPrice"`
	TotalDeposit               *math.HexOrDecimal256 `json:"totalDeposit"`
	TotalDepositAddressCount   uint64                `json:"totalDepositAddressCount"`
	TotalDepositNumber         uint64                `json:"totalDepositNumber"`
	HalvingRounds              uint64                `json:"halvingRounds"`
	TotalMinted                *math.HexOrDecimal256 `json:"totalMinted"`
	TotalSupply                *math.HexOrDecimal256 `json:"totalSupply"`
	LastHeight                 uint64                `json:"lastHeight"`
}

type Price struct {
	Height uint64 `json:"height"`
	Cycle  uint64 `json:"cycle"`
	Price  string `json:"price"`
}

type Checkpoint struct {
	Cycle    uint64                `json:"cycle"`
	Span     uint64                `json:"span"`
	Stake    *math.HexOrDecimal256 `json:"stake"`
	Price    string                `json:"price"`
	UnitRate string                `json:"unitRate"`
}

func convertCheckpoint(c *cycle.Checkpoint, decimals int32) *Checkpoint {
	return &Checkpoint{
		Cycle:    c.Cycle,
		Span:     c.Span,
		Stake:    hex(c.Stake),
		Price:    fixedpoint.FromScaled(c.Price, decimals).String(),
		UnitRate: c.UnitRate(decimals).String(),
	}
}

type Position struct {
	ID           uint64                `json:"id"`
	Owner        pocm.Address          `json:"owner"`
	Receiver     pocm.Address          `json:"receiver"`
	Amount       *math.HexOrDecimal256 `json:"amount"`
	OriginHeight uint64                `json:"originHeight"`
	UnlockHeight uint64                `json:"unlockHeight"`
	Status       string                `json:"status"`
}

func convertPosition(p *deposit.Position, height uint64) *Position {
	return &Position{
		ID:           p.ID,
		Owner:        p.Owner,
		Receiver:     p.Receiver,
		Amount:       hex(p.Amount),
		OriginHeight: p.OriginHeight,
		UnlockHeight: p.UnlockHeight,
		Status:       p.Status(height).String(),
	}
}

func convertPositions(ps []*deposit.Position, height uint64) []*Position {
	out := make([]*Position, 0, len(ps))
	for _, p := range ps {
		out = append(out, convertPosition(p, height))
	}
	return out
}

type DepositInfo struct {
	Owner         pocm.Address          `json:"owner"`
	TotalAmount   *math.HexOrDecimal256 `json:"totalAmount"`
	PositionCount int                   `json:"positionCount"`
	Positions     []*Position           `json:"positions"`
}

type Cursor struct {
	ID             uint64                `json:"id"`
	Depositor      pocm.Address          `json:"depositor"`
	NextStartCycle uint64                `json:"nextStartCycle"`
	MiningAmount   *math.HexOrDecimal256 `json:"miningAmount"`
	MiningCount    uint64                `json:"miningCount"`
}

type MiningInfo struct {
	Receiver       pocm.Address          `json:"receiver"`
	TotalMining    *math.HexOrDecimal256 `json:"totalMining"`
	ReceivedMining *math.HexOrDecimal256 `json:"receivedMining"`
	Cursors        []*Cursor             `json:"cursors"`
}

func convertCursors(cs []*mining.Cursor) []*Cursor {
	out := make([]*Cursor, 0, len(cs))
	for _, c := range cs {
		out = append(out, &Cursor{
			ID:             c.ID,
			Depositor:      c.Depositor,
			NextStartCycle: c.NextStartCycle,
			MiningAmount:   hex(c.MiningAmount),
			MiningCount:    c.MiningCount,
		})
	}
	return out
}

type Balance struct {
	Native *math.HexOrDecimal256 `json:"native"`
	Token  *math.HexOrDecimal256 `json:"token"`
}

// Call is a request to run a contract method.
type Call struct {
	Method     string                `json:"method"`
	Caller     pocm.Address          `json:"caller"`
	Height     uint64                `json:"height"`
	Value      *math.HexOrDecimal256 `json:"value,omitempty"`
	Receiver   *pocm.Address         `json:"receiver,omitempty"`
	PositionID uint64                `json:"positionId,omitempty"`
}

func (c *Call) convert() *runtime.Call {
	call := &runtime.Call{
		Method:     runtime.Method(c.Method),
		Caller:     c.Caller,
		Height:     c.Height,
		Receiver:   c.Receiver,
		PositionID: c.PositionID,
	}
	if c.Value != nil {
		call.Value = (*big.Int)(c.Value)
	}
	return call
}

type Reward struct {
	Receiver pocm.Address          `json:"receiver"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
}

type Withdrawal struct {
	Positions []*Position           `json:"positions"`
	Principal *math.HexOrDecimal256 `json:"principal"`
}

type Event struct {
	Address pocm.Address    `json:"address"`
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
}

type Storage struct {
	Reads  uint64 `json:"reads"`
	Writes uint64 `json:"writes"`
}

// CallResult is the outcome of a call. Reverted calls only carry the error.
type CallResult struct {
	TxID       *pocm.Bytes32 `json:"txID,omitempty"`
	Method     string        `json:"method"`
	Caller     pocm.Address  `json:"caller"`
	Height     uint64        `json:"height"`
	Position   *Position     `json:"position,omitempty"`
	Withdrawal *Withdrawal   `json:"withdrawal,omitempty"`
	Rewards    []*Reward     `json:"rewards,omitempty"`
	Events     []*Event      `json:"events,omitempty"`
	Storage    *Storage      `json:"storage,omitempty"`
	Reverted   bool          `json:"reverted"`
	Error      string        `json:"error,omitempty"`
}

// ConvertOutput renders the result of an executed call.
func ConvertOutput(out *runtime.Output) (*CallResult, error) {
	result := &CallResult{
		Method: string(out.Method),
		Caller: out.Caller,
		Height: out.Height,
	}
	if out.Err != nil {
		result.Reverted = true
		result.Error = out.Err.Error()
		return result, nil
	}
	txID := out.TxID
	result.TxID = &txID
	result.Storage = &Storage{Reads: out.Meter.Reads, Writes: out.Meter.Writes}
	if out.Position != nil {
		result.Position = convertPosition(out.Position, out.Height)
	}
	rewards := out.Rewards
	if out.Withdrawal != nil {
		result.Withdrawal = &Withdrawal{
			Positions: convertPositions(out.Withdrawal.Positions, out.Height),
			Principal: hex(out.Withdrawal.Principal),
		}
		rewards = out.Withdrawal.Rewards
	}
	result.Rewards = convertRewards(rewards)
	for _, l := range out.Logs {
		data, err := json.Marshal(l.Event)
		if err != nil {
			return nil, err
		}
		result.Events = append(result.Events, &Event{Address: l.Address, Name: l.Event.EventName(), Data: data})
	}
	return result, nil
}

func convertRewards(rs []*staking.Reward) []*Reward {
	if len(rs) == 0 {
		return nil
	}
	out := make([]*Reward, 0, len(rs))
	for _, r := range rs {
		out = append(out, &Reward{Receiver: r.Receiver, Amount: hex(r.Amount)})
	}
	return out
}

func hex(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		v = new(big.Int)
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}
