// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"encoding/json"
	"math"

	hexmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/pocm"
)

type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

func (r *Range) convert() *logdb.Range {
	if r == nil {
		return nil
	}
	// sqlite integers are signed
	rng := &logdb.Range{From: 0, To: math.MaxInt64}
	if r.From != nil {
		rng.From = min(*r.From, math.MaxInt64)
	}
	if r.To != nil {
		rng.To = min(*r.To, math.MaxInt64)
	}
	return rng
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Address *pocm.Address `json:"address,omitempty"`
	Caller  *pocm.Address `json:"caller,omitempty"`
	Name    string        `json:"name,omitempty"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	TxID        *pocm.Bytes32    `json:"txID"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

type TransferCriteria struct {
	Sender    *pocm.Address `json:"sender,omitempty"`
	Recipient *pocm.Address `json:"recipient,omitempty"`
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria `json:"criteriaSet"`
	Range       *Range              `json:"range"`
	TxID        *pocm.Bytes32       `json:"txID"`
	Options     *Options            `json:"options"`
	Order       logdb.Order         `json:"order"`
}

// LogMeta locates a notification.
type LogMeta struct {
	TxID   pocm.Bytes32 `json:"txID"`
	Height uint64       `json:"height"`
	Index  uint32       `json:"index"`
}

type FilteredEvent struct {
	Address pocm.Address    `json:"address"`
	Caller  pocm.Address    `json:"caller"`
	Name    string          `json:"name"`
	Data    json.RawMessage `json:"data"`
	Meta    LogMeta         `json:"meta"`
}

func convertEvent(e *logdb.Event) *FilteredEvent {
	return &FilteredEvent{
		Address: e.Address,
		Caller:  e.Caller,
		Name:    e.Name,
		Data:    e.Data,
		Meta:    LogMeta{TxID: e.TxID, Height: e.Height, Index: e.Index},
	}
}

type FilteredTransfer struct {
	Sender    pocm.Address             `json:"sender"`
	Recipient pocm.Address             `json:"recipient"`
	Amount    *hexmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                  `json:"meta"`
}

func convertTransfer(t *logdb.Transfer) *FilteredTransfer {
	return &FilteredTransfer{
		Sender:    t.Sender,
		Recipient: t.Recipient,
		Amount:    (*hexmath.HexOrDecimal256)(t.Amount),
		Meta:      LogMeta{TxID: t.TxID, Height: t.Height, Index: t.Index},
	}
}
