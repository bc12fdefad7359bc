// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/pocm/pocm"
)

// Event is a contract notification stored in db. Data is its JSON encoding.
type Event struct {
	Height  uint64
	Index   uint32
	TxID    pocm.Bytes32
	Caller  pocm.Address
	Address pocm.Address
	Name    string
	Data    []byte
}

// Transfer is a reward token movement stored in db. A zero Sender means
// newly issued tokens.
type Transfer struct {
	Height    uint64
	Index     uint32
	TxID      pocm.Bytes32
	Sender    pocm.Address
	Recipient pocm.Address
	Amount    *big.Int
}

type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type EventCriteria struct {
	Address *pocm.Address
	Caller  *pocm.Address
	Name    string
}

// EventFilter filter
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	TxID        *pocm.Bytes32
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	Sender    *pocm.Address
	Recipient *pocm.Address
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria
	Range       *Range
	TxID        *pocm.Bytes32
	Options     *Options
	Order       Order // default asc
}
