// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

// BlockContext block context.
type BlockContext struct {
	Number uint64
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     pocm.Bytes32
	Origin pocm.Address
	Value  *big.Int // native asset attached to the call
}

// Event is a notification emitted by a contract.
type Event interface {
	EventName() string
}

// Log is an emitted event tagged with its emitter.
type Log struct {
	Address pocm.Address
	Event   Event
}

// Environment an env to execute a contract method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	contract pocm.Address
	logs     []*Log
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	contract pocm.Address,
) *Environment {
	if txCtx.Value == nil {
		txCtx.Value = new(big.Int)
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		contract: contract,
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Height() uint64                          { return env.blockCtx.Number }
func (env *Environment) Caller() pocm.Address                    { return env.txCtx.Origin }
func (env *Environment) To() pocm.Address                        { return env.contract }

// Value returns a copy of the attached native asset amount.
func (env *Environment) Value() *big.Int {
	return new(big.Int).Set(env.txCtx.Value)
}

// Receive moves the attached value from the caller to the contract.
func (env *Environment) Receive() error {
	return env.move(env.txCtx.Origin, env.contract, env.txCtx.Value)
}

// TransferTo pays amount of native asset from the contract to addr.
func (env *Environment) TransferTo(addr pocm.Address, amount *big.Int) error {
	return env.move(env.contract, addr, amount)
}

func (env *Environment) move(from, to pocm.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	bal, err := env.state.GetBalance(from)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return errors.Errorf("insufficient balance of %v: %v < %v", from, bal, amount)
	}
	if err := env.state.SetBalance(from, new(big.Int).Sub(bal, amount)); err != nil {
		return err
	}
	dst, err := env.state.GetBalance(to)
	if err != nil {
		return err
	}
	return env.state.SetBalance(to, dst.Add(dst, amount))
}

// Emit records an event of the contract.
func (env *Environment) Emit(ev Event) {
	env.logs = append(env.logs, &Log{Address: env.contract, Event: ev})
}

// Logs returns the events emitted so far.
func (env *Environment) Logs() []*Log {
	return env.logs
}
