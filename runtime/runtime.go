// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes contract calls against committed state. Every call
// is atomic: it is either fully applied together with its notifications, or
// leaves no trace.
package runtime

import (
	"context"
	"encoding/binary"
	"io"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// Address keeps the executor bookkeeping in state storage.
	Address    = pocm.BytesToAddress([]byte("runtime"))
	slotHeight = pocm.BytesToBytes32([]byte("height"))
	slotNonce  = pocm.BytesToBytes32([]byte("nonce"))

	ErrHeightRegression = errors.New("height below the last executed call")
	ErrUnknownMethod    = errors.New("unknown method")
)

type Method string

const (
	MethodCreate          Method = "create"
	MethodDeposit         Method = "deposit"
	MethodWithdraw        Method = "withdraw"
	MethodClaim           Method = "claim"
	MethodClaimAsReceiver Method = "claimAsReceiver"
)

// Call is a request to run one contract method.
type Call struct {
	Method Method
	Caller pocm.Address
	Height uint64
	Value  *big.Int // native asset attached, deposit only

	Receiver   *pocm.Address   // deposit, defaults to the caller
	PositionID uint64          // withdraw, 0 withdraws every position
	Config     *staking.Config // create
}

// Output is the result of an applied call.
type Output struct {
	TxID   pocm.Bytes32
	Method Method
	Caller pocm.Address
	Height uint64

	Position   *deposit.Position
	Withdrawal *staking.Withdrawal
	Rewards    []*staking.Reward
	Logs       []*xenv.Log
	Meter      solidity.Meter

	// Err is set when the call was reverted. Only used by ExecuteBatch.
	Err error
}

// Executor serializes calls on the contract at a fixed address.
type Executor struct {
	mu       sync.RWMutex
	stater   *state.Stater
	logDB    *logdb.LogDB
	contract pocm.Address

	outputFeed event.Feed
	scope      event.SubscriptionScope
}

// New creates an executor. logDB is optional.
func New(stater *state.Stater, logDB *logdb.LogDB, contract pocm.Address) *Executor {
	return &Executor{
		stater:   stater,
		logDB:    logDB,
		contract: contract,
	}
}

func (e *Executor) Contract() pocm.Address { return e.contract }

// SubscribeOutputs delivers the applied outputs of every committed batch.
// Reverted calls are not delivered.
func (e *Executor) SubscribeOutputs(ch chan []*Output) event.Subscription {
	return e.scope.Track(e.outputFeed.Subscribe(ch))
}

// Close ends all subscriptions.
func (e *Executor) Close() {
	e.scope.Close()
}

// Execute applies a single call and commits it.
func (e *Executor) Execute(ctx context.Context, call *Call) (*Output, error) {
	outputs, err := e.ExecuteBatch(ctx, []*Call{call})
	if err != nil {
		return nil, err
	}
	if outputs[0].Err != nil {
		return nil, outputs[0].Err
	}
	return outputs[0], nil
}

// ExecuteBatch applies calls in order and commits the successful ones
// together. A reverted call is reported through Output.Err and does not
// affect the others.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []*Call) ([]*Output, error) {
	outputs, err := e.executeBatch(ctx, calls)
	if err != nil {
		return nil, err
	}
	applied := make([]*Output, 0, len(outputs))
	for _, out := range outputs {
		if out.Err == nil {
			applied = append(applied, out)
		}
	}
	if len(applied) > 0 {
		e.outputFeed.Send(applied)
	}
	return outputs, nil
}

func (e *Executor) executeBatch(ctx context.Context, calls []*Call) ([]*Output, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stater.NewState()
	outputs := make([]*Output, 0, len(calls))
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		out, err := e.apply(st, call)
		if err != nil {
			out = &Output{Method: call.Method, Caller: call.Caller, Height: call.Height, Err: err}
		}
		outputs = append(outputs, out)

		metricCalls().AddWithLabel(1, map[string]string{"method": string(call.Method), "outcome": outcome(err)})
		metricCallDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"method": string(call.Method)})
		if err != nil {
			logger.Debug("call reverted", "method", call.Method, "caller", call.Caller, "height", call.Height, "err", err)
		}
	}

	stage, err := e.stater.Commit(st)
	if err != nil {
		return nil, errors.WithMessage(err, "commit state")
	}
	if err := e.writeLogs(outputs); err != nil {
		return nil, errors.WithMessage(err, "write logs")
	}
	logger.Debug("calls committed", "count", len(calls), "changes", stage.Len(), "hash", stage.Hash())
	return outputs, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case reverts.IsRevertErr(err):
		return "revert"
	default:
		return "error"
	}
}

func (e *Executor) apply(st *state.State, call *Call) (*Output, error) {
	rev := st.NewCheckpoint()
	out, err := e.applyCall(st, call)
	if err != nil {
		st.RevertTo(rev)
		return nil, err
	}
	return out, nil
}

func (e *Executor) applyCall(st *state.State, call *Call) (*Output, error) {
	last, err := loadUint64(st, slotHeight)
	if err != nil {
		return nil, err
	}
	if call.Height < last {
		return nil, errors.Wrapf(ErrHeightRegression, "height %d, last %d", call.Height, last)
	}
	nonce, err := loadUint64(st, slotNonce)
	if err != nil {
		return nil, err
	}
	storeUint64(st, slotHeight, call.Height)
	storeUint64(st, slotNonce, nonce+1)

	out := &Output{
		TxID:   e.txID(call, nonce),
		Method: call.Method,
		Caller: call.Caller,
		Height: call.Height,
	}
	env := xenv.New(st,
		&xenv.BlockContext{Number: call.Height, Time: uint64(time.Now().Unix())},
		&xenv.TransactionContext{ID: out.TxID, Origin: call.Caller, Value: call.Value},
		e.contract,
	)

	if call.Method == MethodCreate {
		if call.Config == nil {
			return nil, reverts.New(reverts.Validation, "missing contract config")
		}
		if _, err := staking.Create(env, *call.Config); err != nil {
			return nil, err
		}
		out.Logs = env.Logs()
		return out, nil
	}

	s, err := staking.New(e.contract, st, &out.Meter)
	if err != nil {
		return nil, err
	}
	switch call.Method {
	case MethodDeposit:
		out.Position, err = s.OpenPosition(env, call.Receiver)
	case MethodWithdraw:
		out.Withdrawal, err = s.ClosePosition(env, call.PositionID)
	case MethodClaim:
		out.Rewards, err = s.Claim(env)
	case MethodClaimAsReceiver:
		out.Rewards, err = s.ClaimAsReceiver(env)
	default:
		err = errors.Wrapf(ErrUnknownMethod, "%q", call.Method)
	}
	if err != nil {
		return nil, err
	}
	out.Logs = env.Logs()
	metricStorageSlots().AddWithLabel(int64(out.Meter.Reads), map[string]string{"op": "read"})
	metricStorageSlots().AddWithLabel(int64(out.Meter.Writes), map[string]string{"op": "write"})
	return out, nil
}

func (e *Executor) txID(call *Call, nonce uint64) pocm.Bytes32 {
	return pocm.Blake2bFn(func(w io.Writer) {
		var b [8]byte
		w.Write(e.contract.Bytes())
		w.Write(call.Caller.Bytes())
		w.Write([]byte(call.Method))
		binary.BigEndian.PutUint64(b[:], call.Height)
		w.Write(b[:])
		binary.BigEndian.PutUint64(b[:], nonce)
		w.Write(b[:])
	})
}

func (e *Executor) writeLogs(outputs []*Output) error {
	if e.logDB == nil {
		return nil
	}
	for _, out := range outputs {
		if out.Err != nil || len(out.Logs) == 0 {
			continue
		}
		batch := e.logDB.NewBatch(out.Height)
		if err := batch.Insert(out.TxID, out.Caller, out.Logs); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Query runs fn against the latest committed state. Changes made by fn are
// discarded.
func (e *Executor) Query(fn func(s *staking.Staking) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s, err := staking.New(e.contract, e.stater.NewState(), nil)
	if err != nil {
		return err
	}
	return fn(s)
}

// LastHeight returns the height of the last committed call.
func (e *Executor) LastHeight() (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return loadUint64(e.stater.NewState(), slotHeight)
}

func loadUint64(st *state.State, slot pocm.Bytes32) (uint64, error) {
	v, err := st.GetStorage(Address, slot)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v[24:]), nil
}

func storeUint64(st *state.State, slot pocm.Bytes32, n uint64) {
	var v pocm.Bytes32
	binary.BigEndian.PutUint64(v[24:], n)
	st.SetStorage(Address, slot, v)
}

// Balance returns the committed native asset balance of addr.
func (e *Executor) Balance(addr pocm.Address) (*big.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stater.NewState().GetBalance(addr)
}

// Fund credits native asset outside of any contract call. It is used to seed
// accounts from the creation document.
func (e *Executor) Fund(balances map[pocm.Address]*big.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.stater.NewState()
	for addr, amount := range balances {
		bal, err := st.GetBalance(addr)
		if err != nil {
			return err
		}
		if err := st.SetBalance(addr, bal.Add(bal, amount)); err != nil {
			return err
		}
	}
	_, err := e.stater.Commit(st)
	return err
}
