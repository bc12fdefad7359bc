// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/pocm/api"
	"github.com/vechain/pocm/api/contract"
	"github.com/vechain/pocm/api/logs"
	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/token"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
	"github.com/vechain/pocm/state"
)

var (
	contractAddr = pocm.BytesToAddress([]byte("pocm"))
	creator      = pocm.BytesToAddress([]byte("creator"))
	alice        = pocm.BytesToAddress([]byte("alice"))
	bob          = pocm.BytesToAddress([]byte("bob"))

	oneUnit = big.NewInt(1e8)
)

func newServer(t *testing.T) *httptest.Server {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	ldb, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { ldb.Close() })

	executor := runtime.New(state.NewStater(db), ldb, contractAddr)
	require.NoError(t, executor.Fund(map[pocm.Address]*big.Int{alice: big.NewInt(100e8), bob: big.NewInt(100e8)}))
	_, err = executor.Execute(context.Background(), &runtime.Call{
		Method: runtime.MethodCreate,
		Caller: creator,
		Config: &staking.Config{
			Token:          token.Metadata{Name: "Proof of credit mining", Symbol: "POCM", Decimals: 8},
			InitialAmount:  big.NewInt(1000),
			Price:          "1",
			AwardingCycle:  10,
			MinimumDeposit: oneUnit,
			MinimumLocked:  5,
		},
	})
	require.NoError(t, err)

	handler, closeSubs := api.New(executor, ldb, api.Options{
		AllowedOrigins:  "*",
		LogsLimit:       10,
		BatchCallLimit:  3,
		EnableReqLogger: true,
		EnableMetrics:   true,
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(func() {
		closeSubs()
		ts.Close()
	})
	return ts
}

func do(t *testing.T, method, url string, body any) (int, []byte) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func amount(v *math.HexOrDecimal256) string {
	return (*big.Int)(v).String()
}

func call(method string, caller pocm.Address, height uint64) *contract.Call {
	return &contract.Call{Method: method, Caller: caller, Height: height}
}

func TestContractLifecycle(t *testing.T) {
	ts := newServer(t)

	code, data := do(t, http.MethodGet, ts.URL+"/contract", nil)
	require.Equal(t, http.StatusOK, code, string(data))
	summary := decode[contract.Summary](t, data)
	assert.Equal(t, "POCM", summary.Token.Symbol)
	assert.Equal(t, creator, summary.Owner)
	assert.Equal(t, "1", summary.InitialPrice)
	assert.Equal(t, "100000000000", amount(summary.TotalSupply))

	dep := call("deposit", alice, 5)
	dep.Value = (*math.HexOrDecimal256)(oneUnit)
	code, data = do(t, http.MethodPost, ts.URL+"/contract/calls", dep)
	require.Equal(t, http.StatusOK, code, string(data))
	result := decode[contract.CallResult](t, data)
	require.NotNil(t, result.Position)
	assert.Equal(t, uint64(1), result.Position.ID)
	assert.Equal(t, uint64(11), result.Position.UnlockHeight)
	assert.Equal(t, "active", result.Position.Status)
	require.Len(t, result.Events, 1)
	assert.Equal(t, "Deposit", result.Events[0].Name)

	code, data = do(t, http.MethodPost, ts.URL+"/contract/calls", call("claim", alice, 25))
	require.Equal(t, http.StatusOK, code, string(data))
	result = decode[contract.CallResult](t, data)
	require.Len(t, result.Rewards, 1)
	assert.Equal(t, "100000000", amount(result.Rewards[0].Amount))

	code, data = do(t, http.MethodGet, ts.URL+"/contract/deposits/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, code, string(data))
	info := decode[contract.DepositInfo](t, data)
	assert.Equal(t, 1, info.PositionCount)
	assert.Equal(t, "unlockable", info.Positions[0].Status)

	code, data = do(t, http.MethodGet, ts.URL+"/contract/mining/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, code, string(data))
	mining := decode[contract.MiningInfo](t, data)
	assert.Equal(t, "100000000", amount(mining.ReceivedMining))
	require.Len(t, mining.Cursors, 1)
	assert.Equal(t, uint64(3), mining.Cursors[0].NextStartCycle)

	code, data = do(t, http.MethodGet, ts.URL+"/contract/positions/1?height=5", nil)
	require.Equal(t, http.StatusOK, code, string(data))
	assert.Equal(t, "active", decode[contract.Position](t, data).Status)

	code, data = do(t, http.MethodGet, ts.URL+"/contract/checkpoints", nil)
	require.Equal(t, http.StatusOK, code, string(data))
	checkpoints := decode[[]*contract.Checkpoint](t, data)
	require.NotEmpty(t, checkpoints)
	assert.Equal(t, "100000000", amount(checkpoints[len(checkpoints)-1].Stake))

	code, data = do(t, http.MethodGet, ts.URL+"/contract/price?height=25", nil)
	require.Equal(t, http.StatusOK, code, string(data))
	price := decode[contract.Price](t, data)
	assert.Equal(t, uint64(2), price.Cycle)
	assert.Equal(t, "1", price.Price)

	code, data = do(t, http.MethodGet, ts.URL+"/contract/balances/"+alice.String(), nil)
	require.Equal(t, http.StatusOK, code, string(data))
	bal := decode[contract.Balance](t, data)
	assert.Equal(t, "9900000000", amount(bal.Native))
	assert.Equal(t, "100000000", amount(bal.Token))

	withdraw := call("withdraw", alice, 26)
	code, data = do(t, http.MethodPost, ts.URL+"/contract/calls", withdraw)
	require.Equal(t, http.StatusOK, code, string(data))
	result = decode[contract.CallResult](t, data)
	require.NotNil(t, result.Withdrawal)
	assert.Equal(t, "100000000", amount(result.Withdrawal.Principal))
}

func TestCallErrors(t *testing.T) {
	ts := newServer(t)

	dep := call("deposit", alice, 5)
	dep.Value = (*math.HexOrDecimal256)(oneUnit)
	code, _ := do(t, http.MethodPost, ts.URL+"/contract/calls", dep)
	require.Equal(t, http.StatusOK, code)

	tests := []struct {
		name string
		body any
		code int
	}{
		{"locked", call("withdraw", alice, 5), http.StatusConflict},
		{"no deposit", call("claim", bob, 6), http.StatusNotFound},
		{"below minimum", &contract.Call{Method: "deposit", Caller: bob, Height: 6, Value: (*math.HexOrDecimal256)(big.NewInt(1))}, http.StatusBadRequest},
		{"height regression", call("claim", alice, 4), http.StatusBadRequest},
		{"unknown method", call("burn", alice, 6), http.StatusBadRequest},
		{"create", call("create", alice, 6), http.StatusForbidden},
		{"unknown field", map[string]any{"method": "claim", "gas": 1}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, data := do(t, http.MethodPost, ts.URL+"/contract/calls", tt.body)
			assert.Equal(t, tt.code, code, string(data))
		})
	}

	code, _ = do(t, http.MethodGet, ts.URL+"/contract/deposits/0x1234", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = do(t, http.MethodGet, ts.URL+"/contract/mining/"+bob.String(), nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodGet, ts.URL+"/contract/positions/9", nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = do(t, http.MethodGet, ts.URL+"/contract/positions/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBatchCall(t *testing.T) {
	ts := newServer(t)

	dep := call("deposit", alice, 5)
	dep.Value = (*math.HexOrDecimal256)(oneUnit)
	code, data := do(t, http.MethodPost, ts.URL+"/contract/calls/batch", []*contract.Call{
		dep,
		call("withdraw", alice, 5),
		call("claim", alice, 5),
	})
	require.Equal(t, http.StatusOK, code, string(data))
	results := decode[[]*contract.CallResult](t, data)
	require.Len(t, results, 3)
	assert.False(t, results[0].Reverted)
	assert.NotNil(t, results[0].TxID)
	assert.True(t, results[1].Reverted)
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].TxID)
	assert.False(t, results[2].Reverted)

	code, _ = do(t, http.MethodPost, ts.URL+"/contract/calls/batch", []*contract.Call{dep, dep, dep, dep})
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = do(t, http.MethodPost, ts.URL+"/contract/calls/batch", []any{nil})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFilterLogs(t *testing.T) {
	ts := newServer(t)

	dep := call("deposit", alice, 5)
	dep.Value = (*math.HexOrDecimal256)(oneUnit)
	code, _ := do(t, http.MethodPost, ts.URL+"/contract/calls", dep)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, http.MethodPost, ts.URL+"/contract/calls", call("claim", alice, 25))
	require.Equal(t, http.StatusOK, code)

	code, data := do(t, http.MethodPost, ts.URL+"/logs/event", &logs.EventFilter{})
	require.Equal(t, http.StatusOK, code, string(data))
	events := decode[[]*logs.FilteredEvent](t, data)
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"Transfer", "Deposit", "Transfer", "Mining"}, names)

	from := uint64(20)
	code, data = do(t, http.MethodPost, ts.URL+"/logs/event", &logs.EventFilter{
		Range:       &logs.Range{From: &from},
		CriteriaSet: []*logs.EventCriteria{{Name: "Mining"}},
		Order:       "desc",
	})
	require.Equal(t, http.StatusOK, code, string(data))
	events = decode[[]*logs.FilteredEvent](t, data)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(25), events[0].Meta.Height)
	assert.Equal(t, alice, events[0].Caller)

	code, data = do(t, http.MethodPost, ts.URL+"/logs/transfer", &logs.TransferFilter{
		CriteriaSet: []*logs.TransferCriteria{{Recipient: &alice}},
	})
	require.Equal(t, http.StatusOK, code, string(data))
	transfers := decode[[]*logs.FilteredTransfer](t, data)
	require.Len(t, transfers, 1)
	assert.True(t, transfers[0].Sender.IsZero())
	assert.Equal(t, "100000000", amount(transfers[0].Amount))

	code, _ = do(t, http.MethodPost, ts.URL+"/logs/event", &logs.EventFilter{Options: &logs.Options{Limit: 11}})
	assert.Equal(t, http.StatusForbidden, code)

	to := uint64(1)
	code, _ = do(t, http.MethodPost, ts.URL+"/logs/transfer", &logs.TransferFilter{Range: &logs.Range{From: &from, To: &to}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, http.MethodPost, ts.URL+"/logs/transfer", &logs.TransferFilter{Order: "sideways"})
	assert.Equal(t, http.StatusBadRequest, code)
}
