// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contract

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/restutil"
	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/staking/reverts"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
)

type Contract struct {
	executor  *runtime.Executor
	batchSize int
}

// New creates the contract resource. Batched calls are limited to batchSize.
func New(executor *runtime.Executor, batchSize int) *Contract {
	return &Contract{
		executor,
		batchSize,
	}
}

// convertError maps rejected calls to client error statuses.
func convertError(err error) error {
	var rev *reverts.ErrRevert
	if errors.As(err, &rev) {
		switch rev.Kind() {
		case reverts.NotFound:
			return restutil.NotFound(err)
		case reverts.Lock, reverts.ScheduleOverflow:
			return restutil.HTTPError(err, http.StatusConflict)
		default:
			return restutil.BadRequest(err)
		}
	}
	switch {
	case errors.Is(err, staking.ErrNotCreated):
		return restutil.NotFound(err)
	case errors.Is(err, runtime.ErrHeightRegression), errors.Is(err, runtime.ErrUnknownMethod):
		return restutil.BadRequest(err)
	}
	return err
}

func (c *Contract) query(fn func(s *staking.Staking) error) error {
	if err := c.executor.Query(fn); err != nil {
		return convertError(err)
	}
	return nil
}

// height parses the optional height query, defaulting to the last executed height.
func (c *Contract) height(req *http.Request) (uint64, error) {
	if s := req.URL.Query().Get("height"); s != "" {
		h, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, restutil.BadRequest(errors.WithMessage(err, "height"))
		}
		return h, nil
	}
	return c.executor.LastHeight()
}

func parseAddress(req *http.Request) (pocm.Address, error) {
	addr, err := pocm.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return pocm.Address{}, restutil.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (c *Contract) handleGetContract(w http.ResponseWriter, req *http.Request) error {
	last, err := c.executor.LastHeight()
	if err != nil {
		return err
	}
	var result *Summary
	if err := c.query(func(s *staking.Staking) (err error) {
		config := s.Config()
		result = &Summary{
			Address: s.Address(),
			Owner:   s.Owner(),
			Token: Token{
				Name:     config.Token.Name,
				Symbol:   config.Token.Symbol,
				Decimals: config.Token.Decimals,
			},
			CreateHeight:               s.CreateHeight(),
			AwardingCycle:              s.AwardingCycle(),
			RewardHalvingCycle:         s.RewardHalvingCycle(),
			MinimumLocked:              s.MinimumLocked(),
			MinimumDeposit:             hex(s.MinimumDeposit()),
			MaximumDepositAddressCount: s.MaximumDepositAddressCount(),
			LastHeight:                 last,
		}
		price, err := s.InitialPrice()
		if err != nil {
			return err
		}
		result.InitialPrice = price.String()
		total, err := s.TotalDeposit()
		if err != nil {
			return err
		}
		result.TotalDeposit = hex(total)
		if result.TotalDepositAddressCount, err = s.TotalDepositAddressCount(); err != nil {
			return err
		}
		if result.TotalDepositNumber, err = s.TotalDepositNumber(); err != nil {
			return err
		}
		if result.HalvingRounds, err = s.HalvingRounds(); err != nil {
			return err
		}
		minted, err := s.TotalMinted()
		if err != nil {
			return err
		}
		result.TotalMinted = hex(minted)
		supply, err := s.Token().TotalSupply()
		if err != nil {
			return err
		}
		result.TotalSupply = hex(supply)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetPrice(w http.ResponseWriter, req *http.Request) error {
	height, err := c.height(req)
	if err != nil {
		return err
	}
	var result *Price
	if err := c.query(func(s *staking.Staking) error {
		price, err := s.CurrentPrice(height)
		if err != nil {
			return err
		}
		result = &Price{Height: height, Cycle: s.CurrentRewardCycle(height), Price: price.String()}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetCheckpoints(w http.ResponseWriter, _ *http.Request) error {
	var result []*Checkpoint
	if err := c.query(func(s *staking.Staking) error {
		checkpoints, err := s.Checkpoints()
		if err != nil {
			return err
		}
		decimals := int32(s.Config().Token.Decimals)
		result = make([]*Checkpoint, 0, len(checkpoints))
		for _, cp := range checkpoints {
			result = append(result, convertCheckpoint(cp, decimals))
		}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseUint(mux.Vars(req)["id"], 10, 64)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "id"))
	}
	height, err := c.height(req)
	if err != nil {
		return err
	}
	var result *Position
	if err := c.query(func(s *staking.Staking) error {
		pos, err := s.Position(id)
		if err != nil {
			return err
		}
		result = convertPosition(pos, height)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetDeposit(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	height, err := c.height(req)
	if err != nil {
		return err
	}
	var result *DepositInfo
	if err := c.query(func(s *staking.Staking) error {
		info, err := s.DepositInfo(addr)
		if err != nil {
			return err
		}
		result = &DepositInfo{
			Owner:         info.Owner,
			TotalAmount:   hex(info.TotalAmount),
			PositionCount: info.PositionCount(),
			Positions:     convertPositions(info.Positions, height),
		}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetMining(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	var result *MiningInfo
	if err := c.query(func(s *staking.Staking) error {
		info, err := s.MiningInfo(addr)
		if err != nil {
			return err
		}
		result = &MiningInfo{
			Receiver:       info.Receiver,
			TotalMining:    hex(info.TotalMining),
			ReceivedMining: hex(info.ReceivedMining),
			Cursors:        convertCursors(info.Cursors),
		}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	native, err := c.executor.Balance(addr)
	if err != nil {
		return err
	}
	result := &Balance{Native: hex(native)}
	if err := c.query(func(s *staking.Staking) error {
		bal, err := s.Token().BalanceOf(addr)
		if err != nil {
			return err
		}
		result.Token = hex(bal)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleCall(w http.ResponseWriter, req *http.Request) error {
	var call Call
	if err := restutil.ParseJSON(req.Body, &call); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if call.Method == string(runtime.MethodCreate) {
		return restutil.Forbidden(errors.New("contract creation is not allowed"))
	}
	out, err := c.executor.Execute(req.Context(), call.convert())
	if err != nil {
		return convertError(err)
	}
	result, err := ConvertOutput(out)
	if err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (c *Contract) handleBatchCall(w http.ResponseWriter, req *http.Request) error {
	var calls []*Call
	if err := restutil.ParseJSON(req.Body, &calls); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if len(calls) > c.batchSize {
		return restutil.Forbidden(fmt.Errorf("the number of calls exceeds the maximum allowed value of %d", c.batchSize))
	}
	converted := make([]*runtime.Call, 0, len(calls))
	for i, call := range calls {
		if call == nil {
			return restutil.BadRequest(fmt.Errorf("calls[%d]: null not allowed", i))
		}
		if call.Method == string(runtime.MethodCreate) {
			return restutil.Forbidden(fmt.Errorf("calls[%d]: contract creation is not allowed", i))
		}
		converted = append(converted, call.convert())
	}
	outputs, err := c.executor.ExecuteBatch(req.Context(), converted)
	if err != nil {
		return err
	}
	results := make([]*CallResult, 0, len(outputs))
	for _, out := range outputs {
		result, err := ConvertOutput(out)
		if err != nil {
			return err
		}
		results = append(results, result)
	}
	return restutil.WriteJSON(w, results)
}

func (c *Contract) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /contract").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetContract))
	sub.Path("/price").
		Methods(http.MethodGet).
		Name("GET /contract/price").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetPrice))
	sub.Path("/checkpoints").
		Methods(http.MethodGet).
		Name("GET /contract/checkpoints").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetCheckpoints))
	sub.Path("/positions/{id}").
		Methods(http.MethodGet).
		Name("GET /contract/positions/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetPosition))
	sub.Path("/deposits/{address}").
		Methods(http.MethodGet).
		Name("GET /contract/deposits/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetDeposit))
	sub.Path("/mining/{address}").
		Methods(http.MethodGet).
		Name("GET /contract/mining/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetMining))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /contract/balances/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleGetBalance))
	sub.Path("/calls").
		Methods(http.MethodPost).
		Name("POST /contract/calls").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleCall))
	sub.Path("/calls/batch").
		Methods(http.MethodPost).
		Name("POST /contract/calls/batch").
		HandlerFunc(restutil.WrapHandlerFunc(c.handleBatchCall))
}
