// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/restutil"
	"github.com/vechain/pocm/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

func (l *Logs) checkOptions(opts *Options, rng *Range, order logdb.Order) (*logdb.Options, error) {
	if order != "" && order != logdb.ASC && order != logdb.DESC {
		return nil, restutil.BadRequest(fmt.Errorf("unknown order %q", order))
	}
	if rng != nil && rng.From != nil && rng.To != nil && *rng.From > *rng.To {
		return nil, restutil.BadRequest(errors.New("filter.Range.To must be greater than or equal to filter.Range.From"))
	}
	if opts == nil {
		// one more than the limit, to detect oversized results
		return &logdb.Options{Offset: 0, Limit: l.limit + 1}, nil
	}
	if opts.Limit > l.limit {
		return nil, restutil.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if opts.Offset > math.MaxInt64 {
		return nil, restutil.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64)))
	}
	return &logdb.Options{Offset: opts.Offset, Limit: opts.Limit}, nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	opts, err := l.checkOptions(filter.Options, filter.Range, filter.Order)
	if err != nil {
		return err
	}
	criteria := make([]*logdb.EventCriteria, 0, len(filter.CriteriaSet))
	for i, c := range filter.CriteriaSet {
		if c == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
		criteria = append(criteria, &logdb.EventCriteria{Address: c.Address, Caller: c.Caller, Name: c.Name})
	}

	events, err := l.db.FilterEvents(req.Context(), &logdb.EventFilter{
		CriteriaSet: criteria,
		Range:       filter.Range.convert(),
		TxID:        filter.TxID,
		Options:     opts,
		Order:       filter.Order,
	})
	if err != nil {
		return err
	}
	if uint64(len(events)) > l.limit {
		return restutil.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	result := make([]*FilteredEvent, 0, len(events))
	for _, e := range events {
		result = append(result, convertEvent(e))
	}
	return restutil.WriteJSON(w, result)
}

func (l *Logs) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	var filter TransferFilter
	if err := restutil.ParseJSON(req.Body, &filter); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	opts, err := l.checkOptions(filter.Options, filter.Range, filter.Order)
	if err != nil {
		return err
	}
	criteria := make([]*logdb.TransferCriteria, 0, len(filter.CriteriaSet))
	for i, c := range filter.CriteriaSet {
		if c == nil {
			return restutil.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
		criteria = append(criteria, &logdb.TransferCriteria{Sender: c.Sender, Recipient: c.Recipient})
	}

	transfers, err := l.db.FilterTransfers(req.Context(), &logdb.TransferFilter{
		CriteriaSet: criteria,
		Range:       filter.Range.convert(),
		TxID:        filter.TxID,
		Options:     opts,
		Order:       filter.Order,
	})
	if err != nil {
		return err
	}
	if uint64(len(transfers)) > l.limit {
		return restutil.Forbidden(fmt.Errorf("the number of filtered logs exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	result := make([]*FilteredTransfer, 0, len(transfers))
	for _, t := range transfers {
		result = append(result, convertTransfer(t))
	}
	return restutil.WriteJSON(w, result)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleFilterEvents))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /logs/transfer").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleFilterTransfers))
}
