// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb stores the notifications emitted by committed calls in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/big"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/xenv"
)

const (
	insertEvent    = "INSERT INTO event(height, eventIndex, txID, caller, address, name, data) VALUES (?, ?, ?, ?, ?, ?, ?)"
	insertTransfer = "INSERT INTO transfer(height, transferIndex, txID, sender, recipient, amount) VALUES (?, ?, ?, ?, ?, ?)"

	countEventsAt    = "SELECT COUNT(*) FROM event WHERE height = ?"
	countTransfersAt = "SELECT COUNT(*) FROM transfer WHERE height = ?"
)

// Transferable is implemented by events that move reward tokens.
type Transferable interface {
	Transfer() (from, to pocm.Address, amount *big.Int)
}

type LogDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a private in-memory database lives as long as its connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	// the single connection is held by write transactions, so the write
	// path is prepared up front
	cache := newStmtCache(db)
	for _, query := range []string{insertEvent, insertTransfer, countEventsAt, countTransfersAt} {
		if _, err := cache.Prepare(query); err != nil {
			cache.Clear()
			return nil, err
		}
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		stmtCache:     cache,
		driverVersion: driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestHeight returns the highest height with stored events.
func (db *LogDB) NewestHeight() (uint64, error) {
	var height sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(height) FROM event").Scan(&height); err != nil {
		return 0, err
	}
	return uint64(height.Int64), nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		filter = &EventFilter{}
	}
	observeFilter("event", filter.Order, len(filter.CriteriaSet))

	var args []any
	stmt := "SELECT height, eventIndex, txID, caller, address, name, data FROM event WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ?"
	}
	var conds []string
	for _, c := range filter.CriteriaSet {
		cond := "1"
		if c.Address != nil {
			args = append(args, c.Address.Bytes())
			cond += " AND address = ?"
		}
		if c.Caller != nil {
			args = append(args, c.Caller.Bytes())
			cond += " AND caller = ?"
		}
		if c.Name != "" {
			args = append(args, c.Name)
			cond += " AND name = ?"
		}
		conds = append(conds, "("+cond+")")
	}
	if len(conds) > 0 {
		stmt += " AND (" + strings.Join(conds, " OR ") + ")"
	}
	stmt += orderBy(filter.Order, "eventIndex")
	stmt, args = appendOptions(stmt, args, filter.Options)

	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		filter = &TransferFilter{}
	}
	observeFilter("transfer", filter.Order, len(filter.CriteriaSet))

	var args []any
	stmt := "SELECT height, transferIndex, txID, sender, recipient, amount FROM transfer WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ?"
	}
	var conds []string
	for _, c := range filter.CriteriaSet {
		cond := "1"
		if c.Sender != nil {
			args = append(args, c.Sender.Bytes())
			cond += " AND sender = ?"
		}
		if c.Recipient != nil {
			args = append(args, c.Recipient.Bytes())
			cond += " AND recipient = ?"
		}
		conds = append(conds, "("+cond+")")
	}
	if len(conds) > 0 {
		stmt += " AND (" + strings.Join(conds, " OR ") + ")"
	}
	stmt += orderBy(filter.Order, "transferIndex")
	stmt, args = appendOptions(stmt, args, filter.Options)

	return db.queryTransfers(ctx, stmt, args...)
}

func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	args = append(args, r.From)
	stmt += " AND height >= ?"
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND height <= ?"
	}
	return stmt, args
}

func orderBy(order Order, index string) string {
	if order == DESC {
		return " ORDER BY height DESC, " + index + " DESC"
	}
	return " ORDER BY height ASC, " + index + " ASC"
}

func appendOptions(stmt string, args []any, opts *Options) (string, []any) {
	if opts == nil {
		return stmt, args
	}
	return stmt + " LIMIT ?, ?", append(args, opts.Offset, opts.Limit)
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev       Event
			txID     []byte
			caller   []byte
			contract []byte
		)
		if err := rows.Scan(&ev.Height, &ev.Index, &txID, &caller, &contract, &ev.Name, &ev.Data); err != nil {
			return nil, err
		}
		ev.TxID = pocm.BytesToBytes32(txID)
		ev.Caller = pocm.BytesToAddress(caller)
		ev.Address = pocm.BytesToAddress(contract)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, query string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			tr        Transfer
			txID      []byte
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(&tr.Height, &tr.Index, &txID, &sender, &recipient, &amount); err != nil {
			return nil, err
		}
		tr.TxID = pocm.BytesToBytes32(txID)
		tr.Sender = pocm.BytesToAddress(sender)
		tr.Recipient = pocm.BytesToAddress(recipient)
		tr.Amount = new(big.Int).SetBytes(amount)
		transfers = append(transfers, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

// Batch accumulates the notifications of the calls committed at one height.
type Batch struct {
	db        *LogDB
	height    uint64
	events    []*Event
	transfers []*Transfer
}

// NewBatch starts a batch at height. Index numbering continues after what is
// already stored for that height.
func (db *LogDB) NewBatch(height uint64) *Batch {
	return &Batch{db: db, height: height}
}

// Insert adds the logs of the call txID made by caller.
func (b *Batch) Insert(txID pocm.Bytes32, caller pocm.Address, logs []*xenv.Log) error {
	for _, l := range logs {
		data, err := json.Marshal(l.Event)
		if err != nil {
			return errors.Wrapf(err, "encode %s event", l.Event.EventName())
		}
		b.events = append(b.events, &Event{
			Height:  b.height,
			TxID:    txID,
			Caller:  caller,
			Address: l.Address,
			Name:    l.Event.EventName(),
			Data:    data,
		})
		if t, ok := l.Event.(Transferable); ok {
			from, to, amount := t.Transfer()
			b.transfers = append(b.transfers, &Transfer{
				Height:    b.height,
				TxID:      txID,
				Sender:    from,
				Recipient: to,
				Amount:    amount,
			})
		}
	}
	return nil
}

// Commit writes the batch in a single sql transaction.
func (b *Batch) Commit() (err error) {
	tx, err := b.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt := func(query string) (*sql.Stmt, error) {
		prepared, err := b.db.stmtCache.Prepare(query)
		if err != nil {
			return nil, err
		}
		return tx.Stmt(prepared), nil
	}

	// indexes continue after the rows already stored at the height
	var base struct{ events, transfers uint32 }
	countEv, err := stmt(countEventsAt)
	if err != nil {
		return err
	}
	if err := countEv.QueryRow(b.height).Scan(&base.events); err != nil {
		return err
	}
	countTr, err := stmt(countTransfersAt)
	if err != nil {
		return err
	}
	if err := countTr.QueryRow(b.height).Scan(&base.transfers); err != nil {
		return err
	}

	evStmt, err := stmt(insertEvent)
	if err != nil {
		return err
	}
	trStmt, err := stmt(insertTransfer)
	if err != nil {
		return err
	}
	for i, ev := range b.events {
		ev.Index = base.events + uint32(i)
		if _, err := evStmt.Exec(ev.Height, ev.Index, ev.TxID.Bytes(), ev.Caller.Bytes(), ev.Address.Bytes(), ev.Name, ev.Data); err != nil {
			return err
		}
	}
	for i, tr := range b.transfers {
		tr.Index = base.transfers + uint32(i)
		if _, err := trStmt.Exec(tr.Height, tr.Index, tr.TxID.Bytes(), tr.Sender.Bytes(), tr.Recipient.Bytes(), tr.Amount.Bytes()); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWrittenCounter().AddWithLabel(int64(len(b.events)), map[string]string{"type": "event"})
	metricWrittenCounter().AddWithLabel(int64(len(b.transfers)), map[string]string{"type": "transfer"})
	return nil
}
