// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// stmtCache keeps the statements of the write path prepared for the life of
// the db. Statements are bound to a transaction with tx.Stmt.
type stmtCache struct {
	db    *sql.DB
	mu    sync.Mutex
	stmts map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, stmts: make(map[string]*sql.Stmt)}
}

func (sc *stmtCache) Prepare(query string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, ok := sc.stmts[query]; ok {
		return stmt, nil
	}
	stmt, err := sc.db.Prepare(query)
	if err != nil {
		return nil, errors.Wrapf(err, "prepare %q", query)
	}
	sc.stmts[query] = stmt
	return stmt, nil
}

// Clear closes every prepared statement.
func (sc *stmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for query, stmt := range sc.stmts {
		stmt.Close()
		delete(sc.stmts, query)
	}
}
