// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api serves the contract over HTTP.
package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/pocm/api/contract"
	"github.com/vechain/pocm/api/logs"
	"github.com/vechain/pocm/api/subscriptions"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	LogsLimit       uint64
	BatchCallLimit  int
	EnableReqLogger bool
	EnableMetrics   bool
}

// New return api router and a function closing the websocket subscriptions.
// logDB is optional, log filters are not served without it.
func New(executor *runtime.Executor, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	contract.New(executor, opts.BatchCallLimit).
		Mount(router, "/contract")
	if logDB != nil {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
	}
	subs := subscriptions.New(executor, origins)
	subs.Mount(router, "/subscriptions")

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-request-id"}),
		handlers.ExposedHeaders([]string{"x-request-id"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}
	return handler.ServeHTTP, subs.Close // subscriptions hold hijacked conns, which need to be closed
}
