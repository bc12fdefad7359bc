// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/pborman/uuid"

	"github.com/vechain/pocm/log"
)

// RequestLoggerHandler logs every request together with its body. Each
// request is tagged with an id echoed in the X-Request-Id response header.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var bodyBytes []byte
		if r.Body != nil {
			var err error
			bodyBytes, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Warn("unexpected body read error", "err", err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}

		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New()
		}
		w.Header().Set("X-Request-Id", reqID)

		start := time.Now()
		handler.ServeHTTP(w, r)

		logger.Info("API Request",
			"id", reqID,
			"durationMs", time.Since(start).Milliseconds(),
			"uri", r.URL.String(),
			"method", r.Method,
			"body", string(bodyBytes),
		)
	})
}
