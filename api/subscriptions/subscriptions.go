// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams committed contract calls over websocket.
package subscriptions

import (
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/api/contract"
	"github.com/vechain/pocm/api/restutil"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
)

type Subscriptions struct {
	executor *runtime.Executor
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates the subscription endpoints. An origin of "*" accepts any
// cross origin upgrade.
func New(executor *runtime.Executor, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		executor: executor,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

func (s *Subscriptions) handleSubscribeCalls(w http.ResponseWriter, req *http.Request) error {
	var caller *pocm.Address
	if v := req.URL.Query().Get("caller"); v != "" {
		addr, err := pocm.ParseAddress(v)
		if err != nil {
			return restutil.BadRequest(errors.WithMessage(err, "caller"))
		}
		caller = &addr
	}

	// subscribe first so no call committed after the handshake is missed
	ch := make(chan []*runtime.Output, 16)
	sub := s.executor.SubscribeOutputs(ch)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()

	if err := s.pipe(conn, ch, sub, caller); err != nil {
		logger.Debug("subscription closed", "err", err)
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseInternalServerErr, err.Error()), time.Now().Add(writeWait))
	} else {
		conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	}
	conn.Close()
	return nil
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan []*runtime.Output, sub event.Subscription, caller *pocm.Address) error {
	// the reader only consumes control frames
	closed := make(chan struct{})
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case outputs := <-ch:
			for _, out := range outputs {
				if caller != nil && out.Caller != *caller {
					continue
				}
				result, err := contract.ConvertOutput(out)
				if err != nil {
					return err
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(result); err != nil {
					return nil
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case err := <-sub.Err():
			return err
		case <-closed:
			return nil
		case <-s.done:
			return nil
		}
	}
}

// Close ends every open subscription and waits for them to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/calls").
		Methods(http.MethodGet).
		Name("WS /subscriptions/calls").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeCalls))
}
