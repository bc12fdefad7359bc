// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pocm/api"
	"github.com/vechain/pocm/metrics"
)

const shutdownTimeout = 5 * time.Second

func serveAction(ctx *cli.Context) error {
	defer func() { logger.Info("exited") }()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	inst, err := loadInstance(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	handler, closeSubs := api.New(inst.executor, inst.logDB, api.Options{
		AllowedOrigins:  ctx.String(apiCorsFlag.Name),
		LogsLimit:       ctx.Uint64(apiLogsLimitFlag.Name),
		BatchCallLimit:  ctx.Int(apiBatchLimitFlag.Name),
		EnableReqLogger: ctx.Bool(enableAPILogsFlag.Name),
		EnableMetrics:   ctx.Bool(enableMetricsFlag.Name),
	})
	defer closeSubs()

	group, gctx := errgroup.WithContext(handleExitSignal())
	servers := []*http.Server{}

	serve := func(name, addr string, handler http.Handler) error {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrapf(err, "listen %s addr [%v]", name, addr)
		}
		srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second}
		servers = append(servers, srv)
		logger.Info("serving "+name, "url", "http://"+listener.Addr().String()+"/")
		group.Go(func() error {
			if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		return nil
	}

	if err := serve("API", ctx.String(apiAddrFlag.Name), handler); err != nil {
		return err
	}
	if ctx.Bool(enableMetricsFlag.Name) {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler())
		if err := serve("metrics", ctx.String(metricsAddrFlag.Name), mux); err != nil {
			shutdown(servers)
			return err
		}
	}

	group.Go(func() error {
		<-gctx.Done()
		shutdown(servers)
		return nil
	})
	return group.Wait()
}

func shutdown(servers []*http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("server shutdown", "err", err)
		}
	}
}
