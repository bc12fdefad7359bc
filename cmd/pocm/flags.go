// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for contract state and log databases",
	}
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to the contract creation document (yaml)",
	}
	devFlag = cli.BoolFlag{
		Name:  "dev",
		Usage: "create the contract from the built-in development document",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "caller address",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "native asset to lock, in display units",
	}
	receiverFlag = cli.StringFlag{
		Name:  "receiver",
		Usage: "address receiving the reward of the position, defaults to the caller",
	}
	positionFlag = cli.Uint64Flag{
		Name:  "id",
		Usage: "position to withdraw, 0 withdraws every position",
	}
	heightFlag = cli.Uint64Flag{
		Name:  "height",
		Usage: "height of the call, defaults to the height of the last call",
	}
	addressFlag = cli.StringFlag{
		Name:  "address",
		Usage: "depositor or receiver to show",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8679",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiLogsLimitFlag = cli.Uint64Flag{
		Name:  "api-logs-limit",
		Value: 1000,
		Usage: "limit the number of logs returned by /logs API",
	}
	apiBatchLimitFlag = cli.IntFlag{
		Name:  "api-batch-limit",
		Value: 100,
		Usage: "limit the number of calls in a /contract/calls/batch request",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics-addr",
		Value: "localhost:2112",
		Usage: "metrics service listening address",
	}
)
