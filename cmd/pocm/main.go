// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pocm/api/contract"
	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/genesis"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/runtime"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "cmd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	callFlags := []cli.Flag{fromFlag, heightFlag}

	app := cli.NewApp()
	app.Version = fullVersion()
	app.Name = "pocm"
	app.Usage = "Operator tool of the POCM staking contract"
	app.Copyright = "2025 VeChain Foundation <https://vechain.org/>"
	app.Flags = []cli.Flag{
		dataDirFlag,
		verbosityFlag,
		jsonLogsFlag,
	}
	app.Before = func(ctx *cli.Context) error {
		initLogger(ctx)
		return nil
	}
	app.Commands = []cli.Command{
		{
			Name:   "init",
			Usage:  "create the contract in a fresh data dir",
			Flags:  []cli.Flag{genesisFlag, devFlag},
			Action: initAction,
		},
		{
			Name:   "deposit",
			Usage:  "lock native asset into a new position",
			Flags:  append([]cli.Flag{amountFlag, receiverFlag}, callFlags...),
			Action: depositAction,
		},
		{
			Name:   "withdraw",
			Usage:  "settle and close unlocked positions",
			Flags:  append([]cli.Flag{positionFlag}, callFlags...),
			Action: withdrawAction,
		},
		{
			Name:   "claim",
			Usage:  "settle the rewards of the caller's positions",
			Flags:  callFlags,
			Action: claimAction(runtime.MethodClaim),
		},
		{
			Name:   "claim-receiver",
			Usage:  "settle every depositor paying the caller",
			Flags:  callFlags,
			Action: claimAction(runtime.MethodClaimAsReceiver),
		},
		{
			Name:   "info",
			Usage:  "show the contract, or the deposit and mining info of an address",
			Flags:  []cli.Flag{addressFlag, heightFlag},
			Action: infoAction,
		},
		{
			Name:   "cycles",
			Usage:  "dump the reward cycle ledger",
			Action: cyclesAction,
		},
		{
			Name:   "verify",
			Usage:  "check the consistency of the persisted ledgers",
			Action: verifyAction,
		},
		{
			Name:  "serve",
			Usage: "serve the contract over HTTP",
			Flags: []cli.Flag{
				apiAddrFlag,
				apiCorsFlag,
				apiLogsLimitFlag,
				apiBatchLimitFlag,
				enableAPILogsFlag,
				enableMetricsFlag,
				metricsAddrFlag,
			},
			Action: serveAction,
		},
	}
	return app
}

func initAction(ctx *cli.Context) error {
	var doc *genesis.Document
	switch {
	case ctx.Bool(devFlag.Name):
		doc = genesis.NewDevnet()
	case ctx.String(genesisFlag.Name) != "":
		var err error
		if doc, err = genesis.Load(ctx.String(genesisFlag.Name)); err != nil {
			return err
		}
	default:
		return fmt.Errorf("either --%s or --%s is required", genesisFlag.Name, devFlag.Name)
	}

	dir, err := dataDir(ctx)
	if err != nil {
		return err
	}
	if _, err := os.Stat(filepath.Join(dir, genesisFile)); err == nil {
		return fmt.Errorf("data dir %v already initialized", dir)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "create data dir %v", dir)
	}

	inst, err := openInstance(dir, doc)
	if err != nil {
		return err
	}
	defer inst.Close()

	if err := doc.Apply(context.Background(), inst.executor); err != nil {
		return err
	}
	if err := saveGenesis(dir, doc); err != nil {
		return err
	}
	logger.Info("contract created", "address", doc.Contract, "creator", doc.Creator, "dir", dir)
	for _, acc := range doc.Accounts {
		fmt.Printf("account %v balance %v\n", acc.Address, acc.Balance)
	}
	return nil
}

// execute runs call on the instance, defaulting its height to the last one.
func execute(ctx *cli.Context, call *runtime.Call) error {
	inst, err := loadInstance(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	if call.Caller, err = parseAddress(ctx, fromFlag); err != nil {
		return err
	}
	if ctx.IsSet(heightFlag.Name) {
		call.Height = ctx.Uint64(heightFlag.Name)
	} else if call.Height, err = inst.executor.LastHeight(); err != nil {
		return err
	}

	out, err := inst.executor.Execute(context.Background(), call)
	if err != nil {
		return err
	}
	result, err := contract.ConvertOutput(out)
	if err != nil {
		return err
	}
	return printJSON(result)
}

func depositAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx.String(amountFlag.Name))
	if err != nil {
		return errors.WithMessagef(err, "--%s", amountFlag.Name)
	}
	call := &runtime.Call{Method: runtime.MethodDeposit, Value: amount}
	if ctx.String(receiverFlag.Name) != "" {
		receiver, err := parseAddress(ctx, receiverFlag)
		if err != nil {
			return err
		}
		call.Receiver = &receiver
	}
	return execute(ctx, call)
}

func withdrawAction(ctx *cli.Context) error {
	return execute(ctx, &runtime.Call{Method: runtime.MethodWithdraw, PositionID: ctx.Uint64(positionFlag.Name)})
}

func claimAction(method runtime.Method) func(ctx *cli.Context) error {
	return func(ctx *cli.Context) error {
		return execute(ctx, &runtime.Call{Method: method})
	}
}

func infoAction(ctx *cli.Context) error {
	inst, err := loadInstance(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	height := ctx.Uint64(heightFlag.Name)
	if !ctx.IsSet(heightFlag.Name) {
		if height, err = inst.executor.LastHeight(); err != nil {
			return err
		}
	}

	if ctx.String(addressFlag.Name) == "" {
		return inst.executor.Query(func(s *staking.Staking) error {
			out, err := summarize(s, height)
			if err != nil {
				return err
			}
			return printJSON(out)
		})
	}
	addr, err := parseAddress(ctx, addressFlag)
	if err != nil {
		return err
	}
	return inst.executor.Query(func(s *staking.Staking) error {
		out := make(map[string]any)
		if info, err := s.DepositInfo(addr); err == nil {
			out["deposit"] = info
		}
		if info, err := s.MiningInfo(addr); err == nil {
			out["mining"] = info
		}
		bal, err := s.Token().BalanceOf(addr)
		if err != nil {
			return err
		}
		out["tokenBalance"] = bal
		return printJSON(out)
	})
}

func summarize(s *staking.Staking, height uint64) (map[string]any, error) {
	price, err := s.CurrentPrice(height)
	if err != nil {
		return nil, err
	}
	total, err := s.TotalDeposit()
	if err != nil {
		return nil, err
	}
	depositors, err := s.TotalDepositAddressCount()
	if err != nil {
		return nil, err
	}
	minted, err := s.TotalMinted()
	if err != nil {
		return nil, err
	}
	rounds, err := s.HalvingRounds()
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"address":       s.Address(),
		"owner":         s.Owner(),
		"createHeight":  s.CreateHeight(),
		"height":        height,
		"cycle":         s.CurrentRewardCycle(height),
		"currentPrice":  price.String(),
		"totalDeposit":  total,
		"depositors":    depositors,
		"totalMinted":   minted,
		"halvingRounds": rounds,
	}, nil
}
