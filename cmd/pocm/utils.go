// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"os/user"
	"path/filepath"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/genesis"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/lvldb"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/runtime"
	"github.com/vechain/pocm/state"
)

const (
	genesisFile = "genesis.yaml"
	mainDBDir   = "main.db"
	logDBFile   = "logs.db"
)

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".org.vechain.pocm")
	}
	return ""
}

func initLogger(ctx *cli.Context) {
	useColor := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	level := log.FromLegacyLevel(ctx.GlobalInt(verbosityFlag.Name))
	log.Setup(os.Stderr, level, ctx.GlobalBool(jsonLogsFlag.Name), useColor)
}

func handleExitSignal() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		logger.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return ctx
}

func dataDir(ctx *cli.Context) (string, error) {
	dir := ctx.GlobalString(dataDirFlag.Name)
	if dir == "" {
		return "", fmt.Errorf("unable to infer default data dir, use -%s to specify one", dataDirFlag.Name)
	}
	return dir, nil
}

// instance bundles the opened databases of a data dir.
type instance struct {
	doc      *genesis.Document
	mainDB   *lvldb.LevelDB
	logDB    *logdb.LogDB
	executor *runtime.Executor
}

func openInstance(dir string, doc *genesis.Document) (*instance, error) {
	mainDB, err := lvldb.New(filepath.Join(dir, mainDBDir), lvldb.Options{})
	if err != nil {
		return nil, errors.WithMessage(err, "open main database")
	}
	logDB, err := logdb.New(filepath.Join(dir, logDBFile))
	if err != nil {
		mainDB.Close()
		return nil, errors.WithMessage(err, "open log database")
	}
	return &instance{
		doc:      doc,
		mainDB:   mainDB,
		logDB:    logDB,
		executor: runtime.New(state.NewStater(mainDB), logDB, doc.Contract),
	}, nil
}

// loadInstance opens an initialized data dir.
func loadInstance(ctx *cli.Context) (*instance, error) {
	dir, err := dataDir(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := genesis.Load(filepath.Join(dir, genesisFile))
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, fmt.Errorf("data dir %v is not initialized, run the init command first", dir)
		}
		return nil, err
	}
	return openInstance(dir, doc)
}

func (i *instance) Close() {
	i.executor.Close()
	if err := i.logDB.Close(); err != nil {
		logger.Warn("close log database", "err", err)
	}
	if err := i.mainDB.Close(); err != nil {
		logger.Warn("close main database", "err", err)
	}
}

func saveGenesis(dir string, doc *genesis.Document) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, genesisFile), data, 0o600)
}

func parseAddress(ctx *cli.Context, flag cli.StringFlag) (pocm.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return pocm.Address{}, fmt.Errorf("missing --%s", flag.Name)
	}
	addr, err := pocm.ParseAddress(s)
	if err != nil {
		return pocm.Address{}, errors.WithMessagef(err, "--%s", flag.Name)
	}
	return addr, nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// parseAmount converts display units of the native asset into base units.
func parseAmount(s string) (*big.Int, error) {
	d, err := fixedpoint.Parse(s)
	if err != nil {
		return nil, err
	}
	if !d.IsPositive() {
		return nil, errors.New("amount should be positive")
	}
	if !fixedpoint.FitsPrecision(d, pocm.AssetDecimals) {
		return nil, fmt.Errorf("amount has more than %d decimals", pocm.AssetDecimals)
	}
	return fixedpoint.ToBase(d, pocm.AssetDecimals), nil
}
