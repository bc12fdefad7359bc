// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/pocm/builtin/staking"
	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/fixedpoint"
	"github.com/vechain/pocm/logdb"
	"github.com/vechain/pocm/pocm"
)

func cyclesAction(ctx *cli.Context) error {
	inst, err := loadInstance(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	return inst.executor.Query(func(s *staking.Staking) error {
		checkpoints, err := s.Checkpoints()
		if err != nil {
			return err
		}
		decimals := int32(s.Config().Token.Decimals)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CYCLE\tSPAN\tSTAKE\tPRICE\tUNIT RATE")
		for _, cp := range checkpoints {
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\n",
				cp.Cycle,
				cp.Span,
				fixedpoint.ToDisplay(cp.Stake, pocm.AssetDecimals),
				fixedpoint.FromScaled(cp.Price, decimals),
				cp.UnitRate(decimals),
			)
		}
		return w.Flush()
	})
}

func verifyAction(ctx *cli.Context) error {
	inst, err := loadInstance(ctx)
	if err != nil {
		return err
	}
	defer inst.Close()

	return inst.executor.Query(func(s *staking.Staking) error {
		checkpoints, err := s.TotalDepositNumber()
		if err != nil {
			return err
		}
		depositors, err := s.TotalDepositAddressCount()
		if err != nil {
			return err
		}

		fmt.Println(">> Verifying contract ledgers <<")
		pb := pb.New64(int64(checkpoints + depositors)).
			Set64(0).
			SetMaxWidth(90).
			Start()
		defer func() { pb.NotPrint = true }()

		if err := s.Verify(func() { pb.Increment() }); err != nil {
			return err
		}
		pb.Finish()
		fmt.Println("ledgers are consistent")

		fmt.Println(">> Replaying deposit logs <<")
		if err := verifyDepositLogs(context.Background(), inst.logDB, s); err != nil {
			return err
		}
		fmt.Println("deposit logs match the ledger")
		return nil
	})
}

// verifyDepositLogs checks that the last Deposit event of every owner carries
// the locked amount of its account.
func verifyDepositLogs(ctx context.Context, db *logdb.LogDB, s *staking.Staking) error {
	expected := make(map[pocm.Address]string)
	if err := s.Accounts(func(acc *deposit.Account) error {
		expected[acc.Owner] = acc.TotalAmount.String()
		return nil
	}); err != nil {
		return err
	}

	contract := s.Address()
	events, err := db.FilterEvents(ctx, &logdb.EventFilter{
		CriteriaSet: []*logdb.EventCriteria{{Address: &contract, Name: (*staking.DepositEvent)(nil).EventName()}},
	})
	if err != nil {
		return err
	}
	actual := make(map[pocm.Address]string)
	for _, ev := range events {
		var dep staking.DepositEvent
		if err := json.Unmarshal(ev.Data, &dep); err != nil {
			return errors.Wrapf(err, "decode event %d:%d", ev.Height, ev.Index)
		}
		if dep.PositionCount == 0 {
			delete(actual, dep.Owner)
			continue
		}
		actual[dep.Owner] = dep.TotalAmount.String()
	}

	e, a := dumpTotals(expected), dumpTotals(actual)
	if e != a {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(e),
			B:        difflib.SplitLines(a),
			FromFile: "Ledger",
			ToFile:   "Logs",
			Context:  1,
		})
		fmt.Println(diff)
		return errors.New("deposit logs diverge from the ledger")
	}
	return nil
}

func dumpTotals(totals map[pocm.Address]string) string {
	lines := make([]string, 0, len(totals))
	for addr, total := range totals {
		lines = append(lines, addr.String()+" "+total+"\n")
	}
	sort.Strings(lines)
	return strings.Join(lines, "")
}
