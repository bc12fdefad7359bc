// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/pocm/metrics"
)

var (
	metricFilterCriteria = metrics.LazyLoadHistogramVec("logdb_filter_criteria", []string{"table", "order"}, []int64{0, 1, 2, 5, 10, 25, 100})
	metricWrittenCounter = metrics.LazyLoadCounterVec("logdb_written_count", []string{"type"})
)

// observeFilter records the shape of a filter query on table.
func observeFilter(table string, order Order, criteria int) {
	if metrics.NoOp() {
		return
	}
	if order != DESC {
		order = ASC
	}
	metricFilterCriteria().ObserveWithLabels(int64(criteria), map[string]string{"table": table, "order": string(order)})
}
