// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/pocm/metrics"

var (
	metricCalls        = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"method", "outcome"})
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"method"}, []int64{1, 5, 10, 50, 100, 500, 1000})
	metricStorageSlots = metrics.LazyLoadCounterVec("runtime_storage_slots_count", []string{"op"})
)
