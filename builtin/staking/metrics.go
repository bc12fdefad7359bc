// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/pocm/metrics"

var (
	metricPositions    = metrics.LazyLoadCounterVec("positions_count", []string{"action"})
	metricSettlements  = metrics.LazyLoadCounter("settlements_count")
	metricLockedStake  = metrics.LazyLoadGauge("locked_stake_units")
	metricDepositors   = metrics.LazyLoadGauge("depositors_count")
	metricRewardMinted = metrics.LazyLoadCounter("reward_minted_units")
)
