// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pocm

// Protocol constants.
const (
	// AssetDecimals is the number of fractional digits of the locked base asset.
	// One display unit of the asset equals 10^AssetDecimals base units.
	AssetDecimals int32 = 8

	// MaxHalvingRounds is the number of reward halvings a contract may go through.
	// The round after it is rejected.
	MaxHalvingRounds = 90

	// MaxTokenDecimals bounds the configurable reward token precision.
	MaxTokenDecimals = 18

	// DepositGraceCycles is the distance between the cycle a deposit is made in
	// and the first cycle it earns rewards for.
	DepositGraceCycles = 2
)
