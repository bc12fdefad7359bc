// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/vechain/pocm/pocm"
)

// DevAccount account for development.
type DevAccount struct {
	Address    pocm.Address
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns the pre-funded accounts of the dev document.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
		"ca7b25fc980c759df5f3ce17a3d881d6e19a38e651fc4315fc08917edab41058",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		addr := crypto.PubkeyToAddress(pk.PublicKey)
		accs = append(accs, DevAccount{pocm.Address(addr), pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevContract is the contract address of the dev document.
var DevContract = pocm.BytesToAddress([]byte("pocm"))

// NewDevnet returns a document for local experiments. The first dev account
// creates the contract, every dev account holds 10000 units of the native asset.
func NewDevnet() *Document {
	accs := DevAccounts()
	doc := &Document{
		Contract: DevContract,
		Creator:  accs[0].Address,
		Token: Token{
			Name:          "Proof of credit mining",
			Symbol:        "POCM",
			Decimals:      8,
			InitialAmount: (*math.HexOrDecimal256)(big.NewInt(1000000)),
		},
		Price:          "100",
		AwardingCycle:  10,
		MinimumDeposit: "1",
		MinimumLocked:  100,
		// halves every 1000 cycles
		RewardHalvingCycle: 10000,
	}
	for _, acc := range accs {
		doc.Accounts = append(doc.Accounts, Account{Address: acc.Address, Balance: "10000"})
	}
	return doc
}
