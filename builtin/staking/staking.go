// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the POCM contract: participants lock the native
// asset and are minted a reward token, shared pro rata among the locked stake
// of every reward cycle and halved on a fixed height schedule.
package staking

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/builtin/staking/cycle"
	"github.com/vechain/pocm/builtin/staking/deposit"
	"github.com/vechain/pocm/builtin/staking/mining"
	"github.com/vechain/pocm/builtin/token"
	"github.com/vechain/pocm/log"
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
	"github.com/vechain/pocm/xenv"
)

var (
	logger     = log.WithContext("pkg", "staking")
	slotConfig = pocm.BytesToBytes32([]byte("config"))

	// ErrNotCreated is returned when no contract lives at the address.
	ErrNotCreated = errors.New("staking contract not created")
)

func SetLogger(l log.Logger) {
	logger = l
}

// Staking implements the methods of the POCM contract.
type Staking struct {
	addr   pocm.Address
	config *Config

	cycleService   *cycle.Service
	depositService *deposit.Service
	miningService  *mining.Service
	token          *token.Token
}

func newStaking(addr pocm.Address, st *state.State, config *Config, meter *solidity.Meter) *Staking {
	sctx := solidity.NewContext(addr, st, meter)
	return &Staking{
		addr:           addr,
		config:         config,
		cycleService:   cycle.New(sctx, config.cycleParams()),
		depositService: deposit.New(sctx, config.depositParams()),
		miningService:  mining.New(sctx),
		token:          token.New(sctx),
	}
}

// New loads the contract living at addr.
func New(addr pocm.Address, st *state.State, meter *solidity.Meter) (*Staking, error) {
	var config Config
	found := false
	if err := st.DecodeStorage(addr, slotConfig, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		found = true
		return rlp.DecodeBytes(raw, &config)
	}); err != nil {
		return nil, errors.WithMessage(err, "load config")
	}
	if !found {
		return nil, ErrNotCreated
	}
	return newStaking(addr, st, &config, meter), nil
}

// Create validates the config and creates the contract at the address of the
// environment. The caller becomes the owner and receives the initial token
// supply left after allocations.
func Create(env *xenv.Environment, config Config) (*Staking, error) {
	price, err := config.Validate()
	if err != nil {
		return nil, err
	}
	if raw, err := env.State().GetRawStorage(env.To(), slotConfig); err != nil {
		return nil, err
	} else if len(raw) != 0 {
		return nil, errors.Errorf("contract already created at %v", env.To())
	}

	config.Owner = env.Caller()
	config.CreateHeight = env.Height()
	if err := env.State().EncodeStorage(env.To(), slotConfig, func() ([]byte, error) {
		return rlp.EncodeToBytes(&config)
	}); err != nil {
		return nil, errors.WithMessage(err, "store config")
	}

	s := newStaking(env.To(), env.State(), &config, nil)
	if err := s.cycleService.Init(price); err != nil {
		return nil, err
	}
	transfers, err := s.token.Initialize(config.Token, config.Owner, config.InitialAmount, config.Allocations)
	if err != nil {
		return nil, err
	}
	for _, tr := range transfers {
		env.Emit(&TransferEvent{From: tr.From, To: tr.To, Value: tr.Value})
	}

	logger.Info("contract created",
		"address", env.To(),
		"symbol", config.Token.Symbol,
		"price", price,
		"awardingCycle", config.AwardingCycle,
		"halvingCycle", config.RewardHalvingCycle,
		"height", config.CreateHeight,
	)
	return s, nil
}

func (s *Staking) Address() pocm.Address { return s.addr }

// Config returns a copy of the creation parameters.
func (s *Staking) Config() Config { return *s.config }

func (s *Staking) Token() *token.Token { return s.token }

func (s *Staking) Owner() pocm.Address        { return s.config.Owner }
func (s *Staking) CreateHeight() uint64       { return s.config.CreateHeight }
func (s *Staking) AwardingCycle() uint64      { return s.config.AwardingCycle }
func (s *Staking) RewardHalvingCycle() uint64 { return s.config.RewardHalvingCycle }
func (s *Staking) MinimumLocked() uint64      { return s.config.MinimumLocked }

func (s *Staking) MinimumDeposit() *big.Int {
	return new(big.Int).Set(s.config.MinimumDeposit)
}

func (s *Staking) MaximumDepositAddressCount() uint64 {
	return s.config.MaxDepositors
}

func (s *Staking) decimals() int32 {
	return int32(s.config.Token.Decimals)
}
