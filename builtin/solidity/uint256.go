// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/pocm/pocm"
)

var (
	errOverflow  = errors.New("uint256 overflow")
	errUnderflow = errors.New("uint256 underflow")
)

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
// Arithmetic is checked, an overflow or underflow leaves the slot untouched.
type Uint256 struct {
	context *Context
	pos     pocm.Bytes32
}

func NewUint256(context *Context, slot pocm.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: slot}
}

func (u *Uint256) load() (*uint256.Int, error) {
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	u.context.meter.read(1)
	return new(uint256.Int).SetBytes32(storage[:]), nil
}

func (u *Uint256) store(v *uint256.Int) {
	u.context.meter.write(1)
	u.context.state.SetStorage(u.context.address, u.pos, pocm.Bytes32(v.Bytes32()))
}

func (u *Uint256) Get() (*big.Int, error) {
	v, err := u.load()
	if err != nil {
		return nil, err
	}
	return v.ToBig(), nil
}

func (u *Uint256) Set(value *big.Int) error {
	v, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return errOverflow
	}
	u.store(v)
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	return u.apply(value, func(a, b *uint256.Int) (*uint256.Int, bool) {
		return new(uint256.Int).AddOverflow(a, b)
	}, errOverflow)
}

func (u *Uint256) Sub(value *big.Int) error {
	return u.apply(value, func(a, b *uint256.Int) (*uint256.Int, bool) {
		return new(uint256.Int).SubOverflow(a, b)
	}, errUnderflow)
}

func (u *Uint256) apply(value *big.Int, op func(a, b *uint256.Int) (*uint256.Int, bool), fail error) error {
	delta, overflow := uint256.FromBig(value)
	if overflow || value.Sign() < 0 {
		return errOverflow
	}
	current, err := u.load()
	if err != nil {
		return err
	}
	result, bad := op(current, delta)
	if bad {
		return fail
	}
	u.store(result)
	return nil
}

// Uint64 is a 64 bits counter stored in a single slot.
type Uint64 struct {
	u *Uint256
}

func NewUint64(context *Context, slot pocm.Bytes32) *Uint64 {
	return &Uint64{NewUint256(context, slot)}
}

func (u *Uint64) Get() (uint64, error) {
	v, err := u.u.load()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

func (u *Uint64) Set(value uint64) {
	u.u.store(uint256.NewInt(value))
}
