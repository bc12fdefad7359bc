// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import "github.com/vechain/pocm/pocm"

type Address struct {
	context *Context
	pos     pocm.Bytes32
}

func NewAddress(context *Context, pos pocm.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (pocm.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return pocm.Address{}, err
	}
	a.context.meter.read(1)
	return pocm.BytesToAddress(storage.Bytes()), nil
}

func (a *Address) Set(addr *pocm.Address) {
	var storage pocm.Bytes32
	if addr != nil {
		storage = pocm.BytesToBytes32(addr.Bytes())
	}
	a.context.meter.write(1)
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
