// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/pocm/pocm"
	"github.com/vechain/pocm/state"
)

// Meter counts storage slot accesses of a built-in contract call.
type Meter struct {
	Reads  uint64
	Writes uint64
}

func (m *Meter) read(slots uint64) {
	if m != nil {
		m.Reads += slots
	}
}

func (m *Meter) write(slots uint64) {
	if m != nil {
		m.Writes += slots
	}
}

// Context binds a contract address to the state it operates on.
type Context struct {
	address pocm.Address
	state   *state.State
	meter   *Meter
}

// NewContext creates a context. The meter is optional.
func NewContext(address pocm.Address, state *state.State, meter *Meter) *Context {
	return &Context{
		address: address,
		state:   state,
		meter:   meter,
	}
}

func (c *Context) Address() pocm.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Meter() *Meter {
	return c.meter
}

func slotsOf(raw []byte) uint64 {
	return (uint64(len(raw)) + 31) / 32
}
