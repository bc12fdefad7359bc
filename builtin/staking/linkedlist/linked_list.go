// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"github.com/pkg/errors"

	"github.com/vechain/pocm/builtin/solidity"
	"github.com/vechain/pocm/pocm"
)

// LinkedList is a storage backed doubly linked list of addresses, kept in
// insertion order.
type LinkedList struct {
	head  *solidity.Address
	tail  *solidity.Address
	count *solidity.Uint64
	next  *solidity.Mapping[pocm.Address, pocm.Address]
	prev  *solidity.Mapping[pocm.Address, pocm.Address]
}

// NewLinkedList creates a list whose pointers live at the given slots.
func NewLinkedList(sctx *solidity.Context, headPos, tailPos, countPos pocm.Bytes32) *LinkedList {
	return &LinkedList{
		head:  solidity.NewAddress(sctx, headPos),
		tail:  solidity.NewAddress(sctx, tailPos),
		count: solidity.NewUint64(sctx, countPos),
		next:  solidity.NewMapping[pocm.Address, pocm.Address](sctx, headPos),
		prev:  solidity.NewMapping[pocm.Address, pocm.Address](sctx, tailPos),
	}
}

// Add appends an address to the end of the list.
func (l *LinkedList) Add(address pocm.Address) error {
	if address.IsZero() {
		return errors.New("zero address")
	}
	oldTail, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		// the list is currently empty, set this entry to head & tail
		l.head.Set(&address)
		l.tail.Set(&address)
		return l.incr(1)
	}

	if err := l.next.Set(oldTail, address); err != nil {
		return err
	}
	if err := l.prev.Set(address, oldTail); err != nil {
		return err
	}
	l.tail.Set(&address)
	return l.incr(1)
}

func (l *LinkedList) incr(delta int) error {
	n, err := l.count.Get()
	if err != nil {
		return err
	}
	if delta < 0 && n == 0 {
		return errors.New("list count underflow")
	}
	l.count.Set(uint64(int64(n) + int64(delta)))
	return nil
}

// Remove unlinks an address from anywhere in the list. Unknown addresses are ignored.
func (l *LinkedList) Remove(address pocm.Address) error {
	if address.IsZero() {
		return nil
	}

	prev, err := l.prev.Get(address)
	if err != nil {
		return err
	}
	next, err := l.next.Get(address)
	if err != nil {
		return err
	}

	head, err := l.head.Get()
	if err != nil {
		return err
	}
	if prev.IsZero() && head != address {
		return nil // not in list
	}

	if !prev.IsZero() {
		if err := l.next.Set(prev, next); err != nil {
			return err
		}
	} else {
		l.head.Set(&next)
	}

	if !next.IsZero() {
		if err := l.prev.Set(next, prev); err != nil {
			return err
		}
	} else {
		l.tail.Set(&prev)
	}

	l.next.Delete(address)
	l.prev.Delete(address)

	return l.incr(-1)
}

// Len returns the number of addresses in the list.
func (l *LinkedList) Len() (uint64, error) {
	return l.count.Get()
}

// Head returns the oldest address, zero when empty.
func (l *LinkedList) Head() (pocm.Address, error) {
	return l.head.Get()
}

// Iter traverses the list in insertion order until completion or error.
func (l *LinkedList) Iter(callback func(pocm.Address) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}

	for !ptr.IsZero() {
		// read the successor first, the callback may remove ptr
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}
