// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a rejected call.
type Kind int

const (
	// Validation rejects bad contract creation parameters.
	Validation Kind = iota + 1
	// Admission rejects a deposit: minimum amount not met or depositor cap exceeded.
	Admission
	// Lock rejects a withdrawal before the unlock height.
	Lock
	// NotFound rejects a call on an unknown position, depositor or receiver.
	NotFound
	// ScheduleOverflow rejects a call that would apply a halving past the last allowed round.
	ScheduleOverflow
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Admission:
		return "admission"
	case Lock:
		return "lock"
	case NotFound:
		return "not found"
	case ScheduleOverflow:
		return "schedule overflow"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ErrRevert is a caller visible rejection. The whole call is reverted.
type ErrRevert struct {
	kind         Kind
	message      string
	unlockHeight uint64
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

// NewLocked reports a withdrawal of a position that unlocks at the given height.
func NewLocked(unlockHeight uint64) *ErrRevert {
	return &ErrRevert{
		kind:         Lock,
		message:      fmt.Sprintf("position is locked, the unlocking height is %d", unlockHeight),
		unlockHeight: unlockHeight,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsKind reports whether err is a revert of the given kind.
func IsKind(err error, kind Kind) bool {
	var ve *ErrRevert
	return errors.As(err, &ve) && ve.kind == kind
}

// UnlockHeight returns the height reported by a Lock revert.
func UnlockHeight(err error) (uint64, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) && ve.kind == Lock {
		return ve.unlockHeight, true
	}
	return 0, false
}
