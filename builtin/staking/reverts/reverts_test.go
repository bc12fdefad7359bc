// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(Admission, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, revert.Error(), revert.message)
	assert.Equal(t, Admission, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
	assert.True(t, IsRevertErr(errors.Wrap(revert, "wrapped")))
}

func TestIsKind(t *testing.T) {
	err := errors.WithMessage(Newf(NotFound, "position %d not found", 7), "close")
	assert.True(t, IsKind(err, NotFound))
	assert.False(t, IsKind(err, Lock))
	assert.False(t, IsKind(errors.New("io"), NotFound))
	assert.Contains(t, err.Error(), "position 7 not found")
}

func TestUnlockHeight(t *testing.T) {
	err := errors.Wrap(NewLocked(106), "withdraw")
	h, ok := UnlockHeight(err)
	assert.True(t, ok)
	assert.Equal(t, uint64(106), h)
	assert.True(t, IsKind(err, Lock))
	assert.Contains(t, err.Error(), "106")

	_, ok = UnlockHeight(New(Admission, "minimum deposit not met"))
	assert.False(t, ok)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "schedule overflow", ScheduleOverflow.String())
	assert.Equal(t, "kind(0)", Kind(0).String())
}
