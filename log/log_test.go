// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext(t *testing.T) {
	defer Discard()

	logger := WithContext("pkg", "test")

	// installed after the logger is created
	var buf bytes.Buffer
	Setup(&buf, LevelDebug, true, false)

	logger.Debug("hello", "height", 10)
	logger.Trace("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "test", record["pkg"])
	assert.Equal(t, float64(10), record["height"])
}

func TestTerminalOutput(t *testing.T) {
	defer Discard()

	var buf bytes.Buffer
	Setup(&buf, LevelInfo, false, false)
	Info("started", "addr", "localhost:8669")
	Debug("not shown")

	out := buf.String()
	assert.Contains(t, out, "started")
	assert.Contains(t, out, "addr=localhost:8669")
	assert.NotContains(t, out, "not shown")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelInfo, FromLegacyLevel(3))
	assert.Equal(t, LevelDebug, FromLegacyLevel(4))
	assert.Equal(t, LevelTrace, FromLegacyLevel(5))
}
