// Copyright (c) 2025 The Orion developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"log/slog"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	l := NewLogger(NewTerminalHandler(&out))

	l.Info("sealed epoch", "epoch", uint64(7), "fee", big.NewInt(1e18))

	line := out.String()
	assert.Contains(t, line, "[INFO]")
	assert.Contains(t, line, "sealed epoch")
	assert.Contains(t, line, "epoch=7")
	assert.Contains(t, line, "fee=1000000000000000000")
}

func TestTerminalHandlerLevel(t *testing.T) {
	var out bytes.Buffer
	var lvl slog.LevelVar
	lvl.Set(slog.LevelWarn)
	l := NewLogger(NewTerminalHandlerWithLevel(&out, &lvl))

	l.Debug("dropped")
	l.Warn("kept")

	assert.NotContains(t, out.String(), "dropped")
	assert.Contains(t, out.String(), "kept")
}

func TestWithContext(t *testing.T) {
	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out)))
	defer SetDefault(NewLogger(DiscardHandler()))

	logger := WithContext("pkg", "staking")
	logger.Info("hello")

	assert.Contains(t, out.String(), "pkg=staking")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "<nil>", formatValue(slog.AnyValue((*big.Int)(nil))))
	assert.Equal(t, "255", formatValue(slog.AnyValue(uint256.NewInt(255))))

	big3 := new(big.Int).Lsh(big.NewInt(1), 100)
	got := formatValue(slog.AnyValue(big3))
	assert.False(t, strings.Contains(got, "+"), "big ints must not use exponent notation: %s", got)
}
