// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log is the logging facade of the module. It is backed by the
// go-ethereum slog handlers, so the root handler is configured once by the
// binary and every package logger follows it.
package log

import (
	"io"
	"log/slog"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Levels, same as go-ethereum's.
const (
	LevelTrace = ethlog.LevelTrace
	LevelDebug = ethlog.LevelDebug
	LevelInfo  = ethlog.LevelInfo
	LevelWarn  = ethlog.LevelWarn
	LevelError = ethlog.LevelError
	LevelCrit  = ethlog.LevelCrit
)

// Logger writes key/value pairs.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
}

type lazyLogger struct {
	ctx []any
}

// WithContext returns a logger carrying the given key/value pairs. The root
// logger is resolved at each call, so package level loggers follow SetDefault.
func WithContext(ctx ...any) Logger {
	return &lazyLogger{ctx: ctx}
}

func (l *lazyLogger) root() ethlog.Logger {
	return ethlog.Root().With(l.ctx...)
}

func (l *lazyLogger) Trace(msg string, ctx ...any) { l.root().Trace(msg, ctx...) }
func (l *lazyLogger) Debug(msg string, ctx ...any) { l.root().Debug(msg, ctx...) }
func (l *lazyLogger) Info(msg string, ctx ...any)  { l.root().Info(msg, ctx...) }
func (l *lazyLogger) Warn(msg string, ctx ...any)  { l.root().Warn(msg, ctx...) }
func (l *lazyLogger) Error(msg string, ctx ...any) { l.root().Error(msg, ctx...) }

func Trace(msg string, ctx ...any) { ethlog.Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { ethlog.Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { ethlog.Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { ethlog.Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { ethlog.Root().Error(msg, ctx...) }

// FromLegacyLevel maps a verbosity 0-5 (crit..trace) to a slog level.
func FromLegacyLevel(verbosity int) slog.Level {
	return ethlog.FromLegacyLevel(verbosity)
}

// Setup installs the root handler. Terminal output is colored when useColor is set.
func Setup(w io.Writer, level slog.Level, json, useColor bool) {
	var handler slog.Handler
	if json {
		handler = ethlog.JSONHandlerWithLevel(w, level)
	} else {
		handler = ethlog.NewTerminalHandlerWithLevel(w, level, useColor)
	}
	ethlog.SetDefault(ethlog.NewLogger(handler))
}

// Discard silences the root logger.
func Discard() {
	ethlog.SetDefault(ethlog.NewLogger(ethlog.DiscardHandler()))
}
