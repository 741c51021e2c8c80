// logging.go: pluggable logging interface for the go-integrations loader
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package gointegrations

import "sync"

// Logger is the pluggable logging interface used throughout the loader.
//
// The library deliberately carries no logging dependency: embedding
// applications adapt their framework of choice (slog, zap, logrus)
// behind this interface. Args are structured key-value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a logger that includes the given key-value pairs
	// in every subsequent log call.
	With(args ...any) Logger
}

// NoOpLogger discards all log output. It is the default when no logger
// is supplied.
type NoOpLogger struct{}

// NewNoOpLogger creates a new no-operation logger.
func NewNoOpLogger() *NoOpLogger { return &NoOpLogger{} }

func (n *NoOpLogger) Debug(msg string, args ...any) {}
func (n *NoOpLogger) Info(msg string, args ...any)  {}
func (n *NoOpLogger) Warn(msg string, args ...any)  {}
func (n *NoOpLogger) Error(msg string, args ...any) {}

// With implements Logger. The no-op logger is stateless, so the same
// instance is returned.
func (n *NoOpLogger) With(args ...any) Logger { return n }

// DefaultLogger returns the logger used when none is configured.
func DefaultLogger() Logger { return NewNoOpLogger() }

// TestLogger captures log messages for assertions in tests.
type TestLogger struct {
	mu       sync.RWMutex
	Messages []TestLogMessage
}

// TestLogMessage is a single captured log record.
type TestLogMessage struct {
	Level   string
	Message string
	Args    []any
}

// NewTestLogger creates a capturing logger for tests.
func NewTestLogger() *TestLogger {
	return &TestLogger{Messages: make([]TestLogMessage, 0)}
}

func (t *TestLogger) record(level, msg string, args []any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = append(t.Messages, TestLogMessage{Level: level, Message: msg, Args: args})
}

func (t *TestLogger) Debug(msg string, args ...any) { t.record("DEBUG", msg, args) }
func (t *TestLogger) Info(msg string, args ...any)  { t.record("INFO", msg, args) }
func (t *TestLogger) Warn(msg string, args ...any)  { t.record("WARN", msg, args) }
func (t *TestLogger) Error(msg string, args ...any) { t.record("ERROR", msg, args) }

// With implements Logger. Context chaining is not needed for test
// assertions; the same instance keeps capturing.
func (t *TestLogger) With(args ...any) Logger { return t }

// HasMessage reports whether a message with the given level and exact
// text was captured.
func (t *TestLogger) HasMessage(level, message string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, msg := range t.Messages {
		if msg.Level == level && msg.Message == message {
			return true
		}
	}
	return false
}

// CountLevel returns the number of captured messages at level.
func (t *TestLogger) CountLevel(level string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, msg := range t.Messages {
		if msg.Level == level {
			n++
		}
	}
	return n
}

// Clear removes all captured messages.
func (t *TestLogger) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Messages = t.Messages[:0]
}
