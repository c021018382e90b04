// Package logger provides the logging interface shared by agentwire commands
// and libraries. Session progress narration, download progress and relay
// failures all flow through a Logger so callers can swap console output for
// a silent or recording backend.
package logger

import (
	"fmt"
	"log"
	"sync"
)

// Logger is implemented by every logging backend used in agentwire.
type Logger interface {
	// Info logs an informational message (e.g., "Loaded 3 cached cookies").
	Info(format string, args ...interface{})

	// Warning logs a recoverable problem (e.g., "cached session rejected").
	Warning(format string, args ...interface{})

	// Error logs a failure that ends the current operation.
	Error(format string, args ...interface{})

	// Close releases resources held by the logger. Safe to call multiple times.
	Close() error
}

// StandardLogger writes to a stdlib *log.Logger. When a component name is
// set every line is tagged with it, e.g. "[INFO] session: ...".
type StandardLogger struct {
	logger    *log.Logger
	component string
}

// NewStandardLogger wraps l without a component tag.
func NewStandardLogger(l *log.Logger) *StandardLogger {
	return &StandardLogger{logger: l}
}

// Named returns a StandardLogger sharing the same output that tags its lines
// with component.
func (s *StandardLogger) Named(component string) *StandardLogger {
	return &StandardLogger{logger: s.logger, component: component}
}

func (s *StandardLogger) printf(level, format string, args ...interface{}) {
	if s.component != "" {
		format = s.component + ": " + format
	}
	s.logger.Printf("["+level+"] "+format, args...)
}

// Info logs with the [INFO] prefix.
func (s *StandardLogger) Info(format string, args ...interface{}) {
	s.printf("INFO", format, args...)
}

// Warning logs with the [WARNING] prefix.
func (s *StandardLogger) Warning(format string, args ...interface{}) {
	s.printf("WARNING", format, args...)
}

// Error logs with the [ERROR] prefix.
func (s *StandardLogger) Error(format string, args ...interface{}) {
	s.printf("ERROR", format, args...)
}

// Close is a no-op; the underlying writer is owned by the caller.
func (s *StandardLogger) Close() error {
	return nil
}

// NopLogger discards all messages.
type NopLogger struct{}

// NewNopLogger creates a logger that discards all messages.
func NewNopLogger() *NopLogger {
	return &NopLogger{}
}

func (n *NopLogger) Info(format string, args ...interface{})    {}
func (n *NopLogger) Warning(format string, args ...interface{}) {}
func (n *NopLogger) Error(format string, args ...interface{})   {}
func (n *NopLogger) Close() error                               { return nil }

var (
	_ Logger = (*StandardLogger)(nil)
	_ Logger = (*NopLogger)(nil)
)

// MockLogger records formatted messages for assertions in tests. It is safe
// for concurrent use since download workers log from several goroutines.
type MockLogger struct {
	mu           sync.Mutex
	InfoCalls    []string
	WarningCalls []string
	ErrorCalls   []string
	CloseCalled  bool
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Info(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InfoCalls = append(m.InfoCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Warning(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarningCalls = append(m.WarningCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Error(format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ErrorCalls = append(m.ErrorCalls, fmt.Sprintf(format, args...))
}

func (m *MockLogger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

// Messages returns every recorded message in level order: info, warning, error.
func (m *MockLogger) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.InfoCalls)+len(m.WarningCalls)+len(m.ErrorCalls))
	out = append(out, m.InfoCalls...)
	out = append(out, m.WarningCalls...)
	return append(out, m.ErrorCalls...)
}

var _ Logger = (*MockLogger)(nil)
