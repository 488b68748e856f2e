// Package testutil holds shared test fixtures: a captured logger and a small
// People/Projects/Tasks model.
package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
)

// LogBuffer collects text-handler log output for assertions.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write implements io.Writer.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Reset discards everything logged so far.
func (b *LogBuffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.Reset()
}

// NewLogger returns a logger writing key=value lines at level and above into
// the returned buffer.
func NewLogger(level slog.Level) (*slog.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	handler := slog.NewTextHandler(buf, &slog.HandlerOptions{Level: level})
	return slog.New(handler), buf
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
