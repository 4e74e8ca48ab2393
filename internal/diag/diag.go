// Package diag provides tracing for the font parsing and rendering
// pipeline.
//
// The design follows one rule set:
//   - Single switch: FIGTERM_DEBUG=1 or --debug enables everything
//   - Zero overhead: no work when disabled, nil sessions are no-ops
//   - Session scoped: each load or render gets its own session ID
//   - Machine parsable: JSON Lines by default, pretty format optional
package diag

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"sync/atomic"
	"time"
)

// enabled is the global debug flag - set once at startup.
var enabled uint32

// SetEnabled configures debug mode globally.
// This should be called once at program startup.
func SetEnabled(on bool) {
	if on {
		atomic.StoreUint32(&enabled, 1)
	} else {
		atomic.StoreUint32(&enabled, 0)
	}
}

// Enabled returns true if debug mode is active.
func Enabled() bool {
	return atomic.LoadUint32(&enabled) == 1
}

// InitFromEnv initialises debug settings from environment variables.
// Recognised variables:
//   - FIGTERM_DEBUG=1: enable debug mode
//   - FIGTERM_DEBUG_PRETTY=1: use pretty output format
func InitFromEnv() {
	if os.Getenv("FIGTERM_DEBUG") == "1" {
		SetEnabled(true)
	}
}

// Session represents a trace session for a single load or render call.
// A session is safe to use within one call but must not be shared across
// concurrent calls.
type Session struct {
	sessionID string
	sink      Sink
	startTime time.Time
}

// NewSession creates a new session with the provided sink.
// Returns nil if debug mode is not enabled.
func NewSession(sink Sink) *Session {
	if !Enabled() || sink == nil {
		return nil
	}

	s := &Session{
		sessionID: generateSessionID(),
		sink:      sink,
		startTime: time.Now(),
	}

	s.Emit("session", "Start", map[string]interface{}{
		"version": "1.0",
	})

	return s
}

// SessionID returns the unique identifier for this session.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	return s.sessionID
}

// Emit sends an event to the sink.
// This is a no-op if the session is nil (fast-path for disabled debug).
func (s *Session) Emit(phase, event string, data interface{}) {
	if s == nil {
		return
	}

	evt := Event{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		SessionID: s.sessionID,
		Phase:     phase,
		Event:     event,
		Data:      data,
	}

	// Sink errors are intentionally ignored - tracing failures must not
	// break normal operation
	//nolint:errcheck
	s.sink.Write(evt)
}

// Close flushes and closes the session.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}

	elapsed := time.Since(s.startTime).Milliseconds()
	s.Emit("session", "End", map[string]int64{
		"elapsed_ms": elapsed,
	})

	return s.sink.Close()
}

// generateSessionID creates a unique session identifier.
func generateSessionID() string {
	b := make([]byte, 4)
	_, err := rand.Read(b)
	if err != nil {
		// Fallback to time-based ID if crypto/rand fails
		return hex.EncodeToString([]byte{
			byte(time.Now().UnixNano() >> 24),
			byte(time.Now().UnixNano() >> 16),
			byte(time.Now().UnixNano() >> 8),
			byte(time.Now().UnixNano()),
		})
	}
	return hex.EncodeToString(b)
}

// Event is the base envelope for all trace events.
type Event struct {
	Timestamp string      `json:"ts"`
	SessionID string      `json:"session_id"`
	Phase     string      `json:"phase"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
}
