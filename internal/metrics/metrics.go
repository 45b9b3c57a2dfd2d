// Package metrics counts protocol traffic and connection events for the
// /stats command and the debug log.
//
// All methods are safe for concurrent use.  A nil *Collector is a
// valid no-op receiver, so callers never need to nil-check.
package metrics

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Collector tracks traffic for one client process, across reconnects.
type Collector struct {
	connectAttempts atomic.Int64
	connections     atomic.Int64
	disconnects     atomic.Int64
	linesIn         atomic.Int64
	linesOut        atomic.Int64
	bytesIn         atomic.Int64
	bytesOut        atomic.Int64
	pingsAnswered   atomic.Int64
	malformed       atomic.Int64
	errorsTotal     atomic.Int64

	mu           sync.RWMutex
	startTime    time.Time
	connectedAt  time.Time
	lastError    time.Time
	lastErrorMsg string
}

// New creates a metrics collector with the start time set to now.
func New() *Collector {
	return &Collector{startTime: time.Now()}
}

// ── Connection metrics ───────────────────────────────────────────────

// ConnectAttempt records one dial attempt, successful or not.
func (c *Collector) ConnectAttempt() {
	if c == nil {
		return
	}
	c.connectAttempts.Add(1)
}

// Connected records an established connection.
func (c *Collector) Connected() {
	if c == nil {
		return
	}
	c.connections.Add(1)
	c.mu.Lock()
	c.connectedAt = time.Now()
	c.mu.Unlock()
}

// Disconnected records a teardown.
func (c *Collector) Disconnected() {
	if c == nil {
		return
	}
	c.disconnects.Add(1)
	c.mu.Lock()
	c.connectedAt = time.Time{}
	c.mu.Unlock()
}

// Connections returns the number of established connections.
func (c *Collector) Connections() int64 {
	if c == nil {
		return 0
	}
	return c.connections.Load()
}

// ── Traffic metrics ──────────────────────────────────────────────────

// LineReceived records one server line of n bytes.
func (c *Collector) LineReceived(n int) {
	if c == nil {
		return
	}
	c.linesIn.Add(1)
	c.bytesIn.Add(int64(n))
}

// LineSent records one client line of n bytes, terminator included.
func (c *Collector) LineSent(n int) {
	if c == nil {
		return
	}
	c.linesOut.Add(1)
	c.bytesOut.Add(int64(n))
}

// PingAnswered records a PONG sent in reply to a server PING.
func (c *Collector) PingAnswered() {
	if c == nil {
		return
	}
	c.pingsAnswered.Add(1)
}

// MalformedLine records a line the parser had to degrade.
func (c *Collector) MalformedLine() {
	if c == nil {
		return
	}
	c.malformed.Add(1)
}

// LinesIn returns the number of server lines received.
func (c *Collector) LinesIn() int64 {
	if c == nil {
		return 0
	}
	return c.linesIn.Load()
}

// LinesOut returns the number of lines sent.
func (c *Collector) LinesOut() int64 {
	if c == nil {
		return 0
	}
	return c.linesOut.Load()
}

// ── Error metrics ────────────────────────────────────────────────────

// RecordError increments the error counter and stores the message.
func (c *Collector) RecordError(msg string) {
	if c == nil {
		return
	}
	c.errorsTotal.Add(1)
	c.mu.Lock()
	c.lastError = time.Now()
	c.lastErrorMsg = msg
	c.mu.Unlock()
}

// ErrorCount returns the total number of errors recorded.
func (c *Collector) ErrorCount() int64 {
	if c == nil {
		return 0
	}
	return c.errorsTotal.Load()
}

// ── Snapshot ─────────────────────────────────────────────────────────

// Snapshot is a point-in-time view of all metrics.
type Snapshot struct {
	Uptime           string `json:"uptime"`
	ConnectedFor     string `json:"connected_for,omitempty"`
	ConnectAttempts  int64  `json:"connect_attempts"`
	Connections      int64  `json:"connections"`
	Disconnects      int64  `json:"disconnects"`
	LinesIn          int64  `json:"lines_in"`
	LinesOut         int64  `json:"lines_out"`
	BytesIn          int64  `json:"bytes_in"`
	BytesOut         int64  `json:"bytes_out"`
	PingsAnswered    int64  `json:"pings_answered"`
	MalformedLines   int64  `json:"malformed_lines"`
	ErrorsTotal      int64  `json:"errors_total"`
	LastError        string `json:"last_error,omitempty"`
	LastErrorMessage string `json:"last_error_message,omitempty"`
}

// Snapshot returns a copy of all current metrics.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := Snapshot{
		Uptime:          time.Since(c.startTime).Truncate(time.Second).String(),
		ConnectAttempts: c.connectAttempts.Load(),
		Connections:     c.connections.Load(),
		Disconnects:     c.disconnects.Load(),
		LinesIn:         c.linesIn.Load(),
		LinesOut:        c.linesOut.Load(),
		BytesIn:         c.bytesIn.Load(),
		BytesOut:        c.bytesOut.Load(),
		PingsAnswered:   c.pingsAnswered.Load(),
		MalformedLines:  c.malformed.Load(),
		ErrorsTotal:     c.errorsTotal.Load(),
	}
	if !c.connectedAt.IsZero() {
		s.ConnectedFor = time.Since(c.connectedAt).Truncate(time.Second).String()
	}
	if !c.lastError.IsZero() {
		s.LastError = c.lastError.Format(time.RFC3339)
		s.LastErrorMessage = c.lastErrorMsg
	}
	return s
}

// Lines formats the snapshot as short human-readable lines.
func (s Snapshot) Lines() []string {
	lines := []string{
		fmt.Sprintf("uptime %s, %d connection(s), %d attempt(s), %d disconnect(s)",
			s.Uptime, s.Connections, s.ConnectAttempts, s.Disconnects),
		fmt.Sprintf("in: %d lines / %d bytes, out: %d lines / %d bytes",
			s.LinesIn, s.BytesIn, s.LinesOut, s.BytesOut),
		fmt.Sprintf("pings answered %d, malformed lines %d, errors %d",
			s.PingsAnswered, s.MalformedLines, s.ErrorsTotal),
	}
	if s.ConnectedFor != "" {
		lines = append(lines, "connected for "+s.ConnectedFor)
	}
	if s.LastErrorMessage != "" {
		lines = append(lines, "last error: "+s.LastErrorMessage)
	}
	return lines
}

// JSON returns the snapshot as an indented JSON string.
func (c *Collector) JSON() string {
	s := c.Snapshot()
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}
