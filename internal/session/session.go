// Package session holds the client's identity and connection state for
// one server session.
//
// A Session is created once by the builder and shared by the connection
// manager (which flips the connected flag) and the dispatcher (which
// reads and updates the nickname and current target).  All accessors are
// safe for concurrent use.
package session

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"termirc/util"
)

// Session is the mutable client state.
type Session struct {
	mu       sync.RWMutex
	nick     string
	user     string
	realname string
	target   string
	host     string
	port     int

	connected atomic.Bool
}

// New creates a Session.  An empty nick is replaced by a generated
// placeholder.
func New(nick, user, realname string) *Session {
	if nick == "" {
		nick = GenerateNick()
	}
	return &Session{nick: nick, user: user, realname: realname}
}

// GenerateNick returns a placeholder nickname of the form User<0-999>.
func GenerateNick() string {
	return "User" + strconv.Itoa(rand.Intn(1000))
}

// ── Identity ─────────────────────────────────────────────────────────

// Nick returns the current nickname.
func (s *Session) Nick() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nick
}

// SetNick replaces the local nickname.
func (s *Session) SetNick(nick string) {
	s.mu.Lock()
	s.nick = nick
	s.mu.Unlock()
}

// User returns the username sent at registration.
func (s *Session) User() string { return s.user }

// RealName returns the realname sent at registration.
func (s *Session) RealName() string { return s.realname }

// ── Target ───────────────────────────────────────────────────────────

// Target returns the current target, or "" when there is none.
func (s *Session) Target() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.target
}

// SetTarget makes name the destination of plain-text input.
func (s *Session) SetTarget(name string) {
	s.mu.Lock()
	s.target = name
	s.mu.Unlock()
}

// ClearTargetIf clears the current target when it equals name, ignoring
// case.  It reports whether the target was cleared.
func (s *Session) ClearTargetIf(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == "" || !strings.EqualFold(s.target, name) {
		return false
	}
	s.target = ""
	return true
}

// ── Connection state ─────────────────────────────────────────────────

// Connected reports whether a transport is live.
func (s *Session) Connected() bool { return s.connected.Load() }

// MarkConnected records the server address and sets the connected flag.
func (s *Session) MarkConnected(host string, port int) {
	s.mu.Lock()
	s.host = host
	s.port = port
	s.mu.Unlock()
	s.connected.Store(true)
}

// MarkDisconnected clears the connected flag.  Only the call that
// observes the true→false transition gets true back; the server address
// is kept for display.
func (s *Session) MarkDisconnected() bool {
	return s.connected.CompareAndSwap(true, false)
}

// Server returns the last server address, or ("", 0) before the first
// connection.
func (s *Session) Server() (host string, port int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.host, s.port
}

// ServerAddr formats Server for display, or returns "" before the first
// connection.
func (s *Session) ServerAddr() string {
	host, port := s.Server()
	if host == "" {
		return ""
	}
	return util.FormatAddr(host, port)
}

// String summarises the session for diagnostics.
func (s *Session) String() string {
	return fmt.Sprintf("nick=%s target=%q connected=%v server=%s",
		s.Nick(), s.Target(), s.Connected(), s.ServerAddr())
}
