// Package conn owns the client's single server connection: dialing and
// registration, serialized writes, idempotent teardown, and the reader
// goroutine that turns incoming lines into events.
//
// The Manager never dispatches messages itself.  Parsed lines are
// published on [Manager.Incoming] for one consumer (the client loop);
// only PING is answered directly by the reader.
package conn

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	ircerr "termirc/internal/errors"
	"termirc/internal/irc"
	"termirc/internal/metrics"
	"termirc/internal/retry"
	"termirc/internal/session"
	"termirc/internal/transport"
	"termirc/util"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultConnectTimeout = 10 * time.Second
	DefaultWriteTimeout   = 10 * time.Second
	eventBuffer           = 64
)

// Event is one line received from the server.
type Event struct {
	Msg irc.Message
	At  time.Time
}

// Options configures a Manager.
type Options struct {
	Dialer         transport.Dialer
	ConnectTimeout time.Duration // per attempt
	WriteTimeout   time.Duration // per line
	Retries        int           // extra connect attempts
	Logger         *util.Logger
	Metrics        *metrics.Collector
}

// link is one established connection.  Teardown is tied to the link, so
// a reader left over from an earlier connection cannot close a newer one.
type link struct {
	conn net.Conn
	w    *bufio.Writer
	addr string
	done chan struct{}
}

// Manager is the connection state machine shared by the dispatcher
// (Connect, Send, Close) and the reader goroutine.
type Manager struct {
	sess    *session.Session
	opts    Options
	logger  *util.Logger
	metrics *metrics.Collector
	events  chan Event

	mu   sync.Mutex // guards link and every write on it
	link *link

	onClose func()
	onLost  func(error)
}

// NewManager creates a Manager bound to sess.
func NewManager(sess *session.Session, opts Options) *Manager {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = &transport.TCPDialer{Timeout: opts.ConnectTimeout}
	}
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
	}
	return &Manager{
		sess:    sess,
		opts:    opts,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		events:  make(chan Event, eventBuffer),
		onClose: func() {},
		onLost:  func(error) {},
	}
}

// SetCloseHandler registers fn to run once per teardown.  Call before
// the first Connect.
func (m *Manager) SetCloseHandler(fn func()) { m.onClose = fn }

// SetLostHandler registers fn to run when a read fails on a live
// connection.  Call before the first Connect.
func (m *Manager) SetLostHandler(fn func(error)) { m.onLost = fn }

// Incoming returns the channel server events are published on.  It is
// never closed; it carries events of every connection in turn.
func (m *Manager) Incoming() <-chan Event { return m.events }

// Connected reports whether a connection is live.
func (m *Manager) Connected() bool { return m.sess.Connected() }

// ── Connect ──────────────────────────────────────────────────────────

// Connect dials host:port, registers with NICK and USER, and starts the
// reader.  It fails with ErrAlreadyConnected when a connection is live
// and with a connect-failure NetworkError when every attempt failed.
func (m *Manager) Connect(ctx context.Context, host string, port int) error {
	if m.sess.Connected() {
		return ircerr.ErrAlreadyConnected
	}

	addr := util.FormatAddr(host, port)
	bo := retry.ForRetries(m.opts.Retries)
	bo.OnRetry = func(attempt int, err error, wait time.Duration) {
		m.logger.Warn("connect attempt %d to %s failed: %v (retrying in %s)",
			attempt, addr, err, wait.Round(time.Millisecond))
	}

	var nc net.Conn
	start := time.Now()
	err := bo.Do(ctx, func(attempt int) error {
		m.metrics.ConnectAttempt()
		m.logger.Verbose("connecting to %s (attempt %d)", addr, attempt)

		dctx, cancel := context.WithTimeout(ctx, m.opts.ConnectTimeout)
		defer cancel()
		c, err := m.opts.Dialer.DialContext(dctx, "tcp", addr)
		if err != nil {
			if ctx.Err() != nil {
				return retry.Permanent(err)
			}
			return err
		}
		nc = c
		return nil
	})
	if err != nil {
		m.metrics.RecordError(err.Error())
		return ircerr.Wrap(ircerr.OpConnect, addr, err)
	}
	m.logger.Info("connected to %s in %s", addr, util.Since(start))

	l := &link{conn: nc, w: bufio.NewWriter(nc), addr: addr, done: make(chan struct{})}

	m.mu.Lock()
	if m.link != nil {
		m.mu.Unlock()
		nc.Close()
		return ircerr.ErrAlreadyConnected
	}
	m.link = l
	m.sess.MarkConnected(host, port)
	m.mu.Unlock()
	m.metrics.Connected()

	if err := m.Send(irc.Nick(m.sess.Nick())); err != nil {
		return err
	}
	if err := m.Send(irc.User(m.sess.User(), m.sess.RealName())); err != nil {
		return err
	}

	go m.readLoop(l)
	return nil
}

// ── Send ─────────────────────────────────────────────────────────────

// Send writes line plus CRLF and flushes it.  A write failure tears the
// connection down and returns a transport-failure NetworkError.
func (m *Manager) Send(line string) error {
	m.mu.Lock()
	l := m.link
	if l == nil || !m.sess.Connected() {
		m.mu.Unlock()
		return ircerr.ErrNotConnected
	}

	err := m.writeLocked(l, line)
	if err == nil {
		m.mu.Unlock()
		m.metrics.LineSent(len(line) + 2)
		m.logger.Debug("-> %s", line)
		return nil
	}

	werr := ircerr.Wrap(ircerr.OpWrite, l.addr, err)
	m.metrics.RecordError(werr.Error())
	closed := m.teardownLocked(l)
	m.mu.Unlock()
	if closed {
		m.onClose()
	}
	return werr
}

func (m *Manager) writeLocked(l *link, line string) error {
	if err := l.conn.SetWriteDeadline(time.Now().Add(m.opts.WriteTimeout)); err != nil {
		return err
	}
	if _, err := l.w.WriteString(line + "\r\n"); err != nil {
		return err
	}
	return l.w.Flush()
}

// ── Close ────────────────────────────────────────────────────────────

// Close tears the current connection down.  It is idempotent: only the
// first call after a connect releases the conn and runs the close
// handler; later calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	closed := m.teardownLocked(m.link)
	m.mu.Unlock()
	if closed {
		m.onClose()
	}
}

// Shutdown closes the connection and releases the dialer.
func (m *Manager) Shutdown() error {
	m.Close()
	return m.opts.Dialer.Close()
}

// teardownLocked releases l when it is current and the session flag
// flips true→false.  Callers hold m.mu and run onClose after unlocking
// when it returns true.
func (m *Manager) teardownLocked(l *link) bool {
	if l == nil || m.link != l {
		return false
	}
	if !m.sess.MarkDisconnected() {
		return false
	}
	m.link = nil
	close(l.done)
	l.conn.Close() //nolint:errcheck // secondary errors are irrelevant during teardown
	m.metrics.Disconnected()
	m.logger.Verbose("connection to %s closed", l.addr)
	return true
}
