package conn

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	ircerr "termirc/internal/errors"
	"termirc/internal/metrics"
	"termirc/internal/session"
	"termirc/util"
)

func TestConnect_Registers(t *testing.T) {
	srv := newFakeServer(t)
	m, sess := newTestManager(t)

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer m.Close()

	peer := srv.accept(t)
	if got := peer.readLine(t); got != "NICK alice" {
		t.Errorf("first line = %q", got)
	}
	if got := peer.readLine(t); got != "USER termirc 0 * :Terminal IRC Client" {
		t.Errorf("second line = %q", got)
	}

	if !sess.Connected() || !m.Connected() {
		t.Error("session should be connected")
	}
	if host, port := sess.Server(); host != "127.0.0.1" || port != srv.port {
		t.Errorf("server = %s:%d", host, port)
	}
}

func TestConnect_AlreadyConnected(t *testing.T) {
	srv := newFakeServer(t)
	m, _ := newTestManager(t)

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer m.Close()
	srv.accept(t)

	err := m.Connect(context.Background(), "127.0.0.1", srv.port)
	if !errors.Is(err, ircerr.ErrAlreadyConnected) {
		t.Fatalf("err = %v, want ErrAlreadyConnected", err)
	}
}

func TestConnect_Failure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	m, sess := newTestManager(t)
	err = m.Connect(context.Background(), "127.0.0.1", port)
	if !ircerr.IsConnectFailure(err) {
		t.Fatalf("err = %v, want a connect failure", err)
	}
	if sess.Connected() {
		t.Error("session must stay disconnected")
	}
}

func TestPing_AnsweredOnce(t *testing.T) {
	srv := newFakeServer(t)
	m, _ := newTestManager(t)

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	peer := srv.accept(t)
	peer.readLine(t) // NICK
	peer.readLine(t) // USER

	peer.write(t, "PING :irc.example.net  extra token")
	if got := peer.readLine(t); got != "PONG :irc.example.net  extra token" {
		t.Fatalf("reply = %q", got)
	}

	m.Close()
	rest := peer.readAll(t)
	if strings.Contains(rest, "PONG") {
		t.Errorf("unexpected extra PONG: %q", rest)
	}
}

func TestIncoming_PublishesParsedLines(t *testing.T) {
	srv := newFakeServer(t)
	m, _ := newTestManager(t)

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer m.Close()
	peer := srv.accept(t)

	peer.write(t, ":nick!user@host PRIVMSG #chan :hello world")
	peer.write(t, ":irc.example.net")
	peer.write(t, "LIST")

	want := []struct {
		command   string
		malformed bool
	}{
		{"PRIVMSG", false},
		{"", true},
		{"LIST", false},
	}
	for i, w := range want {
		ev := nextEvent(t, m)
		if ev.Msg.Command != w.command || ev.Msg.Malformed != w.malformed {
			t.Errorf("event %d = %+v", i, ev.Msg)
		}
	}
}

func TestOversizedLine_KeepsConnection(t *testing.T) {
	srv := newFakeServer(t)
	m, sess := newTestManager(t)

	var lost atomic.Int32
	m.SetLostHandler(func(error) { lost.Add(1) })
	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer m.Close()
	peer := srv.accept(t)

	long := ":irc.example.net 372 alice :- " + strings.Repeat("x", 20000)
	peer.write(t, long)
	peer.write(t, "LIST")

	ev := nextEvent(t, m)
	if !ev.Msg.Malformed || len(ev.Msg.Raw) != util.MaxLineSize || !strings.HasPrefix(long, ev.Msg.Raw) {
		t.Errorf("oversized line: malformed=%v len=%d", ev.Msg.Malformed, len(ev.Msg.Raw))
	}
	if ev := nextEvent(t, m); ev.Msg.Command != "LIST" {
		t.Errorf("next event = %+v", ev.Msg)
	}
	if !sess.Connected() || lost.Load() != 0 {
		t.Errorf("connected=%v lost=%d after an oversized line", sess.Connected(), lost.Load())
	}
}

func TestNextLine(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		size      int
		want      []string
		truncated []bool
	}{
		{"crlf", "PING :a\r\nLIST\r\n", 64, []string{"PING :a", "LIST"}, []bool{false, false}},
		{"bare lf", "LIST\n", 64, []string{"LIST"}, []bool{false}},
		{"no final newline", "LIST", 64, []string{"LIST"}, []bool{false}},
		{"exact fit", "12345678\r\nLIST\r\n", 8, []string{"12345678", "LIST"}, []bool{false, false}},
		{"longer than the reader", "abcdefghijklmnopqrstuvwxyz\r\n", 64, []string{"abcdefghijklmnopqrstuvwxyz"}, []bool{false}},
		{"too long", "123456789abc\r\nLIST\r\n", 8, []string{"12345678", "LIST"}, []bool{true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// A 16-byte reader makes long lines arrive in several slices.
			r := bufio.NewReaderSize(strings.NewReader(tt.in), 16)
			for i, want := range tt.want {
				line, truncated, err := nextLine(r, make([]byte, 0, tt.size))
				if err != nil {
					t.Fatalf("line %d: %v", i, err)
				}
				if string(line) != want || truncated != tt.truncated[i] {
					t.Errorf("line %d = %q truncated=%v, want %q %v", i, line, truncated, want, tt.truncated[i])
				}
			}
			if _, _, err := nextLine(r, make([]byte, 0, tt.size)); !errors.Is(err, io.EOF) {
				t.Errorf("after last line: err = %v, want EOF", err)
			}
		})
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv := newFakeServer(t)
	m, sess := newTestManager(t)

	var closes atomic.Int32
	m.SetCloseHandler(func() { closes.Add(1) })

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	srv.accept(t)

	m.Close()
	m.Close()

	// Give the reader time to exit; it must not report a second close.
	time.Sleep(50 * time.Millisecond)
	if n := closes.Load(); n != 1 {
		t.Errorf("close handler ran %d times, want 1", n)
	}
	if sess.Connected() {
		t.Error("session should be disconnected")
	}
}

func TestSend_NotConnected(t *testing.T) {
	m, _ := newTestManager(t)
	if err := m.Send("JOIN #test"); !errors.Is(err, ircerr.ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
	// Close without a connection is a no-op.
	m.Close()
}

func TestServerClose_TearsDown(t *testing.T) {
	srv := newFakeServer(t)
	m, sess := newTestManager(t)

	closed := make(chan struct{}, 1)
	var lost atomic.Int32
	m.SetCloseHandler(func() { closed <- struct{}{} })
	m.SetLostHandler(func(error) { lost.Add(1) })

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	peer := srv.accept(t)
	// Unread registration lines would turn the close into a reset.
	peer.readLine(t) // NICK
	peer.readLine(t) // USER
	peer.conn.Close()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close handler not called after server EOF")
	}
	if sess.Connected() {
		t.Error("session should be disconnected")
	}
	if lost.Load() != 0 {
		t.Error("EOF should not be reported as a lost connection")
	}
}

func TestStaleReaderDoesNotCloseNewLink(t *testing.T) {
	srv := newFakeServer(t)
	m, sess := newTestManager(t)

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	srv.accept(t)
	m.Close()

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	defer m.Close()
	srv.accept(t)

	time.Sleep(50 * time.Millisecond)
	if !sess.Connected() {
		t.Fatal("second connection was torn down by the first reader")
	}
	if err := m.Send("LIST"); err != nil {
		t.Errorf("send on new link: %v", err)
	}
}

func TestMetricsCounted(t *testing.T) {
	srv := newFakeServer(t)
	sess := session.New("alice", "termirc", "Terminal IRC Client")
	mc := metrics.New()
	m := NewManager(sess, Options{Dialer: plainDialer{}, Metrics: mc})

	if err := m.Connect(context.Background(), "127.0.0.1", srv.port); err != nil {
		t.Fatalf("connect: %v", err)
	}
	peer := srv.accept(t)
	peer.readLine(t)
	peer.readLine(t)
	peer.write(t, "PING 1")
	peer.readLine(t)
	waitFor(t, func() bool { return mc.Snapshot().PingsAnswered == 1 })
	m.Close()

	snap := mc.Snapshot()
	if snap.Connections != 1 || snap.Disconnects != 1 {
		t.Errorf("connections=%d disconnects=%d", snap.Connections, snap.Disconnects)
	}
	if snap.LinesOut != 3 || snap.PingsAnswered != 1 {
		t.Errorf("lines out=%d pings=%d", snap.LinesOut, snap.PingsAnswered)
	}
}

// ── helpers ──────────────────────────────────────────────────────────

// plainDialer dials without consulting proxy settings.
type plainDialer struct{}

func (plainDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

func (plainDialer) Close() error { return nil }

func newTestManager(t *testing.T) (*Manager, *session.Session) {
	t.Helper()
	sess := session.New("alice", "termirc", "Terminal IRC Client")
	m := NewManager(sess, Options{
		Dialer:         plainDialer{},
		ConnectTimeout: 2 * time.Second,
		WriteTimeout:   2 * time.Second,
	})
	return m, sess
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func nextEvent(t *testing.T, m *Manager) Event {
	t.Helper()
	select {
	case ev := <-m.Incoming():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return Event{}
	}
}

type fakeServer struct {
	ln    net.Listener
	port  int
	conns chan net.Conn
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	s := &fakeServer{ln: ln, port: port, conns: make(chan net.Conn, 4)}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			s.conns <- c
		}
	}()
	return s
}

func (s *fakeServer) accept(t *testing.T) *fakePeer {
	t.Helper()
	select {
	case c := <-s.conns:
		t.Cleanup(func() { c.Close() })
		return &fakePeer{conn: c, r: bufio.NewReader(c)}
	case <-time.After(2 * time.Second):
		t.Fatal("no connection accepted")
		return nil
	}
}

type fakePeer struct {
	conn net.Conn
	r    *bufio.Reader
}

func (p *fakePeer) readLine(t *testing.T) string {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	line, err := p.r.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasSuffix(line, "\r\n") {
		t.Errorf("line %q not CRLF-terminated", line)
	}
	return strings.TrimRight(line, "\r\n")
}

// readAll drains the peer until the client hangs up.
func (p *fakePeer) readAll(t *testing.T) string {
	t.Helper()
	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second)) //nolint:errcheck
	var sb strings.Builder
	buf := make([]byte, 512)
	for {
		n, err := p.r.Read(buf)
		sb.Write(buf[:n])
		if err != nil {
			return sb.String()
		}
	}
}

func (p *fakePeer) write(t *testing.T, line string) {
	t.Helper()
	if _, err := p.conn.Write([]byte(line + "\r\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
}
