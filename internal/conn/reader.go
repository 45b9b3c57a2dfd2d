package conn

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	ircerr "termirc/internal/errors"
	"termirc/internal/irc"
	"termirc/util"
)

// readLoop runs for the lifetime of one link.  Every exit path closes
// the link; a read error after a deliberate close is swallowed.
func (m *Manager) readLoop(l *link) {
	buf := util.LineBuffer()
	defer util.ReleaseLineBuffer(buf)

	r := bufio.NewReader(l.conn)
	var err error
	for {
		var line []byte
		var truncated bool
		line, truncated, err = nextLine(r, (*buf)[:0])
		if err != nil {
			break
		}
		raw := strings.ToValidUTF8(string(line), "\uFFFD")
		m.metrics.LineReceived(len(raw) + 2)
		m.logger.Debug("<- %s", raw)

		var msg irc.Message
		if truncated {
			m.logger.Verbose("line longer than %d bytes truncated", util.MaxLineSize)
			msg = irc.Message{Raw: raw, Malformed: true}
		} else {
			if token, ok := irc.PingToken(raw); ok {
				if err := m.Send(irc.Pong(token)); err != nil {
					m.logger.Verbose("PONG not sent: %v", err)
					return
				}
				m.metrics.PingAnswered()
				continue
			}
			msg = irc.ParseMessage(raw)
		}
		if msg.Malformed {
			m.metrics.MalformedLine()
		}
		select {
		case m.events <- Event{Msg: msg, At: time.Now()}:
		case <-l.done:
			return
		}
	}

	// Whoever tears the link down reports it.  Losing that race means
	// the link was closed on purpose and the read error is a consequence.
	m.mu.Lock()
	closed := m.teardownLocked(l)
	m.mu.Unlock()
	if !closed {
		return
	}

	if !errors.Is(err, io.EOF) {
		lost := ircerr.Wrap(ircerr.OpRead, l.addr, err)
		m.metrics.RecordError(lost.Error())
		m.onLost(lost)
	} else {
		m.logger.Verbose("server %s closed the connection", l.addr)
	}
	m.onClose()
}

// nextLine reads one line into buf and returns it without its CR LF.
// Bytes beyond cap(buf) are dropped up to the next newline; truncated
// reports that.  A final line without a newline is returned before EOF.
func nextLine(r *bufio.Reader, buf []byte) (line []byte, truncated bool, err error) {
	line = buf[:0]
	for {
		chunk, rerr := r.ReadSlice('\n')
		if room := cap(line) - len(line); len(chunk) > room {
			if len(bytes.TrimRight(chunk[room:], "\r\n")) > 0 {
				truncated = true
			}
			chunk = chunk[:room]
		}
		line = append(line, chunk...)

		switch {
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case rerr == nil:
			return bytes.TrimRight(line, "\r\n"), truncated, nil
		case errors.Is(rerr, io.EOF) && len(line) > 0:
			return bytes.TrimRight(line, "\r\n"), truncated, nil
		default:
			return nil, truncated, rerr
		}
	}
}
