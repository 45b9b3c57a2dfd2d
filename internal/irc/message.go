// Package irc implements the client side of the IRC line protocol:
// decoding server lines into messages and building the lines the client
// sends.
//
// Decoding never fails.  A line that cannot be fully understood still
// yields a Message (with Malformed set) so callers can fall back to
// showing the raw text.
package irc

import "strings"

// Message is one line received from the server.
type Message struct {
	// Prefix is the origin of the message (nick!user@host or a server
	// name), or "" when the line carried none.
	Prefix  string
	Command string
	Params  []string

	// Raw is the line as received, without its terminator.
	Raw string

	// Malformed reports that the parser had to guess: a prefix with
	// nothing after it, or no command at all.
	Malformed bool
}

// ParseMessage decodes raw into a Message.
//
// Grammar: [":" prefix " "] command {" " middle} [" :" trailing].  A
// parameter starting with ':' swallows the rest of the line, spaces
// included, as the trailing parameter.
func ParseMessage(raw string) Message {
	msg := Message{Raw: raw}
	line := raw

	if strings.HasPrefix(line, ":") {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			msg.Prefix = line[1:]
			msg.Malformed = true
			return msg
		}
		msg.Prefix = line[1:sp]
		line = strings.TrimLeft(line[sp+1:], " ")
	}

	sp := strings.IndexByte(line, ' ')
	if sp < 0 {
		msg.Command = line
		msg.Malformed = line == ""
		return msg
	}
	msg.Command = line[:sp]
	msg.Malformed = msg.Command == ""
	msg.Params = parseParams(line[sp+1:])
	return msg
}

// parseParams splits the parameter section of a line.
func parseParams(rest string) []string {
	var params []string
	for rest != "" {
		if rest[0] == ' ' {
			rest = rest[1:]
			continue
		}
		if rest[0] == ':' {
			params = append(params, rest[1:])
			break
		}
		sp := strings.IndexByte(rest, ' ')
		if sp < 0 {
			params = append(params, rest)
			break
		}
		params = append(params, rest[:sp])
		rest = rest[sp+1:]
	}
	return params
}

// PingToken reports whether raw is a server PING and returns everything
// after "PING " untouched, so it can be echoed back in a PONG.
func PingToken(raw string) (token string, ok bool) {
	if !strings.HasPrefix(raw, "PING ") {
		return "", false
	}
	return raw[len("PING "):], true
}

// Nick returns the nickname part of the prefix (the text before '!'),
// or the whole prefix for server origins.
func (m Message) Nick() string {
	if i := strings.IndexByte(m.Prefix, '!'); i >= 0 {
		return m.Prefix[:i]
	}
	return m.Prefix
}

// Param returns the i-th parameter, or "" if there are fewer.
func (m Message) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// IsNumeric reports whether the command is a three-digit reply code.
func (m Message) IsNumeric() bool {
	if len(m.Command) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if m.Command[i] < '0' || m.Command[i] > '9' {
			return false
		}
	}
	return true
}

// IsChannel reports whether name looks like a channel (starts with one
// of the RFC 1459 channel prefixes).
func IsChannel(name string) bool {
	return name != "" && strings.IndexByte("#&+!", name[0]) >= 0
}
