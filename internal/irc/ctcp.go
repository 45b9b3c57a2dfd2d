package irc

import "strings"

// CTCPDelim wraps client-to-client requests inside PRIVMSG and NOTICE text.
const CTCPDelim = "\x01"

// CTCP is a decoded client-to-client request such as ACTION.
type CTCP struct {
	Command string
	Args    string
}

// IsAction reports whether the request is an emote (/me).
func (c CTCP) IsAction() bool {
	return strings.EqualFold(c.Command, "ACTION")
}

// String re-assembles the request body without delimiters.
func (c CTCP) String() string {
	if c.Args == "" {
		return c.Command
	}
	return c.Command + " " + c.Args
}

// ParseCTCP decodes text when it is wrapped in CTCP delimiters on both
// ends.  It returns false for ordinary messages.
func ParseCTCP(text string) (CTCP, bool) {
	if len(text) < 2 || !strings.HasPrefix(text, CTCPDelim) || !strings.HasSuffix(text, CTCPDelim) {
		return CTCP{}, false
	}
	body := text[1 : len(text)-1]
	cmd, args, _ := strings.Cut(body, " ")
	return CTCP{Command: cmd, Args: args}, true
}
