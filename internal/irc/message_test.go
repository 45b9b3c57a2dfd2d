package irc

import (
	"reflect"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		prefix    string
		command   string
		params    []string
		malformed bool
	}{
		{
			name:    "prefix command and trailing",
			raw:     ":nick!user@host PRIVMSG #chan :hello world",
			prefix:  "nick!user@host",
			command: "PRIVMSG",
			params:  []string{"#chan", "hello world"},
		},
		{
			name:    "bare command",
			raw:     "LIST",
			command: "LIST",
		},
		{
			name:    "numeric with middles and trailing",
			raw:     ":irc.example.net 001 alice :Welcome to the network alice",
			prefix:  "irc.example.net",
			command: "001",
			params:  []string{"alice", "Welcome to the network alice"},
		},
		{
			name:    "middles only",
			raw:     ":alice!a@h JOIN #go",
			prefix:  "alice!a@h",
			command: "JOIN",
			params:  []string{"#go"},
		},
		{
			name:    "empty trailing",
			raw:     "PRIVMSG #chan :",
			command: "PRIVMSG",
			params:  []string{"#chan", ""},
		},
		{
			name:    "trailing keeps colons and spaces",
			raw:     "NOTICE bob :a: b  c :d",
			command: "NOTICE",
			params:  []string{"bob", "a: b  c :d"},
		},
		{
			name:    "repeated spaces between middles",
			raw:     "MODE  #chan   +o  bob",
			command: "MODE",
			params:  []string{"#chan", "+o", "bob"},
		},
		{
			name:    "trailing space after last middle",
			raw:     "JOIN #chan ",
			command: "JOIN",
			params:  []string{"#chan"},
		},
		{
			name:      "prefix without command",
			raw:       ":irc.example.net",
			prefix:    "irc.example.net",
			malformed: true,
		},
		{
			name:      "prefix followed by nothing",
			raw:       ":irc.example.net ",
			prefix:    "irc.example.net",
			malformed: true,
		},
		{
			name:      "empty line",
			raw:       "",
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ParseMessage(tt.raw)
			if msg.Prefix != tt.prefix {
				t.Errorf("prefix = %q, want %q", msg.Prefix, tt.prefix)
			}
			if msg.Command != tt.command {
				t.Errorf("command = %q, want %q", msg.Command, tt.command)
			}
			if len(msg.Params) != 0 || len(tt.params) != 0 {
				if !reflect.DeepEqual(msg.Params, tt.params) {
					t.Errorf("params = %q, want %q", msg.Params, tt.params)
				}
			}
			if msg.Malformed != tt.malformed {
				t.Errorf("malformed = %v, want %v", msg.Malformed, tt.malformed)
			}
			if msg.Raw != tt.raw {
				t.Errorf("raw = %q, want %q", msg.Raw, tt.raw)
			}
		})
	}
}

func TestParseMessage_NeverPanics(t *testing.T) {
	for _, raw := range []string{":", " ", "  ", ": ", ":a :b", "::::", " :x", "\x01", "CMD :"} {
		_ = ParseMessage(raw)
	}
}

func TestPingToken(t *testing.T) {
	tests := []struct {
		raw   string
		token string
		ok    bool
	}{
		{"PING :irc.example.net", ":irc.example.net", true},
		{"PING 12345", "12345", true},
		{"PING a b  c", "a b  c", true},
		{"PING ", "", true},
		{"PING", "", false},
		{":server PING :x", "", false},
		{"PONG :x", "", false},
	}
	for _, tt := range tests {
		token, ok := PingToken(tt.raw)
		if ok != tt.ok || token != tt.token {
			t.Errorf("PingToken(%q) = (%q, %v), want (%q, %v)", tt.raw, token, ok, tt.token, tt.ok)
		}
	}
}

func TestMessage_Nick(t *testing.T) {
	tests := map[string]string{
		"alice!a@example.com": "alice",
		"irc.example.net":     "irc.example.net",
		"":                    "",
		"!weird":              "",
	}
	for prefix, want := range tests {
		if got := (Message{Prefix: prefix}).Nick(); got != want {
			t.Errorf("Nick() for %q = %q, want %q", prefix, got, want)
		}
	}
}

func TestMessage_Param(t *testing.T) {
	msg := ParseMessage("PRIVMSG #chan :hi")
	if msg.Param(0) != "#chan" || msg.Param(1) != "hi" {
		t.Errorf("unexpected params %q", msg.Params)
	}
	if msg.Param(2) != "" || msg.Param(-1) != "" {
		t.Error("out of range params should be empty")
	}
}

func TestMessage_IsNumeric(t *testing.T) {
	for cmd, want := range map[string]bool{
		"001": true, "433": true, "PRIVMSG": false, "01": false, "0a1": false,
	} {
		if got := (Message{Command: cmd}).IsNumeric(); got != want {
			t.Errorf("IsNumeric(%q) = %v, want %v", cmd, got, want)
		}
	}
}

func TestIsChannel(t *testing.T) {
	for name, want := range map[string]bool{
		"#go": true, "&local": true, "alice": false, "": false,
	} {
		if got := IsChannel(name); got != want {
			t.Errorf("IsChannel(%q) = %v, want %v", name, got, want)
		}
	}
}
