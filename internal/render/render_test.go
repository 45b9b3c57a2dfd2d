package render

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"termirc/internal/irc"
)

func newTestRenderer() (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	r := New(&out, &errOut)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 7, 0, 0, time.UTC) }
	return r, &out, &errOut
}

func TestNickColor_Deterministic(t *testing.T) {
	for _, nick := range []string{"alice", "bob", "Carol", "x", ""} {
		c := NickColor(nick)
		if c < 0 || c >= 6 {
			t.Errorf("NickColor(%q) = %d, out of range", nick, c)
		}
		if again := NickColor(nick); again != c {
			t.Errorf("NickColor(%q) not stable: %d then %d", nick, c, again)
		}
	}
}

func TestNickColor_Spread(t *testing.T) {
	seen := map[int]bool{}
	for _, nick := range []string{"alice", "bob", "carol", "dave", "eve", "frank", "grace", "heidi", "ivan", "judy", "mallory", "oscar"} {
		seen[NickColor(nick)] = true
	}
	if len(seen) < 3 {
		t.Errorf("only %d distinct colours for 12 nicks", len(seen))
	}
}

func TestRenderer_Lines(t *testing.T) {
	tests := []struct {
		name string
		fn   func(r *Renderer)
		want string
	}{
		{"message", func(r *Renderer) { r.Message("bob", "#go", "hi there") }, "[09:07] <bob@#go> hi there"},
		{"echo", func(r *Renderer) { r.Echo("alice", "hello") }, "[09:07] <alice> hello"},
		{"emote", func(r *Renderer) { r.Emote("bob", "waves") }, "[09:07] * bob waves"},
		{"ctcp", func(r *Renderer) { r.CTCP("bob", irc.CTCP{Command: "VERSION"}) }, "[CTCP from bob] VERSION"},
		{"join", func(r *Renderer) { r.Joined("bob", "#go") }, "*** bob joined #go"},
		{"part", func(r *Renderer) { r.Parted("bob", "#go", "later") }, "*** bob left #go (later)"},
		{"part no reason", func(r *Renderer) { r.Parted("bob", "#go", "") }, "*** bob left #go"},
		{"quit", func(r *Renderer) { r.Quit("bob", "Ping timeout") }, "*** bob quit (Ping timeout)"},
		{"nick", func(r *Renderer) { r.Renamed("bob", "robert") }, "*** bob is now known as robert"},
		{"notice", func(r *Renderer) { r.Notice("NickServ", "identify") }, "-NickServ- identify"},
		{"server notice", func(r *Renderer) { r.Notice("", "Looking up your hostname") }, "-server- Looking up your hostname"},
		{"pass-through", func(r *Renderer) { r.Server(":irc.example.net 372 alice :- motd") }, "[server] :irc.example.net 372 alice :- motd"},
		{"disconnected", func(r *Renderer) { r.Disconnected() }, "Disconnected."},
		{"info", func(r *Renderer) { r.Info("Current target: %s", "#go") }, "Current target: #go"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, out, _ := newTestRenderer()
			tt.fn(r)
			if got := strings.TrimRight(out.String(), "\n"); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderer_URLsPlain(t *testing.T) {
	r, out, _ := newTestRenderer()
	r.SetTimestamps(false)
	r.Message("bob", "alice", "see https://go.dev/doc now")
	if got := out.String(); got != "<bob@alice> see https://go.dev/doc now\n" {
		t.Errorf("got %q", got)
	}
}

func TestRenderer_ErrorsToErrStream(t *testing.T) {
	r, out, errOut := newTestRenderer()
	r.Error(errors.New("not connected"))
	r.Lost(errors.New("read: connection reset"))
	if out.Len() != 0 {
		t.Errorf("stdout got %q", out.String())
	}
	want := "Not connected\nConnection lost: read: connection reset\n"
	if errOut.String() != want {
		t.Errorf("stderr = %q, want %q", errOut.String(), want)
	}
}

func TestPrompt(t *testing.T) {
	if got := Prompt(""); got != "> " {
		t.Errorf("Prompt(\"\") = %q", got)
	}
	if got := Prompt("#go"); got != "[#go] > " {
		t.Errorf("Prompt(#go) = %q", got)
	}
}

func TestRenderer_Bell(t *testing.T) {
	r, out, _ := newTestRenderer()
	n := NewNotifier(true, r.Bell(), nil)
	n.desktop = func(context.Context, string, string) error { return errors.New("unsupported") }
	n.Notify("#go", "<bob> hi")
	if out.String() != "\a" {
		t.Errorf("out = %q", out.String())
	}
}
