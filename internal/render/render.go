// Package render turns client events into terminal lines.
//
// Every write goes through one mutex, so lines printed by the reader
// goroutine (connection lost, disconnected) never interleave with lines
// printed by the client loop.  Styling uses a lipgloss renderer bound to
// the output writer: on a terminal lines are coloured, into a pipe or a
// buffer they come out as plain text.
package render

import (
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"mvdan.cc/xurls/v2"

	"termirc/internal/irc"
)

// ── Styles ───────────────────────────────────────────────────────────

// nickPalette is indexed by NickColor.
var nickPalette = [6]lipgloss.Color{ //nolint:gochecknoglobals
	"6", // cyan
	"2", // green
	"5", // magenta
	"3", // yellow
	"4", // blue
	"7", // white
}

var urlRegex = xurls.Strict() //nolint:gochecknoglobals

type styles struct {
	timestamp lipgloss.Style
	incoming  lipgloss.Style
	channel   lipgloss.Style
	joined    lipgloss.Style
	left      lipgloss.Style
	renamed   lipgloss.Style
	notice    lipgloss.Style
	ctcp      lipgloss.Style
	server    lipgloss.Style
	err       lipgloss.Style
	banner    lipgloss.Style
	hint      lipgloss.Style
	url       lipgloss.Style
	nicks     [len(nickPalette)]lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	s := styles{
		timestamp: r.NewStyle().Foreground(lipgloss.Color("8")),
		incoming:  r.NewStyle().Foreground(lipgloss.Color("2")),
		channel:   r.NewStyle().Foreground(lipgloss.Color("4")),
		joined:    r.NewStyle().Foreground(lipgloss.Color("2")),
		left:      r.NewStyle().Foreground(lipgloss.Color("1")),
		renamed:   r.NewStyle().Foreground(lipgloss.Color("3")),
		notice:    r.NewStyle().Foreground(lipgloss.Color("8")),
		ctcp:      r.NewStyle().Foreground(lipgloss.Color("5")),
		server:    r.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		err:       r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true).Underline(true),
		banner:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		hint:      r.NewStyle().Foreground(lipgloss.Color("8")).Faint(true),
		url:       r.NewStyle().Underline(true),
	}
	for i, c := range nickPalette {
		s.nicks[i] = r.NewStyle().Foreground(c)
	}
	return s
}

// NickColor maps a nickname to one of six palette slots.  The mapping
// is a pure function of the nick (FNV-1a, mod 6).
func NickColor(nick string) int {
	h := fnv.New32a()
	h.Write([]byte(nick)) //nolint:errcheck // hash writes never fail
	return int(h.Sum32() % uint32(len(nickPalette)))
}

// ── Renderer ─────────────────────────────────────────────────────────

// Renderer writes the chat transcript.  Errors go to errOut, everything
// else to out.
type Renderer struct {
	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	st     styles
	errSt  styles

	timestamps bool
	now        func() time.Time
}

// New returns a Renderer writing to out and errOut.
func New(out, errOut io.Writer) *Renderer {
	return &Renderer{
		out:        out,
		errOut:     errOut,
		st:         newStyles(lipgloss.NewRenderer(out)),
		errSt:      newStyles(lipgloss.NewRenderer(errOut)),
		timestamps: true,
		now:        time.Now,
	}
}

// SetTimestamps turns the [HH:MM] prefix of chat lines on or off.
func (r *Renderer) SetTimestamps(on bool) {
	r.mu.Lock()
	r.timestamps = on
	r.mu.Unlock()
}

func (r *Renderer) println(s string) {
	r.mu.Lock()
	fmt.Fprintln(r.out, s)
	r.mu.Unlock()
}

// stamp returns "[HH:MM] " or "" when timestamps are off.
func (r *Renderer) stamp() string {
	r.mu.Lock()
	on := r.timestamps
	r.mu.Unlock()
	if !on {
		return ""
	}
	return r.st.timestamp.Render("["+r.now().Format("15:04")+"]") + " "
}

func (r *Renderer) nick(n string) string {
	return r.st.nicks[NickColor(n)].Render(n)
}

func (r *Renderer) links(text string) string {
	if !strings.Contains(text, ".") {
		return text
	}
	return urlRegex.ReplaceAllStringFunc(text, func(u string) string {
		return r.st.url.Render(u)
	})
}

// ── System lines ─────────────────────────────────────────────────────

// Banner prints the startup greeting.
func (r *Renderer) Banner(version string) {
	r.println(r.st.banner.Render("termirc " + version))
	r.println(r.st.hint.Render("commands: /server, /nick, /join, /part, /msg, /quit, /topic, /names, /list, /whois, /raw"))
	r.println(r.st.hint.Render("Type /help for more info."))
	r.println(r.st.incoming.Render("To connect to the default server and channel, type /autojoin"))
}

// Info prints a plain status line.
func (r *Renderer) Info(format string, args ...any) {
	r.println(fmt.Sprintf(format, args...))
}

// Hint prints a dimmed status line.
func (r *Renderer) Hint(format string, args ...any) {
	r.println(r.st.hint.Render(fmt.Sprintf(format, args...)))
}

// Error prints err on the error stream.
func (r *Renderer) Error(err error) {
	r.mu.Lock()
	fmt.Fprintln(r.errOut, r.errSt.err.Render(capitalize(err.Error())))
	r.mu.Unlock()
}

// Disconnected reports the end of a connection.
func (r *Renderer) Disconnected() { r.println("Disconnected.") }

// Lost reports a connection that failed while it was live.
func (r *Renderer) Lost(err error) {
	r.Error(fmt.Errorf("connection lost: %w", err))
}

// ── Chat lines ───────────────────────────────────────────────────────

// Message prints text someone sent to target.
func (r *Renderer) Message(from, target, text string) {
	tgt := target
	if irc.IsChannel(target) {
		tgt = r.st.channel.Render(target)
	}
	r.println(r.stamp() + r.st.incoming.Render("<") + r.nick(from) +
		r.st.incoming.Render("@") + tgt + r.st.incoming.Render("> ") + r.links(text))
}

// Echo prints a message we sent.
func (r *Renderer) Echo(nick, text string) {
	r.println(r.stamp() + "<" + r.nick(nick) + "> " + r.links(text))
}

// Emote prints a CTCP ACTION.
func (r *Renderer) Emote(from, text string) {
	r.println(r.stamp() + "* " + r.nick(from) + " " + r.links(text))
}

// CTCP prints any CTCP request other than ACTION.
func (r *Renderer) CTCP(from string, req irc.CTCP) {
	r.println(r.st.ctcp.Render("[CTCP from " + from + "] " + req.String()))
}

// Joined prints a JOIN.
func (r *Renderer) Joined(nick, channel string) {
	r.println(r.st.joined.Render("*** ") + r.nick(nick) + r.st.joined.Render(" joined "+channel))
}

// Parted prints a PART.
func (r *Renderer) Parted(nick, channel, reason string) {
	r.println(r.st.left.Render("*** ") + r.nick(nick) + r.st.left.Render(" left "+channel+paren(reason)))
}

// Quit prints a QUIT.
func (r *Renderer) Quit(nick, reason string) {
	r.println(r.st.left.Render("*** ") + r.nick(nick) + r.st.left.Render(" quit"+paren(reason)))
}

// Renamed prints a NICK change.
func (r *Renderer) Renamed(old, nick string) {
	r.println(r.st.renamed.Render("*** ") + r.nick(old) + r.st.renamed.Render(" is now known as "+nick))
}

// Notice prints a NOTICE.  from is "" for server notices.
func (r *Renderer) Notice(from, text string) {
	if from == "" {
		from = "server"
	}
	r.println(r.st.notice.Render("-" + from + "- " + text))
}

// Server passes a line through as received.
func (r *Renderer) Server(raw string) {
	r.println(r.st.server.Render("[server] " + raw))
}

// Bell returns a writer onto the transcript stream that shares the
// line lock, for the notifier's terminal bell.
func (r *Renderer) Bell() io.Writer { return lockedWriter{r} }

type lockedWriter struct{ r *Renderer }

func (w lockedWriter) Write(p []byte) (int, error) {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()
	return w.r.out.Write(p)
}

// Prompt returns the input prompt for the current target.
func Prompt(target string) string {
	if target == "" {
		return "> "
	}
	return "[" + target + "] > "
}

func paren(s string) string {
	if s == "" {
		return ""
	}
	return " (" + s + ")"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
