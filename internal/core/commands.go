package core

import (
	"context"
	"strings"

	ircerr "termirc/internal/errors"
	"termirc/internal/irc"
	"termirc/util"
)

// command describes one slash command.  Arguments are split on spaces;
// with Rest set the last argument keeps the remainder of the line,
// spaces included.
type command struct {
	MinArgs int
	MaxArgs int
	Rest    bool
	Online  bool // needs a live connection
	Usage   string
	Desc    string

	// Check returns a reason when otherwise well-counted arguments are
	// still unusable.
	Check  func(args []string) string
	Handle func(ctx context.Context, d *Dispatcher, args []string) (quit bool, err error)
}

func (c *command) usage(name string) string {
	u := "/" + strings.ToLower(name)
	if c.Usage != "" {
		u += " " + c.Usage
	}
	return u
}

var commands map[string]*command //nolint:gochecknoglobals

// helpOrder lists commands the way /help shows them.
var helpOrder = []string{ //nolint:gochecknoglobals
	"SERVER", "NICK", "JOIN", "PART", "MSG", "ME", "TOPIC", "NAMES", "LIST",
	"WHOIS", "RAW", "CURRENT", "SERVERINFO", "AUTOJOIN", "STATS", "DISCONNECT",
	"QUIT", "HELP",
}

func init() {
	commands = map[string]*command{
		"SERVER": {
			MinArgs: 1, MaxArgs: 2,
			Usage:  "host [port]",
			Desc:   "connect to an IRC server (default port 6667, 6697 with TLS)",
			Check:  checkPort,
			Handle: cmdServer,
		},
		"NICK": {
			MinArgs: 1, MaxArgs: 1,
			Usage:  "<nick>",
			Desc:   "change your nickname",
			Check:  checkNick,
			Handle: cmdNick,
		},
		"JOIN": {
			MinArgs: 1, MaxArgs: 1, Online: true,
			Usage:  "#channel",
			Desc:   "join a channel and make it the current target",
			Check:  checkChannel,
			Handle: cmdJoin,
		},
		"PART": {
			MinArgs: 1, MaxArgs: 2, Rest: true, Online: true,
			Usage:  "#channel [reason]",
			Desc:   "leave a channel",
			Check:  checkChannel,
			Handle: cmdPart,
		},
		"MSG": {
			MinArgs: 2, MaxArgs: 2, Rest: true, Online: true,
			Usage:  "<nick|#channel> <message...>",
			Desc:   "send a message and make the recipient the current target",
			Handle: cmdMsg,
		},
		"ME": {
			MinArgs: 1, MaxArgs: 1, Rest: true, Online: true,
			Usage:  "<action...>",
			Desc:   "send an action to the current target",
			Handle: cmdMe,
		},
		"TOPIC": {
			MinArgs: 1, MaxArgs: 2, Rest: true, Online: true,
			Usage:  "#channel [topic...]",
			Desc:   "set the channel topic, or show it",
			Check:  checkChannel,
			Handle: cmdTopic,
		},
		"NAMES": {
			MinArgs: 1, MaxArgs: 1, Online: true,
			Usage:  "#channel",
			Desc:   "request the member list of a channel",
			Handle: passthrough(func(a []string) string { return irc.Names(a[0]) }),
		},
		"LIST": {
			Online: true,
			Desc:   "request the channel list",
			Handle: passthrough(func([]string) string { return irc.List() }),
		},
		"WHOIS": {
			MinArgs: 1, MaxArgs: 1, Online: true,
			Usage:  "<nick>",
			Desc:   "ask the server about a nick",
			Handle: passthrough(func(a []string) string { return irc.Whois(a[0]) }),
		},
		"RAW": {
			MinArgs: 1, MaxArgs: 1, Rest: true, Online: true,
			Usage:  "<raw IRC line...>",
			Desc:   "send a protocol line as is",
			Handle: passthrough(func(a []string) string { return a[0] }),
		},
		"CURRENT": {
			Desc:   "show the current message target",
			Handle: cmdCurrent,
		},
		"SERVERINFO": {
			Desc:   "show the connected server",
			Handle: cmdServerInfo,
		},
		"AUTOJOIN": {
			Desc:   "connect to the configured server and join its channels",
			Handle: cmdAutoJoin,
		},
		"STATS": {
			Desc:   "show connection statistics",
			Handle: cmdStats,
		},
		"DISCONNECT": {
			MaxArgs: 1, Rest: true, Online: true,
			Usage:  "[reason]",
			Desc:   "disconnect but keep the client running",
			Handle: cmdDisconnect,
		},
		"QUIT": {
			MaxArgs: 1, Rest: true,
			Usage:  "[reason]",
			Desc:   "disconnect and exit",
			Handle: cmdQuit,
		},
		"HELP": {
			MaxArgs: 1,
			Usage:  "[command]",
			Desc:   "show the list of commands, or how to use one",
			Handle: cmdHelp,
		},
	}
}

// ── Argument checks ──────────────────────────────────────────────────

func checkPort(args []string) string {
	if len(args) < 2 {
		return ""
	}
	if _, err := util.ParsePort(args[1]); err != nil {
		return err.Error()
	}
	return ""
}

func checkNick(args []string) string {
	n := args[0]
	if strings.ContainsAny(n, ":,*?!@") || irc.IsChannel(n) {
		return "invalid nickname " + n
	}
	return ""
}

func checkChannel(args []string) string {
	if !irc.IsChannel(args[0]) {
		return args[0] + " is not a channel"
	}
	return ""
}

// ── Handlers ─────────────────────────────────────────────────────────

func cmdServer(ctx context.Context, d *Dispatcher, args []string) (bool, error) {
	port := d.opts.DefaultPort
	if len(args) == 2 {
		port, _ = util.ParsePort(args[1])
	}
	if d.conn.Connected() {
		return false, ircerr.ErrAlreadyConnected
	}
	return false, d.Connect(ctx, args[0], port, nil)
}

func cmdNick(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	nick := args[0]
	if !d.conn.Connected() {
		d.sess.SetNick(nick)
		d.out.Info("Nick set to %s. It will be used when connecting.", nick)
		return false, nil
	}
	d.sess.SetNick(nick)
	return false, d.conn.Send(irc.Nick(nick))
}

func cmdJoin(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	return false, d.join(args[0])
}

func cmdPart(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	channel, reason := args[0], ""
	if len(args) == 2 {
		reason = args[1]
	}
	if err := d.conn.Send(irc.Part(channel, reason)); err != nil {
		return false, err
	}
	d.sess.ClearTargetIf(channel)
	return false, nil
}

func cmdMsg(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	if err := d.privmsg(args[0], args[1]); err != nil {
		return false, err
	}
	d.sess.SetTarget(args[0])
	return false, nil
}

func cmdMe(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	target := d.sess.Target()
	if target == "" {
		return false, ircerr.ErrNoTarget
	}
	if err := d.conn.Send(irc.Action(target, args[0])); err != nil {
		return false, err
	}
	d.out.Emote(d.sess.Nick(), args[0])
	return false, nil
}

func cmdTopic(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	topic := ""
	if len(args) == 2 {
		topic = args[1]
	}
	return false, d.conn.Send(irc.Topic(args[0], topic))
}

func passthrough(build func(args []string) string) func(context.Context, *Dispatcher, []string) (bool, error) {
	return func(_ context.Context, d *Dispatcher, args []string) (bool, error) {
		return false, d.conn.Send(build(args))
	}
}

func cmdCurrent(_ context.Context, d *Dispatcher, _ []string) (bool, error) {
	target := d.sess.Target()
	if target == "" {
		target = "(none)"
	}
	d.out.Info("Current target: %s", target)
	return false, nil
}

func cmdServerInfo(_ context.Context, d *Dispatcher, _ []string) (bool, error) {
	if d.conn.Connected() {
		d.out.Info("Connected to %s as %s", d.sess.ServerAddr(), d.sess.Nick())
		return false, nil
	}
	if last := d.sess.ServerAddr(); last != "" {
		d.out.Info("Not connected. Last server was %s.", last)
		return false, nil
	}
	d.out.Info("Not connected.")
	return false, nil
}

func cmdAutoJoin(ctx context.Context, d *Dispatcher, _ []string) (bool, error) {
	aj := d.opts.AutoJoin
	if !d.conn.Connected() {
		port := aj.Port
		if port == 0 {
			port = d.opts.DefaultPort
		}
		return false, d.Connect(ctx, aj.Host, port, aj.Channels)
	}
	if !d.welcomed {
		d.pending = append(d.pending, aj.Channels...)
		return false, nil
	}
	for _, ch := range aj.Channels {
		if err := d.join(ch); err != nil {
			return false, err
		}
	}
	if len(aj.Channels) > 0 {
		d.sess.SetTarget(aj.Channels[0])
	}
	return false, nil
}

func cmdStats(_ context.Context, d *Dispatcher, _ []string) (bool, error) {
	for _, line := range d.opts.Metrics.Snapshot().Lines() {
		d.out.Info("%s", line)
	}
	return false, nil
}

func cmdDisconnect(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	reason := d.opts.QuitReason
	if len(args) == 1 {
		reason = args[0]
	}
	err := d.conn.Send(irc.Quit(reason))
	d.conn.Close()
	return false, err
}

func cmdQuit(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	if !d.conn.Connected() {
		d.out.Info("Not connected.")
		d.conn.Close()
		return true, nil
	}
	reason := d.opts.QuitReason
	if len(args) == 1 {
		reason = args[0]
	}
	if err := d.conn.Send(irc.Quit(reason)); err != nil {
		d.opts.Logger.Verbose("quit: %v", err)
	}
	d.conn.Close()
	return true, nil
}

func cmdHelp(_ context.Context, d *Dispatcher, args []string) (bool, error) {
	if len(args) == 1 {
		name := strings.ToUpper(strings.TrimPrefix(args[0], "/"))
		cmd, ok := commands[name]
		if !ok {
			return false, ircerr.New("no command /" + strings.ToLower(name))
		}
		d.out.Info("%s", cmd.usage(name))
		d.out.Hint("  %s", cmd.Desc)
		return false, nil
	}

	width := 0
	for _, name := range helpOrder {
		if n := len(commands[name].usage(name)); n > width {
			width = n
		}
	}
	d.out.Info("Commands:")
	for _, name := range helpOrder {
		cmd := commands[name]
		d.out.Info("  %-*s  %s", width, cmd.usage(name), cmd.Desc)
	}
	d.out.Info("Plain text lines (not starting with /) send a message to the current target.")
	return false, nil
}

// ── Input parsing ────────────────────────────────────────────────────

// fieldsN splits s into at most n space-separated fields; the last
// field keeps the rest of s verbatim.
func fieldsN(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" || n <= 0 {
		return nil
	}
	var a []string
	for len(a) < n-1 {
		i := strings.IndexByte(s, ' ')
		if i < 0 {
			break
		}
		a = append(a, s[:i])
		s = strings.TrimLeft(s[i:], " ")
	}
	return append(a, s)
}

// parseCommand splits "/name args" into its parts.  Text not starting
// with '/' is not a command; a leading "//" escapes a literal slash.
func parseCommand(s string) (name, args string, isCommand bool) {
	if s == "" || s[0] != '/' {
		return "", s, false
	}
	if len(s) > 1 && s[1] == '/' {
		return "", s[1:], false
	}
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		i = len(s)
	}
	return strings.ToUpper(s[1:i]), strings.TrimLeft(s[i:], " "), true
}
