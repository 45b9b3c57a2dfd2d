package core

import (
	"context"
	"fmt"
	"strings"

	ircerr "termirc/internal/errors"
	"termirc/internal/irc"
	"termirc/internal/metrics"
	"termirc/internal/session"
	"termirc/util"
)

// ── Collaborators ────────────────────────────────────────────────────

// Conn is the connection the dispatcher drives.  *conn.Manager
// implements it.
type Conn interface {
	Connect(ctx context.Context, host string, port int) error
	Send(line string) error
	Close()
	Connected() bool
}

// Output renders what the dispatcher decides to show.  *render.Renderer
// implements it.
type Output interface {
	Info(format string, args ...any)
	Hint(format string, args ...any)
	Error(err error)

	Message(from, target, text string)
	Echo(nick, text string)
	Emote(from, text string)
	CTCP(from string, req irc.CTCP)
	Joined(nick, channel string)
	Parted(nick, channel, reason string)
	Quit(nick, reason string)
	Renamed(old, nick string)
	Notice(from, text string)
	Server(raw string)
}

// Notifier raises desktop notifications.  *render.Notifier implements it.
type Notifier interface {
	Notify(title, body string) bool
}

// AutoJoin is the server and channels /autojoin connects to.
type AutoJoin struct {
	Host     string
	Port     int
	Channels []string
}

// DispatcherOptions configures a Dispatcher.  Zero values are usable.
type DispatcherOptions struct {
	DefaultPort int // /server without a port; 6667 when zero
	QuitReason  string
	AutoJoin    AutoJoin
	Notifier    Notifier
	Metrics     *metrics.Collector
	Logger      *util.Logger
}

// ── Dispatcher ───────────────────────────────────────────────────────

// Dispatcher turns user input into protocol lines and server messages
// into rendered events.  It is not safe for concurrent use: the client
// loop is its only caller.
type Dispatcher struct {
	sess *session.Session
	conn Conn
	out  Output
	opts DispatcherOptions

	// welcomed is set by RPL_WELCOME and cleared on every connect;
	// pending holds the channels to join once it is set.
	welcomed bool
	pending  []string
}

// NewDispatcher returns a Dispatcher.
func NewDispatcher(sess *session.Session, conn Conn, out Output, opts DispatcherOptions) *Dispatcher {
	if opts.DefaultPort == 0 {
		opts.DefaultPort = 6667
	}
	if opts.QuitReason == "" {
		opts.QuitReason = "Quit"
	}
	if opts.Logger == nil {
		opts.Logger = util.NewLogger(0)
	}
	return &Dispatcher{sess: sess, conn: conn, out: out, opts: opts}
}

// Connect connects to host:port and queues channels to be joined once
// the server welcomes us.
func (d *Dispatcher) Connect(ctx context.Context, host string, port int, channels []string) error {
	d.out.Info("Connecting to %s ...", util.FormatAddr(host, port))
	if err := d.conn.Connect(ctx, host, port); err != nil {
		if ircerr.Is(err, ircerr.ErrAlreadyConnected) {
			return err
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	d.welcomed = false
	d.pending = append([]string(nil), channels...)
	d.out.Info("Connected. Registered as %s. Use /join to enter channels.", d.sess.Nick())
	return nil
}

// ── User input ───────────────────────────────────────────────────────

// HandleInput processes one line typed by the user, surrounding spaces
// trimmed.  quit reports that
// the session loop should end.  Usage and precondition errors change
// nothing and send nothing.
func (d *Dispatcher) HandleInput(ctx context.Context, line string) (quit bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	name, rawArgs, isCommand := parseCommand(line)
	if !isCommand {
		return false, d.sendText(rawArgs)
	}
	if name == "" {
		return false, ircerr.New("lone slash at the beginning, use // to send a line starting with /")
	}

	cmd, ok := commands[name]
	if !ok {
		return false, ircerr.New("unknown command /" + strings.ToLower(name) + ", type /help for commands")
	}

	var args []string
	if cmd.Rest {
		args = fieldsN(rawArgs, cmd.MaxArgs)
	} else {
		args = strings.Fields(rawArgs)
	}
	if len(args) < cmd.MinArgs {
		return false, ircerr.Usage(name, cmd.usage(name), "")
	}
	if len(args) > cmd.MaxArgs {
		return false, ircerr.Usage(name, cmd.usage(name), "too many arguments")
	}
	if cmd.Check != nil {
		if reason := cmd.Check(args); reason != "" {
			return false, ircerr.Usage(name, cmd.usage(name), reason)
		}
	}
	if cmd.Online && !d.conn.Connected() {
		return false, ircerr.ErrNotConnected
	}
	return cmd.Handle(ctx, d, args)
}

// sendText sends plain input to the current target.
func (d *Dispatcher) sendText(text string) error {
	if !d.conn.Connected() {
		return ircerr.ErrNotConnected
	}
	target := d.sess.Target()
	if target == "" {
		return ircerr.ErrNoTarget
	}
	return d.privmsg(target, text)
}

func (d *Dispatcher) privmsg(target, text string) error {
	if err := d.conn.Send(irc.Privmsg(target, text)); err != nil {
		return err
	}
	d.out.Echo(d.sess.Nick(), text)
	return nil
}

func (d *Dispatcher) join(channel string) error {
	if err := d.conn.Send(irc.Join(channel)); err != nil {
		return err
	}
	d.sess.SetTarget(channel)
	return nil
}

// ── Server messages ──────────────────────────────────────────────────

// HandleMessage renders one server message.  Nothing is dropped: what
// is not understood is shown as received.
func (d *Dispatcher) HandleMessage(msg irc.Message) {
	if msg.Malformed {
		d.out.Server(msg.Raw)
		return
	}

	nick := msg.Nick()
	switch msg.Command {
	case "PRIVMSG":
		if len(msg.Params) < 2 {
			break
		}
		d.privmsgIn(nick, msg.Params[0], msg.Params[1])
		return
	case "JOIN":
		if len(msg.Params) < 1 {
			break
		}
		d.out.Joined(nick, msg.Params[0])
		return
	case "PART":
		if len(msg.Params) < 1 {
			break
		}
		d.out.Parted(nick, msg.Params[0], msg.Param(1))
		return
	case "QUIT":
		d.out.Quit(nick, msg.Param(0))
		return
	case "NICK":
		if len(msg.Params) < 1 {
			break
		}
		d.out.Renamed(nick, msg.Params[0])
		return
	case "NOTICE":
		if len(msg.Params) < 2 {
			break
		}
		d.out.Notice(nick, msg.Params[1])
		return
	case irc.RplWelcome:
		d.welcome()
	case irc.ErrNicknameInUse:
		d.out.Server(msg.Raw)
		d.out.Hint("Nickname %s is already in use, pick another with /nick", msg.Param(1))
		return
	}
	d.out.Server(msg.Raw)
}

func (d *Dispatcher) privmsgIn(from, target, text string) {
	if req, ok := irc.ParseCTCP(text); ok {
		if req.IsAction() {
			d.out.Emote(from, req.Args)
		} else {
			d.out.CTCP(from, req)
		}
		return
	}
	d.out.Message(from, target, text)

	title := target
	if !irc.IsChannel(target) {
		title = from
	}
	if d.opts.Notifier != nil {
		d.opts.Notifier.Notify(title, "<"+from+"> "+text)
	}
}

// welcome flushes the deferred joins.
func (d *Dispatcher) welcome() {
	d.welcomed = true
	pending := d.pending
	d.pending = nil
	for _, ch := range pending {
		if err := d.join(ch); err != nil {
			d.out.Error(err)
			return
		}
	}
	if len(pending) > 0 {
		d.sess.SetTarget(pending[0])
	}
}
