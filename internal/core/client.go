package core

import (
	"context"
	"errors"
	"io"

	"termirc/internal/conn"
	"termirc/internal/irc"
	"termirc/util"
)

// Link is the connection as the client loop sees it.  *conn.Manager
// implements it.
type Link interface {
	Conn
	Incoming() <-chan conn.Event
	Shutdown() error
}

// LineReader prompts for and returns one line of user input.
// *repl.LineEditor implements it.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// Client runs the interactive session.
type Client struct {
	Dispatcher *Dispatcher
	Link       Link
	Input      LineReader
	Out        Output
	Logger     *util.Logger

	// Prompt formats the input prompt for the current target.
	Prompt func(target string) string
	// Banner, if set, runs once before anything else is printed.
	Banner func()

	// Host, when set, is connected to at startup and Channels are joined
	// once the server welcomes us.
	Host     string
	Port     int
	Channels []string

	QuitMessage string
}

// Run reads input and server events until the input ends, /quit runs,
// or ctx is cancelled.  The connection is always shut down on return.
func (c *Client) Run(ctx context.Context) error {
	if c.Logger == nil {
		c.Logger = util.NewLogger(0)
	}
	defer c.shutdown()

	if c.Banner != nil {
		c.Banner()
	}
	if c.Host != "" {
		if err := c.Dispatcher.Connect(ctx, c.Host, c.Port, c.Channels); err != nil {
			c.Out.Error(err)
		}
	}

	stop := make(chan struct{})
	defer close(stop)
	lines := make(chan string)
	acks := make(chan struct{}, 1)
	inputDone := make(chan error, 1)
	go c.readInput(stop, lines, acks, inputDone)

	for {
		select {
		case <-ctx.Done():
			c.Logger.Verbose("interrupted")
			return nil

		case err := <-inputDone:
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err

		case line := <-lines:
			quit, err := c.Dispatcher.HandleInput(ctx, line)
			if err != nil {
				c.Out.Error(err)
			}
			if quit {
				return nil
			}
			acks <- struct{}{}

		case ev := <-c.Link.Incoming():
			c.Dispatcher.HandleMessage(ev.Msg)
		}
	}
}

// readInput hands each line to the loop and waits for it to be handled
// before prompting again, so the prompt shows the updated target.
func (c *Client) readInput(stop <-chan struct{}, lines chan<- string, acks <-chan struct{}, done chan<- error) {
	for {
		line, err := c.Input.ReadLine(c.prompt())
		if err != nil {
			done <- err
			return
		}
		select {
		case lines <- line:
		case <-stop:
			return
		}
		select {
		case <-acks:
		case <-stop:
			return
		}
	}
}

func (c *Client) prompt() string {
	if c.Prompt == nil {
		return ""
	}
	return c.Prompt(c.Dispatcher.sess.Target())
}

// shutdown says goodbye to the server, best effort, and releases the
// connection and the terminal.
func (c *Client) shutdown() {
	if c.Link.Connected() {
		if err := c.Link.Send(irc.Quit(c.QuitMessage)); err != nil {
			c.Logger.Verbose("quit on shutdown: %v", err)
		}
	}
	if err := c.Link.Shutdown(); err != nil {
		c.Logger.Verbose("shutdown: %v", err)
	}
	if err := c.Input.Close(); err != nil {
		c.Logger.Debug("closing input: %v", err)
	}
	if m := c.Dispatcher.opts.Metrics; m != nil {
		c.Logger.Debug("session metrics:\n%s", m.JSON())
	}
	c.Out.Info("Bye.")
}
