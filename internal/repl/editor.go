// Package repl reads user input lines.
//
// On a terminal it uses ergochat/readline for Emacs-style editing and a
// persistent history file.  When stdin is a pipe or a file it falls back
// to a bufio.Scanner, so scripted sessions ("termirc < cmds.txt") work
// the same way.
package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ergochat/readline"
	"golang.org/x/term"

	"termirc/util"
)

const historyLimit = 500

// LineEditor is a prompt-and-read loop over the terminal or a reader.
type LineEditor struct {
	interactive bool
	rl          *readline.Instance

	scanner *bufio.Scanner
	out     io.Writer
	errOut  io.Writer
}

// New returns a LineEditor for os.Stdin.  historyFile may be "" to keep
// history in memory only.
func New(historyFile string, logger *util.Logger) *LineEditor {
	if !term.IsTerminal(int(os.Stdin.Fd())) || os.Getenv("INSIDE_EMACS") != "" {
		return NewFromReader(os.Stdin, os.Stdout, os.Stderr)
	}

	rl, err := readline.NewFromConfig(&readline.Config{
		HistoryFile:            historyFile,
		HistoryLimit:           historyLimit,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		if logger != nil {
			logger.Warn("readline init failed (%v), using basic input", err)
		}
		return NewFromReader(os.Stdin, os.Stdout, os.Stderr)
	}
	return &LineEditor{interactive: true, rl: rl}
}

// NewFromReader returns a non-interactive LineEditor reading lines from
// in and echoing prompts to out.
func NewFromReader(in io.Reader, out, errOut io.Writer) *LineEditor {
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), util.MaxLineSize)
	return &LineEditor{scanner: sc, out: out, errOut: errOut}
}

// Interactive reports whether line editing is available.
func (le *LineEditor) Interactive() bool { return le.interactive }

// ReadLine shows prompt and returns the next line without its newline.
// End of input, and Ctrl-C at an empty prompt, return io.EOF.
func (le *LineEditor) ReadLine(prompt string) (string, error) {
	if le.interactive {
		le.rl.SetPrompt(prompt)
		line, err := le.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				return "", io.EOF
			}
			return "", err
		}
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			le.rl.SaveToHistory(trimmed) //nolint:errcheck
		}
		return line, nil
	}

	fmt.Fprint(le.out, prompt)
	if !le.scanner.Scan() {
		if err := le.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return le.scanner.Text(), nil
}

// Stdout returns a writer that does not garble the prompt being edited.
func (le *LineEditor) Stdout() io.Writer {
	if le.interactive {
		return le.rl.Stdout()
	}
	return le.out
}

// Stderr is the error-stream twin of Stdout.
func (le *LineEditor) Stderr() io.Writer {
	if le.interactive {
		return le.rl.Stderr()
	}
	return le.errOut
}

// Close releases the terminal.  It is safe to call more than once.
func (le *LineEditor) Close() error {
	if le.rl == nil {
		return nil
	}
	err := le.rl.Close()
	le.rl = nil
	le.interactive = false
	return err
}
