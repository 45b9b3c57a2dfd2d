// Package cmd wires up the CLI flags and starts the interactive client.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"termirc/config"
	"termirc/internal/core"
	"termirc/util"
)

// version is overridable at link time:
//
//	go build -ldflags "-X termirc/cmd.version=2.0.0"
var version = "1.0.0" //nolint:gochecknoglobals

// Execute parses args and runs the client.
func Execute(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cfg := config.New()

	// ── config file, then environment ────────────────────────────
	path, explicit := configPath(args)
	if path != "" {
		if err := config.LoadFile(path, cfg, !explicit); err != nil {
			return err
		}
	}
	config.LoadFromEnv(cfg)
	cfg.ConfigPath = path

	fs := flag.NewFlagSet("termirc", flag.ContinueOnError)
	fs.SetOutput(stderr)

	// ── server ───────────────────────────────────────────────────
	fs.StringVarP(&cfg.ConfigPath, "config", "c", cfg.ConfigPath, "Config file")
	fs.BoolVar(&cfg.TLS, "tls", cfg.TLS, "Connect over TLS (default port 6697)")
	fs.BoolVar(&cfg.TLSSkipVerify, "tls-skip-verify", cfg.TLSSkipVerify, "Accept any server certificate")
	timeoutSec := int(cfg.ConnTimeout / time.Second)
	fs.IntVarP(&timeoutSec, "timeout", "w", timeoutSec, "Connect timeout in seconds")
	fs.IntVar(&cfg.Retries, "retries", cfg.Retries, "Extra connect attempts")

	// ── identity ─────────────────────────────────────────────────
	fs.StringVarP(&cfg.Nick, "nick", "n", cfg.Nick, "Nickname (default: random User<n>)")
	fs.StringVar(&cfg.User, "user", cfg.User, "Username sent at registration")
	fs.StringVar(&cfg.RealName, "realname", cfg.RealName, "Real name sent at registration")
	fs.StringSliceVarP(&cfg.Channels, "join", "j", cfg.Channels, "Channels to join once connected (repeatable)")
	fs.StringVar(&cfg.QuitMessage, "quit-message", cfg.QuitMessage, "QUIT reason sent on exit")

	// ── SSH tunnel ───────────────────────────────────────────────
	fs.StringVarP(&cfg.TunnelSpec, "tunnel", "T", cfg.TunnelSpec, "SSH tunnel via [user@]host[:port]")
	fs.StringVar(&cfg.SSHKeyPath, "ssh-key", cfg.SSHKeyPath, "SSH private key file")
	fs.BoolVar(&cfg.SSHPassword, "ssh-password", cfg.SSHPassword, "Prompt for SSH password")
	fs.BoolVar(&cfg.UseSSHAgent, "ssh-agent", cfg.UseSSHAgent, "Use SSH agent")
	fs.BoolVar(&cfg.StrictHostKey, "strict-hostkey", cfg.StrictHostKey, "Verify SSH host keys")
	fs.StringVar(&cfg.KnownHostsPath, "known-hosts", cfg.KnownHostsPath, "Custom known_hosts path")
	fs.IntVar(&cfg.KeepAliveInterval, "keep-alive", cfg.KeepAliveInterval, "SSH keep-alive interval in seconds (0 disables)")

	// ── terminal ─────────────────────────────────────────────────
	noNotify := !cfg.Notify
	fs.BoolVar(&noNotify, "no-notify", noNotify, "Disable desktop notifications")
	fs.StringVar(&cfg.HistoryFile, "history", cfg.HistoryFile, "Input history file")

	// ── output ───────────────────────────────────────────────────
	fs.CountVarP(&cfg.Verbose, "verbose", "v", "Increase verbosity (repeatable)")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "Validate the configuration and exit")

	var showVersion, showHelp bool
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.BoolVarP(&showHelp, "help", "h", false, "Show this help")

	fs.Usage = func() { printUsage(stderr, fs) }

	// ── parse ────────────────────────────────────────────────────
	if err := fs.Parse(args); err != nil {
		return err
	}

	if showHelp {
		printUsage(stderr, fs)
		return nil
	}
	if showVersion {
		fmt.Fprintf(stdout, "termirc %s\n", version)
		return nil
	}

	cfg.ConnTimeout = time.Duration(timeoutSec) * time.Second
	cfg.Notify = !noNotify

	// ── positional arguments ─────────────────────────────────────
	if err := parsePositional(cfg, fs.Args()); err != nil {
		return err
	}

	// ── tunnel spec ──────────────────────────────────────────────
	if err := cfg.ApplyTunnelSpec(); err != nil {
		return err
	}

	// ── validate ─────────────────────────────────────────────────
	if err := cfg.Validate(); err != nil {
		return err
	}

	if cfg.DryRun {
		printSummary(stdout, cfg)
		return nil
	}

	// ── build and run ────────────────────────────────────────────
	logger := util.NewLogger(cfg.Verbose)
	mode, err := core.Build(cfg, logger, version)
	if err != nil {
		return err
	}
	return mode.Run(ctx)
}

// ── helpers ──────────────────────────────────────────────────────────

// configPath finds the config file before the full flag set exists, so
// the file can seed the flag defaults.  explicit is false for the
// default location, which may be missing.
func configPath(args []string) (path string, explicit bool) {
	pre := flag.NewFlagSet("termirc", flag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.SetOutput(io.Discard)
	pre.Usage = func() {}
	pre.StringVarP(&path, "config", "c", "", "")
	pre.BoolP("help", "h", false, "")

	if err := pre.Parse(args); err == nil && path != "" {
		return path, true
	}
	if p := config.ConfigPathFromEnv(); p != "" {
		return p, true
	}
	return config.DefaultConfigPath(), false
}

// parsePositional handles "[host [port]]".  host may also be an
// irc:// or ircs:// address.
func parsePositional(cfg *config.Config, remaining []string) error {
	switch len(remaining) {
	case 0:
		return nil
	case 1, 2:
	default:
		return errors.New("too many arguments, expected [host [port]]")
	}

	if err := cfg.SetAddress(remaining[0]); err != nil {
		return fmt.Errorf("host: %w", err)
	}
	if len(remaining) == 2 {
		port, err := util.ParsePort(remaining[1])
		if err != nil {
			return fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	}
	return nil
}

func printSummary(w io.Writer, cfg *config.Config) {
	server := "(none, connect with /server)"
	if cfg.Host != "" {
		server = util.FormatAddr(cfg.Host, cfg.ServerPort())
		if cfg.TLS {
			server += " (tls)"
		}
	}
	nick := cfg.Nick
	if nick == "" {
		nick = "(random)"
	}
	channels := strings.Join(cfg.Channels, " ")
	if channels == "" {
		channels = "(none)"
	}
	tunnel := "(direct)"
	if cfg.TunnelEnabled {
		tunnel = cfg.TunnelUser + "@" + util.FormatAddr(cfg.TunnelHost, cfg.TunnelPort)
	}

	fmt.Fprintln(w, "configuration OK")
	fmt.Fprintf(w, "  server:   %s\n", server)
	fmt.Fprintf(w, "  nick:     %s\n", nick)
	fmt.Fprintf(w, "  user:     %s (%s)\n", cfg.User, cfg.RealName)
	fmt.Fprintf(w, "  channels: %s\n", channels)
	fmt.Fprintf(w, "  tunnel:   %s\n", tunnel)
	fmt.Fprintf(w, "  notify:   %t\n", cfg.Notify)
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, `termirc – Terminal IRC Client v%s

An interactive IRC client for the terminal.

Usage:
  termirc [options]                           Start offline, connect with /server
  termirc [options] <host> [port]             Connect at startup
  termirc [options] ircs://<host>[:port]      Connect over TLS
  termirc -T user@gateway <host> [port]       Connect through an SSH tunnel

Options:
`, version)
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, `
Examples:
  termirc                                     Then type /autojoin
  termirc -n alice -j '#go-nuts' irc.libera.chat
  termirc --tls irc.libera.chat               Port 6697
  termirc -T admin@bastion irc.internal 6667  SSH tunnel
  termirc -c ~/irc/work.scfg                  Use another config file

Configuration is read from %s,
then TERMIRC_* environment variables, then flags.
`, config.DefaultConfigPath())
}
