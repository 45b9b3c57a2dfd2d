// Package config defines the runtime configuration for termirc and the
// helpers that fill it from a config file, the environment and flags.
package config

import (
	"fmt"
	osuser "os/user"
	"strings"
	"time"

	ircerr "termirc/internal/errors"
	"termirc/internal/irc"
	"termirc/util"
)

// Config holds every tuneable for one client process.
type Config struct {
	// ── Server ───────────────────────────────────────────────────────
	Host          string // empty: start offline, connect with /server
	Port          int    // 0: DefaultPort, or DefaultTLSPort with TLS
	TLS           bool
	TLSSkipVerify bool
	ConnTimeout   time.Duration
	Retries       int // extra connect attempts

	// ── Identity ─────────────────────────────────────────────────────
	Nick        string // empty: generated User<n>
	User        string
	RealName    string
	Channels    []string // joined once the server welcomes us
	QuitMessage string

	// ── SSH tunnel ───────────────────────────────────────────────────
	TunnelSpec        string // raw [user@]host[:port] from -T
	TunnelEnabled     bool
	TunnelUser        string
	TunnelHost        string
	TunnelPort        int
	SSHKeyPath        string
	SSHPassword       bool // true → prompt interactively
	UseSSHAgent       bool
	StrictHostKey     bool
	KnownHostsPath    string
	KeepAliveInterval int // seconds, 0 disables

	// ── Terminal ─────────────────────────────────────────────────────
	Notify      bool
	HistoryFile string

	// ── Output ───────────────────────────────────────────────────────
	ConfigPath string
	Verbose    int
	DryRun     bool
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		ConnTimeout:       DefaultConnTimeout,
		User:              DefaultUser,
		RealName:          DefaultRealName,
		QuitMessage:       DefaultQuitMessage,
		KeepAliveInterval: DefaultKeepAliveInterval,
		Notify:            true,
	}
}

// ServerPort returns Port, or the protocol default when it is unset.
func (c *Config) ServerPort() int {
	if c.Port > 0 {
		return c.Port
	}
	return DefaultPortFor(c.TLS)
}

// DefaultPortFor returns the conventional port for plain or TLS links.
func DefaultPortFor(tls bool) int {
	if tls {
		return DefaultTLSPort
	}
	return DefaultPort
}

// ── Tunnel-spec parser ───────────────────────────────────────────────

// ParseTunnelSpec extracts user, host, and port from a string such as
// "admin@bastion.example.com:2222".  Port defaults to 22; user may come
// back empty.
func ParseTunnelSpec(spec string) (user, host string, port int, err error) {
	user, host, port, err = util.SplitUserHostPort(spec, DefaultSSHPort)
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid tunnel spec %q, expected [user@]host[:port]: %w", spec, err)
	}
	return user, host, port, nil
}

// ApplyTunnelSpec parses TunnelSpec, if set, into the tunnel fields.
func (c *Config) ApplyTunnelSpec() error {
	if c.TunnelSpec == "" {
		return nil
	}
	user, host, port, err := ParseTunnelSpec(c.TunnelSpec)
	if err != nil {
		return &ircerr.ConfigError{Field: "tunnel", Value: c.TunnelSpec, Message: err.Error()}
	}
	if user == "" {
		if u, uerr := osuser.Current(); uerr == nil {
			user = u.Username
		}
	}
	c.TunnelEnabled = true
	c.TunnelUser = user
	c.TunnelHost = host
	c.TunnelPort = port
	return nil
}

// ── Validation ───────────────────────────────────────────────────────

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return &ircerr.ConfigError{Field: "port", Value: c.Port,
			Message: "out of range 1-65535"}
	}
	if c.Port > 0 && c.Host == "" {
		return &ircerr.ConfigError{Field: "port", Value: c.Port,
			Message: "a port needs a host", Hint: "termirc irc.libera.chat 6697"}
	}
	if strings.ContainsAny(c.Nick, " \t:") || strings.HasPrefix(c.Nick, "#") {
		return &ircerr.ConfigError{Field: "nick", Value: c.Nick,
			Message: "must not contain spaces or ':' nor start with '#'"}
	}
	if c.User == "" || strings.ContainsAny(c.User, " @") {
		return &ircerr.ConfigError{Field: "user", Value: c.User,
			Message: "must be a single word without '@'"}
	}
	for _, ch := range c.Channels {
		if !irc.IsChannel(ch) || strings.ContainsAny(ch, " ,") {
			return &ircerr.ConfigError{Field: "join", Value: ch,
				Message: "not a channel name", Hint: "channels start with '#'"}
		}
	}
	if c.ConnTimeout <= 0 {
		return &ircerr.ConfigError{Field: "timeout", Value: c.ConnTimeout,
			Message: "must be positive"}
	}
	if c.Retries < 0 {
		return &ircerr.ConfigError{Field: "retries", Value: c.Retries,
			Message: "must not be negative"}
	}
	if c.TLSSkipVerify && !c.TLS {
		return &ircerr.ConfigError{Field: "tls-skip-verify",
			Message: "only makes sense with --tls"}
	}

	if c.TunnelEnabled {
		if c.TunnelHost == "" {
			return &ircerr.ConfigError{Field: "tunnel", Message: "tunnel host is required"}
		}
		if c.TunnelPort < 1 || c.TunnelPort > 65535 {
			return &ircerr.ConfigError{Field: "tunnel", Value: c.TunnelPort,
				Message: "tunnel port out of range 1-65535"}
		}
	} else if c.SSHKeyPath != "" || c.SSHPassword || c.UseSSHAgent {
		return &ircerr.ConfigError{Field: "ssh-key",
			Message: "SSH options require --tunnel"}
	}
	return nil
}
