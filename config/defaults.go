package config

import (
	"os"
	"path/filepath"
	"time"
)

// ── Default values ───────────────────────────────────────────────────
//
// All tuneable defaults live here so they are easy to audit and reuse
// across CLI flags, config file parsing, and environment variable
// loading.

const (
	// DefaultPort is the plain-text IRC port.
	DefaultPort = 6667

	// DefaultTLSPort is the IRC-over-TLS port.
	DefaultTLSPort = 6697

	// DefaultSSHPort is the standard SSH port.
	DefaultSSHPort = 22

	// DefaultConnTimeout bounds each connect attempt.
	DefaultConnTimeout = 10 * time.Second

	// DefaultWriteTimeout bounds each line written to the server.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultKeepAliveInterval is the SSH keepalive interval in seconds.
	DefaultKeepAliveInterval = 30

	// DefaultUser is the username sent at registration.
	DefaultUser = "termirc"

	// DefaultRealName is the realname sent at registration.
	DefaultRealName = "Terminal IRC Client"

	// DefaultQuitMessage is the QUIT reason used on shutdown.
	DefaultQuitMessage = "Client Disconnected"

	// DefaultPartQuitReason is used by /quit without an argument.
	DefaultPartQuitReason = "Quit"

	// DefaultAutoJoinHost and DefaultAutoJoinChannel are what /autojoin
	// uses when no server or channel is configured.
	DefaultAutoJoinHost    = "irc.libera.chat"
	DefaultAutoJoinChannel = "#CoolDudes"

	// EnvPrefix prefixes every supported environment variable.
	EnvPrefix = "TERMIRC_"
)

// DefaultConfigPath returns $XDG_CONFIG_HOME/termirc/termirc.scfg (or
// the platform equivalent), or "" when no config directory exists.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termirc", "termirc.scfg")
}

// DefaultHistoryPath returns the readline history file next to the
// config file.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "termirc", "history")
}
