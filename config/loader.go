package config

// loader.go - configuration loading from environment variables.
//
// Precedence order (highest wins):
//   1. CLI flags  (handled by cmd/root.go)
//   2. Environment variables  (this file)
//   3. Config file  (file.go)
//   4. Defaults   (defaults.go)

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ── Environment variable mapping ─────────────────────────────────────
//
// Every supported env var uses the TERMIRC_ prefix.  Boolean values
// accept "1", "true", "yes" and "0", "false", "no" (case-insensitive).

// LoadFromEnv overlays environment variables onto cfg.  Only non-empty
// env vars override the existing value.  Call it after LoadFile and
// before binding CLI flags so that flags take precedence.
func LoadFromEnv(cfg *Config) {
	// Server
	envString("HOST", &cfg.Host)
	if v := envInt("PORT"); v > 0 {
		cfg.Port = v
	}
	envBool("TLS", &cfg.TLS)
	envBool("TLS_SKIP_VERIFY", &cfg.TLSSkipVerify)
	if v := envInt("TIMEOUT"); v > 0 {
		cfg.ConnTimeout = secondsDuration(v)
	}
	if v := envInt("RETRIES"); v > 0 {
		cfg.Retries = v
	}

	// Identity
	envString("NICK", &cfg.Nick)
	envString("USER", &cfg.User)
	envString("REALNAME", &cfg.RealName)
	envString("QUIT_MESSAGE", &cfg.QuitMessage)
	if v := env("CHANNELS"); v != "" {
		cfg.Channels = splitList(v)
	}

	// SSH tunnel
	envString("TUNNEL", &cfg.TunnelSpec)
	envString("SSH_KEY", &cfg.SSHKeyPath)
	envBool("SSH_PASSWORD", &cfg.SSHPassword)
	envBool("SSH_AGENT", &cfg.UseSSHAgent)
	envBool("STRICT_HOSTKEY", &cfg.StrictHostKey)
	envString("KNOWN_HOSTS", &cfg.KnownHostsPath)
	if v := envInt("KEEP_ALIVE"); v > 0 {
		cfg.KeepAliveInterval = v
	}

	// Terminal
	if on, ok := parseBool(env("NO_NOTIFY")); ok {
		cfg.Notify = !on
	}
	envString("HISTORY", &cfg.HistoryFile)

	// Output
	if v := envInt("VERBOSE"); v > 0 {
		cfg.Verbose = v
	}
}

// ConfigPathFromEnv returns TERMIRC_CONFIG, if set.
func ConfigPathFromEnv() string { return env("CONFIG") }

// ── helpers ──────────────────────────────────────────────────────────

func env(key string) string {
	return os.Getenv(EnvPrefix + key)
}

func envString(key string, dst *string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

func envInt(key string) int {
	v := env(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func envBool(key string, dst *bool) {
	if b, ok := parseBool(env(key)); ok {
		*dst = b
	}
}

func parseBool(v string) (value, ok bool) {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true, true
	case "0", "false", "no":
		return false, true
	}
	return false, false
}

func splitList(v string) []string {
	var out []string
	for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
		out = append(out, f)
	}
	return out
}

func secondsDuration(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
