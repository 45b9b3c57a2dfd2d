// Package errors provides domain-specific error types for termirc.
//
// These types carry structured context (operation, address, command
// usage) that lets the client loop decide how to report a failure
// without string matching.
package errors

import (
	"errors"
	"fmt"
	"net"
)

// ── Sentinel errors ──────────────────────────────────────────────────

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrNoTarget         = errors.New("no current target, use /join or /msg first")
	ErrTunnelClosed     = errors.New("tunnel is closed")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrHostKeyMismatch  = errors.New("host key mismatch")
)

// ── Structured error types ───────────────────────────────────────────

// Network operations reported through NetworkError.Op.
const (
	OpConnect = "connect"
	OpRead    = "read"
	OpWrite   = "write"
)

// NetworkError represents a failure in a network operation.
type NetworkError struct {
	Op        string // OpConnect, OpRead or OpWrite
	Addr      string // network address involved
	Err       error  // underlying error
	Retryable bool   // whether the caller should retry
}

func (e *NetworkError) Error() string {
	s := fmt.Sprintf("%s %s: %v", e.Op, e.Addr, e.Err)
	if e.Retryable {
		s += " (retryable)"
	}
	return s
}

func (e *NetworkError) Unwrap() error { return e.Err }

// UsageError reports a user command with the wrong arguments.  It is
// raised before any state change or traffic.
type UsageError struct {
	Command string // command name without the slash
	Usage   string // e.g. "/join <#channel>"
	Reason  string // optional detail
}

func (e *UsageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("usage: %s (%s)", e.Usage, e.Reason)
	}
	return "usage: " + e.Usage
}

// SSHError represents an SSH-specific failure with host context.
type SSHError struct {
	Op   string // "handshake", "auth", "dial"
	Host string
	Port int
	Err  error
}

func (e *SSHError) Error() string {
	return fmt.Sprintf("ssh %s %s:%d: %v", e.Op, e.Host, e.Port, e.Err)
}

func (e *SSHError) Unwrap() error { return e.Err }

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string      // config field name
	Value   interface{} // the invalid value (nil if missing)
	Message string      // human-readable explanation
	Hint    string      // suggestion for the user (optional)
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config: --%s", e.Field)
	if e.Value != nil {
		msg += fmt.Sprintf("=%v", e.Value)
	}
	msg += ": " + e.Message
	if e.Hint != "" {
		msg += "\n  hint: " + e.Hint
	}
	return msg
}

// ── Constructors ─────────────────────────────────────────────────────

// Wrap creates a NetworkError, automatically detecting retryability
// from the underlying error.
func Wrap(op, addr string, err error) *NetworkError {
	return &NetworkError{
		Op:        op,
		Addr:      addr,
		Err:       err,
		Retryable: classifyRetryable(err),
	}
}

// WrapSSH creates an SSHError.
func WrapSSH(op, host string, port int, err error) *SSHError {
	return &SSHError{Op: op, Host: host, Port: port, Err: err}
}

// Usage creates a UsageError.
func Usage(command, usage, reason string) *UsageError {
	return &UsageError{Command: command, Usage: usage, Reason: reason}
}

// ── Classification helpers ───────────────────────────────────────────

// IsConnectFailure reports whether err is a failed connection attempt.
func IsConnectFailure(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Op == OpConnect
}

// IsTransportFailure reports whether err is a read or write failure on
// an established connection.
func IsTransportFailure(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && (ne.Op == OpRead || ne.Op == OpWrite)
}

// IsUsage reports whether err is a UsageError.
func IsUsage(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Retryable
	}
	return classifyRetryable(err)
}

// classifyRetryable inspects standard library error types.
func classifyRetryable(err error) bool {
	if err == nil {
		return false
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() //nolint:staticcheck
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		return opErr.Temporary() //nolint:staticcheck // Temporary is deprecated but still useful
	}
	return false
}

// ── Re-exports for convenience ───────────────────────────────────────

// As is [errors.As].
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Is is [errors.Is].
func Is(err, target error) bool { return errors.Is(err, target) }

// New is [errors.New].
func New(text string) error { return errors.New(text) }

// Join is [errors.Join].
func Join(errs ...error) error { return errors.Join(errs...) }
