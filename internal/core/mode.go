// Package core is the orchestration layer of termirc.  It owns the
// command dispatcher, the client event loop that feeds it, and the
// builder that wires both to a connection from a Config.
//
// Architecture layers (bottom → top):
//
//	irc, transport  →  conn, session  →  core  →  cmd (CLI)
//
// The client loop is the only goroutine that calls the Dispatcher;
// the connection reader and the input reader both hand their lines to
// it over channels.
package core

import "context"

// Mode is a complete run of the program, from startup to teardown.
// [Client] is the interactive mode; the builder returns it as a Mode so
// the CLI only ever sees Run.
type Mode interface {
	Run(ctx context.Context) error
}
