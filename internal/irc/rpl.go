package irc

// IRC replies the client reacts to.  Everything else is shown as is.
const (
	RplWelcome = "001" // :Welcome to the Internet Relay Network <nick>!<user>@<host>

	ErrNicknameInUse = "433" // <nick> :Nickname is already in use
)
