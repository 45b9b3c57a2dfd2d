package irc

// ── Outgoing lines ───────────────────────────────────────────────────
//
// Each builder returns one protocol line without its CRLF terminator.
// Texts that may contain spaces always go in a ':' trailing parameter.

// Nick changes (or registers) the nickname.
func Nick(nick string) string { return "NICK " + nick }

// User is the second registration line.
func User(user, realname string) string {
	return "USER " + user + " 0 * :" + realname
}

// Join enters a channel.
func Join(channel string) string { return "JOIN " + channel }

// Part leaves a channel, with an optional reason.
func Part(channel, reason string) string {
	if reason == "" {
		return "PART " + channel
	}
	return "PART " + channel + " :" + reason
}

// Privmsg sends text to a channel or nick.
func Privmsg(target, text string) string {
	return "PRIVMSG " + target + " :" + text
}

// Action sends a CTCP ACTION (an emote) to target.
func Action(target, text string) string {
	return Privmsg(target, CTCPDelim+"ACTION "+text+CTCPDelim)
}

// Topic sets the channel topic, or asks for it when topic is empty.
func Topic(channel, topic string) string {
	if topic == "" {
		return "TOPIC " + channel
	}
	return "TOPIC " + channel + " :" + topic
}

// Names requests the member list of a channel.
func Names(channel string) string { return "NAMES " + channel }

// List requests the server's channel list.
func List() string { return "LIST" }

// Whois requests information about a nick.
func Whois(nick string) string { return "WHOIS " + nick }

// Quit ends the session on the server side.
func Quit(reason string) string { return "QUIT :" + reason }

// Pong answers a server PING; token is echoed verbatim.
func Pong(token string) string { return "PONG " + token }
