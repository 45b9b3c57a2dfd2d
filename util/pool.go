package util

import "sync"

// MaxLineSize bounds one line of input, from the server or the user.
// The protocol allows 512 bytes plus 8 KiB of tags; anything longer is
// a broken peer.
const MaxLineSize = 16 * 1024

var lineBuffers = sync.Pool{ //nolint:gochecknoglobals
	New: func() any {
		b := make([]byte, MaxLineSize)
		return &b
	},
}

// LineBuffer returns a MaxLineSize scanner buffer.  A reconnect reuses
// the buffer released by the previous connection's reader.
func LineBuffer() *[]byte { return lineBuffers.Get().(*[]byte) }

// ReleaseLineBuffer hands b back for the next reader.  nil is ignored.
func ReleaseLineBuffer(b *[]byte) {
	if b != nil && len(*b) == MaxLineSize {
		lineBuffers.Put(b)
	}
}
