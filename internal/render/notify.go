package render

import (
	"context"
	"io"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"termirc/util"
)

// Burst of three, then at most one notification every two seconds, so a
// busy channel cannot flood the desktop.
const (
	notifyEvery = 2 * time.Second
	notifyBurst = 3

	// notifyTimeout bounds one desktop call; a hung notification daemon
	// must not stall the client loop.
	notifyTimeout = time.Second
)

// Notifier raises a desktop notification for incoming messages, falling
// back to the terminal bell where no notification service answers.
type Notifier struct {
	enabled bool
	limiter *rate.Limiter
	logger  *util.Logger

	mu   sync.Mutex
	bell io.Writer

	// desktop is swapped out by tests.
	desktop func(ctx context.Context, title, body string) error
}

// NewNotifier returns a Notifier.  bell receives "\a" when the desktop
// path fails; it may be nil.
func NewNotifier(enabled bool, bell io.Writer, logger *util.Logger) *Notifier {
	if logger == nil {
		logger = util.NewLogger(0)
	}
	return &Notifier{
		enabled: enabled,
		limiter: rate.NewLimiter(rate.Every(notifyEvery), notifyBurst),
		logger:  logger,
		bell:    bell,
		desktop: desktopNotify,
	}
}

// Notify shows body under title.  It reports whether a notification was
// emitted; disabled or throttled calls return false.
func (n *Notifier) Notify(title, body string) bool {
	if n == nil || !n.enabled {
		return false
	}
	if !n.limiter.Allow() {
		n.logger.Debug("notification throttled: %s", title)
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := n.desktop(ctx, title, body); err != nil {
		n.logger.Debug("desktop notification: %v", err)
		n.ring()
	}
	return true
}

func (n *Notifier) ring() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bell != nil {
		io.WriteString(n.bell, "\a") //nolint:errcheck
	}
}
