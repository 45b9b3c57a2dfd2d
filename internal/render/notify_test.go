package render

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestNotifier_Disabled(t *testing.T) {
	n := NewNotifier(false, nil, nil)
	called := false
	n.desktop = func(context.Context, string, string) error { called = true; return nil }
	if n.Notify("#go", "<bob> hi") || called {
		t.Error("disabled notifier must not notify")
	}
}

func TestNotifier_NilSafe(t *testing.T) {
	var n *Notifier
	if n.Notify("t", "b") {
		t.Error("nil notifier must not notify")
	}
}

func TestNotifier_Throttled(t *testing.T) {
	n := NewNotifier(true, nil, nil)
	var sent int
	n.desktop = func(context.Context, string, string) error { sent++; return nil }

	for i := 0; i < notifyBurst+5; i++ {
		n.Notify("#go", "<bob> hi")
	}
	if sent != notifyBurst {
		t.Errorf("sent %d notifications, want burst of %d", sent, notifyBurst)
	}
}

func TestNotifier_BellFallback(t *testing.T) {
	var bell bytes.Buffer
	n := NewNotifier(true, &bell, nil)
	n.desktop = func(context.Context, string, string) error { return errors.New("no session bus") }

	if !n.Notify("#go", "<bob> hi") {
		t.Fatal("expected the bell fallback to count as a notification")
	}
	if bell.String() != "\a" {
		t.Errorf("bell = %q", bell.String())
	}
}

func TestNotifier_HungDesktopTimesOut(t *testing.T) {
	var bell bytes.Buffer
	n := NewNotifier(true, &bell, nil)
	n.desktop = func(ctx context.Context, _, _ string) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("desktop call has no deadline")
			return nil
		}
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	n.Notify("#go", "<bob> hi")
	if d := time.Since(start); d > notifyTimeout+time.Second {
		t.Errorf("Notify blocked for %s", d)
	}
	if bell.String() != "\a" {
		t.Errorf("bell = %q, want a ring after the timeout", bell.String())
	}
}
