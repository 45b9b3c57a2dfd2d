//go:build linux

package render

import (
	"context"

	"github.com/godbus/dbus/v5"
)

func desktopNotify(ctx context.Context, title, body string) error {
	conn, err := dbus.SessionBus()
	if err != nil {
		return err
	}
	var id uint32
	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	return obj.CallWithContext(ctx, "org.freedesktop.Notifications.Notify", 0, "termirc", uint32(0), "", title, body,
		[]string{}, map[string]dbus.Variant{
			"category": dbus.MakeVariant("im.received"),
			"urgency":  dbus.MakeVariant(uint8(1)), // Normal
		}, int32(-1)).Store(&id)
}
