//go:build !linux

package render

import (
	"context"
	"errors"
)

func desktopNotify(context.Context, string, string) error {
	return errors.New("desktop notifications are not supported on this platform")
}
