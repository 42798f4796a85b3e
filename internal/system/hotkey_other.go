//go:build !linux

package system

import "context"

// Hotkey binds a key code to the name reported when it is pressed.
type Hotkey struct {
	Code uint16
	Name string
}

// WatchHotkeys is unavailable without evdev.
func WatchHotkeys(ctx context.Context, logger Logger, hotkeys []Hotkey, onPress func(name string)) {
	if logger != nil {
		logger.Infof("input", "global hotkeys are only supported on linux")
	}
}
