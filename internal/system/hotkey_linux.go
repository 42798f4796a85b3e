//go:build linux

package system

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// Hotkey binds a key code to the name reported when it is pressed.
type Hotkey struct {
	Code uint16
	Name string
}

// WatchHotkeys watches Linux evdev devices under /dev/input/event* and calls onPress
// with the hotkey name every time one of the keys goes down. It returns once the
// readers are started.
//
// It is best-effort: if no input devices are available, it logs and returns.
func WatchHotkeys(ctx context.Context, logger Logger, hotkeys []Hotkey, onPress func(name string)) {
	if onPress == nil || len(hotkeys) == 0 {
		return
	}
	names := make(map[uint16]string, len(hotkeys))
	for _, h := range hotkeys {
		names[h.Code] = h.Name
	}

	// input_event = timeval + u16 type + u16 code + s32 value; timeval size is per arch.
	tvSize := binary.Size(unix.Timeval{})

	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		if logger != nil {
			logger.Infof("input", "no evdev devices found for hotkeys")
		}
		return
	}

	for _, path := range paths {
		go readDevice(ctx, logger, path, tvSize, func(code uint16) {
			if name, ok := names[code]; ok {
				if logger != nil {
					logger.Infof("input", "hotkey %s pressed", name)
				}
				onPress(name)
			}
		})
	}
}

func readDevice(ctx context.Context, logger Logger, path string, tvSize int, onKey func(code uint16)) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return
	}
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			if logger != nil {
				logger.Errorf("input", "poll %s: %v", path, err)
			}
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, code := range keyPresses(buf[:n], tvSize) {
			onKey(code)
		}
	}
}
