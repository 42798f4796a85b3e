//go:build linux

package system

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// Prefer /dev/tty (active VT), fallback to /dev/tty0.
var vtPaths = []string{"/dev/tty", "/dev/tty0"}

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console puts the active VT into graphics mode while the overlay owns the
// framebuffer, so the text console and its cursor don't bleed through.
type Console struct {
	Logger Logger
}

// Acquire switches to KD_GRAPHICS and hides the cursor. Both steps are attempted
// even if the first fails.
func (c Console) Acquire() error {
	modeErr := c.logged("KD_GRAPHICS", setKDMode(kdGraphics))
	cursorErr := c.logged("hide cursor", writeVT("\x1b[?25l"))
	return errors.Join(modeErr, cursorErr)
}

// Release restores the cursor and text mode.
func (c Console) Release() error {
	cursorErr := c.logged("show cursor", writeVT("\x1b[?25h"))
	modeErr := c.logged("KD_TEXT", setKDMode(kdText))
	return errors.Join(cursorErr, modeErr)
}

func (c Console) logged(step string, err error) error {
	if c.Logger == nil {
		return err
	}
	if err != nil {
		c.Logger.Errorf("tty", "%s failed: %v", step, err)
	} else {
		c.Logger.Infof("tty", "%s done", step)
	}
	return err
}

func setKDMode(mode int) error {
	return withVT(func(path string) error {
		fd, err := unix.Open(path, unix.O_RDONLY, 0)
		if err != nil {
			return err
		}
		defer unix.Close(fd)
		return unix.IoctlSetInt(fd, kdSetMode, mode)
	})
}

func writeVT(s string) error {
	return withVT(func(path string) error {
		f, err := os.OpenFile(path, os.O_WRONLY, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = f.WriteString(s)
		return err
	})
}

// withVT runs fn against each candidate VT until one succeeds.
func withVT(fn func(path string) error) error {
	var lastErr error
	for _, p := range vtPaths {
		err := fn(p)
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%s: %w", p, err)
	}
	return lastErr
}
