//go:build unix

package main

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// redirectStdIO points fds 1 and 2 at the log file, which also catches runtime
// panics and output from other goroutines.
func redirectStdIO(path string) error {
	f, err := openStdIOLog(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for _, fd := range []int{unix.Stdout, unix.Stderr} {
		if err := unix.Dup2(int(f.Fd()), fd); err != nil {
			return fmt.Errorf("dup2 onto fd %d: %w", fd, err)
		}
	}
	return nil
}
