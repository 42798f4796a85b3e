package main

import (
	"fmt"
	"os"
	"time"
)

// openStdIOLog opens the crash log for appending and marks where this run starts,
// so panics from consecutive runs can be told apart.
func openStdIOLog(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(f, "--- reticle pid %d started %s ---\n", os.Getpid(), time.Now().Format(time.RFC3339)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
