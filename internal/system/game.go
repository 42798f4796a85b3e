package system

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const DefaultProcRoot = "/proc"

// commLen is TASK_COMM_LEN minus the terminating NUL: the kernel cuts longer
// executable names in /proc/<pid>/comm to this many bytes.
const commLen = 15

// GameWatcher reports whether any configured game process is running, by
// scanning <ProcRoot>/<pid>/comm.
type GameWatcher struct {
	ProcRoot  string
	Processes []string
	Interval  time.Duration
	Logger    Logger
}

// Detect returns the configured name of the first running game process, if any.
// Names match case-insensitively on their first 15 bytes, as comm shows them.
func (w GameWatcher) Detect() (string, bool) {
	if len(w.Processes) == 0 {
		return "", false
	}
	root := w.ProcRoot
	if root == "" {
		root = DefaultProcRoot
	}
	wanted := make(map[string]string, len(w.Processes))
	for _, p := range w.Processes {
		p = strings.TrimSpace(p)
		if p != "" {
			wanted[commKey(p)] = p
		}
	}
	comms, err := filepath.Glob(filepath.Join(root, "[0-9]*", "comm"))
	if err != nil {
		return "", false
	}
	for _, path := range comms {
		data, err := os.ReadFile(path)
		if err != nil {
			// Processes exit between glob and read.
			continue
		}
		if name, ok := wanted[commKey(strings.TrimSpace(string(data)))]; ok {
			return name, true
		}
	}
	return "", false
}

func commKey(name string) string {
	if len(name) > commLen {
		name = name[:commLen]
	}
	return strings.ToLower(name)
}

// Run polls until ctx is done, calling onChange with the initial state and then on
// every transition.
func (w GameWatcher) Run(ctx context.Context, onChange func(inGame bool)) {
	interval := w.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last, first := false, true
	for {
		name, inGame := w.Detect()
		if first || inGame != last {
			if w.Logger != nil {
				if inGame {
					w.Logger.Infof("game", "game running: %s", name)
				} else {
					w.Logger.Infof("game", "no game running")
				}
			}
			onChange(inGame)
			last, first = inGame, false
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
