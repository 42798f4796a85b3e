//go:build !linux

package system

type Logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Console is a no-op outside Linux; there is no VT to switch.
type Console struct {
	Logger Logger
}

func (Console) Acquire() error { return nil }
func (Console) Release() error { return nil }
