package web

import (
	"github.com/rook-computer/reticle/internal/settings"
)

// SettingsNode is the settings window's view of the settings store. *settings.Node
// implements it.
type SettingsNode interface {
	Current() settings.Settings
	Apply(values map[string]any) error
	RestoreDefaults() error

	Profiles() []string
	ActiveProfile() string
	SaveProfile(label string) error
	LoadProfile(label string) error
	RemoveProfile(label string) error

	Export() ([]byte, error)
	Import(data []byte) error
}

// Logger matches the app logger shape so callers can pass it without adapters.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type APIV1Deps struct {
	Settings SettingsNode

	// SettingsURL returns the address encoded by GET /qr.
	SettingsURL func() string

	Logger Logger
}

type noopLogger struct{}

func (noopLogger) Infof(string, string, ...interface{})  {}
func (noopLogger) Errorf(string, string, ...interface{}) {}

func (d APIV1Deps) withDefaults() APIV1Deps {
	out := d
	if out.SettingsURL == nil {
		out.SettingsURL = func() string { return "" }
	}
	if out.Logger == nil {
		out.Logger = noopLogger{}
	}
	return out
}
