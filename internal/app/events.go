package app

import (
	"fmt"
	"time"
)

// HotkeyMenu is the hotkey name that toggles the settings menu.
const HotkeyMenu = "reticle_menu"

type EventKind int

const (
	SettingsChanged EventKind = iota
	Resized
	GameStateChanged
	HotkeyPressed
	Tick
)

func (k EventKind) String() string {
	switch k {
	case SettingsChanged:
		return "SettingsChanged"
	case Resized:
		return "Resized"
	case GameStateChanged:
		return "GameStateChanged"
	case HotkeyPressed:
		return "HotkeyPressed"
	case Tick:
		return "Tick"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is everything the overlay reacts to. Only the fields relevant to Kind are set.
type Event struct {
	Kind EventKind

	Keys   []string // SettingsChanged: the storage keys written together
	Width  int      // Resized
	Height int      // Resized
	InGame bool     // GameStateChanged
	Hotkey string   // HotkeyPressed
	At     time.Time
}
