package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gdamore/tcell/v2"
	"github.com/rook-computer/reticle/internal/app"
	"github.com/rook-computer/reticle/internal/state"
)

// SimControl stands in for the overlay host: it turns keyboard input and /sim/*
// requests into app events.
type SimControl struct {
	App   *app.App
	Store *state.Store
	Chime *Chime
}

func (c *SimControl) Hotkey(name string) error {
	c.Chime.Play(880, 60*time.Millisecond)
	return c.App.Post(app.Event{Kind: app.HotkeyPressed, Hotkey: name})
}

func (c *SimControl) SetInGame(inGame bool) error {
	freq := 440.0
	if inGame {
		freq = 660
	}
	c.Chime.Play(freq, 120*time.Millisecond)
	return c.App.Post(app.Event{Kind: app.GameStateChanged, InGame: inGame})
}

func (c *SimControl) ToggleGame() error {
	return c.SetInGame(!c.Store.Snapshot().InGame)
}

func (c *SimControl) Resize(width, height int) error {
	return c.App.Post(app.Event{Kind: app.Resized, Width: width, Height: height})
}

// HandleTerminalEvent maps terminal input: m toggles the menu, g toggles the game,
// q / Esc / Ctrl-C quit.
func (c *SimControl) HandleTerminalEvent(ev tcell.Event, pixelSize func() (int, int)) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		w, h := pixelSize()
		_ = c.Resize(w, h)
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			c.App.Exit(nil)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				c.App.Exit(nil)
			case 'm':
				_ = c.Hotkey(app.HotkeyMenu)
			case 'g':
				_ = c.ToggleGame()
			}
		}
	}
}

type simStateResponse struct {
	Phase       int    `json:"phase"`
	InGame      bool   `json:"inGame"`
	MenuVisible bool   `json:"menuVisible"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Profile     string `json:"profile"`
	Renders     int    `json:"renders"`
}

func registerSimEndpoints(mux *http.ServeMux, control *SimControl) {
	mux.HandleFunc("/sim/state", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		snap := control.Store.Snapshot()
		writeSimJSON(w, http.StatusOK, simStateResponse{
			Phase:       int(snap.Phase),
			InGame:      snap.InGame,
			MenuVisible: snap.MenuVisible,
			Width:       snap.Width,
			Height:      snap.Height,
			Profile:     snap.Profile,
			Renders:     snap.Renders,
		})
	})

	// POST /sim/hotkey/{name}
	mux.HandleFunc("/sim/hotkey/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/sim/hotkey/"), "/")
		if name == "" {
			writeSimError(w, http.StatusBadRequest, "missing hotkey name")
			return
		}
		if err := control.Hotkey(name); err != nil {
			writeSimError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeSimJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	})

	// POST /sim/game {"inGame": true}
	mux.HandleFunc("/sim/game", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			InGame bool `json:"inGame"`
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body); err != nil {
			writeSimError(w, http.StatusBadRequest, "invalid json")
			return
		}
		if err := control.SetInGame(body.InGame); err != nil {
			writeSimError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeSimJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	})

	// POST /sim/resize {"width": 1920, "height": 1080}
	mux.HandleFunc("/sim/resize", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeSimError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		var body struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		}
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body); err != nil || body.Width <= 0 || body.Height <= 0 {
			writeSimError(w, http.StatusBadRequest, "width and height must be positive")
			return
		}
		if err := control.Resize(body.Width, body.Height); err != nil {
			writeSimError(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		writeSimJSON(w, http.StatusAccepted, map[string]bool{"ok": true})
	})
}

func writeSimJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(v)
}

func writeSimError(w http.ResponseWriter, status int, message string) {
	writeSimJSON(w, status, map[string]string{"error": message})
}
