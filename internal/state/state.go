package state

import "sync"

type Phase int

const (
	BOOTING Phase = iota
	READY
	STOPPED
)

type State struct {
	Phase       Phase
	InGame      bool
	MenuVisible bool
	Width       int
	Height      int
	Profile     string
	SettingsURL string
	Renders     int
}

type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore() *Store {
	return &Store{state: State{Phase: BOOTING}}
}

func (store *Store) Snapshot() State {
	store.mu.RLock()
	defer store.mu.RUnlock()
	return store.state
}

func (store *Store) SetPhase(phase Phase) {
	store.mu.Lock()
	store.state.Phase = phase
	store.mu.Unlock()
}

func (store *Store) SetInGame(inGame bool) {
	store.mu.Lock()
	store.state.InGame = inGame
	store.mu.Unlock()
}

// SetMenuVisible records menu visibility and reports whether it changed.
func (store *Store) SetMenuVisible(visible bool) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	changed := store.state.MenuVisible != visible
	store.state.MenuVisible = visible
	return changed
}

func (store *Store) SetSize(width, height int) {
	store.mu.Lock()
	store.state.Width = width
	store.state.Height = height
	store.mu.Unlock()
}

func (store *Store) SetProfile(profile string) {
	store.mu.Lock()
	store.state.Profile = profile
	store.mu.Unlock()
}

func (store *Store) SetSettingsURL(url string) {
	store.mu.Lock()
	store.state.SettingsURL = url
	store.mu.Unlock()
}

// CountRender increments the number of reticle render passes.
func (store *Store) CountRender() {
	store.mu.Lock()
	store.state.Renders++
	store.mu.Unlock()
}
