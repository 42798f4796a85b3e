package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rook-computer/reticle/internal/app/screens"
	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/reticle"
	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
)

const DefaultFrameRate = 30

var ErrStopped = errors.New("app stopped")

// Console switches the output device in and out of graphics mode.
type Console interface {
	Acquire() error
	Release() error
}

// App owns the overlay: one reticle, one settings source, one renderer. Every event
// is handled on the goroutine running Start, so none of them need locking.
type App struct {
	Store     *state.Store
	Render    render.Renderer
	Settings  *settings.Node
	Doc       *svg.Document
	Reticle   *reticle.Reticle
	Console   Console
	Logger    Logger
	FrameRate int
	Debug     bool
	// HotkeyLabel is the key name shown on the menu.
	HotkeyLabel string

	reticleScreen render.Screen
	menuScreen    render.Screen
	currentScreen render.Screen
	dirty         bool

	events   chan Event
	done     chan struct{}
	exitOnce atomic.Bool
	exitCh   chan error
}

func New(store *state.Store, renderer render.Renderer, node *settings.Node, doc *svg.Document, ret *reticle.Reticle) *App {
	return &App{
		Store:     store,
		Render:    renderer,
		Settings:  node,
		Doc:       doc,
		Reticle:   ret,
		Logger:    NoopLogger{},
		FrameRate: DefaultFrameRate,
		events:    make(chan Event, 64),
		done:      make(chan struct{}),
		exitCh:    make(chan error, 1),
	}
}

// Post queues an event for the event loop. It blocks while the queue is full and
// returns ErrStopped once the app has stopped.
func (app *App) Post(ev Event) error {
	select {
	case <-app.done:
		return ErrStopped
	default:
	}
	select {
	case app.events <- ev:
		return nil
	case <-app.done:
		return ErrStopped
	}
}

// Exit requests the app to stop running.
func (app *App) Exit(err error) {
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Dispatch handles one event. It must only be called from the event loop, or
// directly when no loop is running.
func (app *App) Dispatch(ev Event) {
	if app.Debug && ev.Kind != Tick {
		app.Logger.Infof("app", "event %s keys=%q hotkey=%q ingame=%t size=%dx%d", ev.Kind, ev.Keys, ev.Hotkey, ev.InGame, ev.Width, ev.Height)
	}
	switch ev.Kind {
	case SettingsChanged:
		app.renderReticle()
	case Resized:
		if ev.Width <= 0 || ev.Height <= 0 {
			app.Logger.Errorf("app", "ignoring resize to %dx%d", ev.Width, ev.Height)
			return
		}
		app.Doc.Resize(ev.Width, ev.Height)
		app.Store.SetSize(ev.Width, ev.Height)
		app.renderReticle()
	case GameStateChanged:
		app.Store.SetInGame(ev.InGame)
		app.showMenu(!ev.InGame)
	case HotkeyPressed:
		if ev.Hotkey != HotkeyMenu {
			app.Logger.Infof("app", "unhandled hotkey %q", ev.Hotkey)
			return
		}
		app.showMenu(!app.Store.Snapshot().MenuVisible)
	case Tick:
		at := ev.At
		if at.IsZero() {
			at = time.Now()
		}
		app.Doc.Tick(at)
		if app.Reticle.Surface().Animating() {
			app.dirty = true
		}
	}
}

// Start runs the overlay until ctx is done or Exit is called.
func (app *App) Start(ctx context.Context) error {
	defer close(app.done)
	app.Store.SetPhase(state.BOOTING)

	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console != nil {
		if err := app.Console.Acquire(); err != nil {
			app.Logger.Errorf("tty", "set graphics mode failed: %v", err)
		}
		defer func() {
			if err := app.Console.Release(); err != nil {
				app.Logger.Errorf("tty", "restore text mode failed: %v", err)
			}
		}()
	}

	width, height := app.Render.Size()
	app.Dispatch(Event{Kind: Resized, Width: width, Height: height})

	app.reticleScreen = &screens.ReticleScreen{Surface: app.Reticle.Surface()}
	menu := screens.NewMenuScreen(app.Reticle.Surface(), app.Logger)
	if app.HotkeyLabel != "" {
		menu.HotkeyLabel = app.HotkeyLabel
	}
	app.menuScreen = menu
	if err := app.setScreen(ctx, app.reticleScreen); err != nil {
		return err
	}
	defer func() { _ = app.currentScreen.Stop() }()

	removeListener := app.Settings.OnChange(func(keys []string) {
		_ = app.Post(Event{Kind: SettingsChanged, Keys: keys})
	})
	defer removeListener()

	app.Store.SetPhase(state.READY)
	app.Logger.Infof("app", "overlay ready at %dx%d", width, height)
	app.frame(ctx)

	fps := app.FrameRate
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	defer app.Store.SetPhase(state.STOPPED)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-app.exitCh:
			return err
		case ev := <-app.events:
			app.Dispatch(ev)
		case now := <-ticker.C:
			app.Dispatch(Event{Kind: Tick, At: now})
			app.frame(ctx)
		}
	}
}

func (app *App) renderReticle() {
	app.Reticle.Render(app.Settings.Current())
	app.Store.CountRender()
	app.Store.SetProfile(app.Settings.ActiveProfile())
	app.dirty = true
}

func (app *App) showMenu(visible bool) {
	if !app.Store.SetMenuVisible(visible) {
		return
	}
	app.Logger.Infof("app", "menu visible=%t", visible)
	app.dirty = true
}

// frame redraws when something changed since the last frame, switching screens
// to follow menu visibility.
func (app *App) frame(ctx context.Context) {
	if !app.dirty {
		return
	}
	app.dirty = false
	snap := app.Store.Snapshot()
	next := app.reticleScreen
	if snap.MenuVisible {
		next = app.menuScreen
	}
	if next != nil && next != app.currentScreen {
		if err := app.setScreen(ctx, next); err != nil {
			app.Logger.Errorf("app", "switch screen failed: %v", err)
		}
	}
	app.Render.RedrawWithState(snap)
}

func (app *App) setScreen(ctx context.Context, screen render.Screen) error {
	if app.currentScreen != nil {
		_ = app.currentScreen.Stop()
	}
	app.currentScreen = screen
	app.Render.SetScreen(screen)
	return screen.Start(ctx)
}
