package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rook-computer/reticle/internal/app"
	"github.com/rook-computer/reticle/internal/config"
	"github.com/rook-computer/reticle/internal/render"
	"github.com/rook-computer/reticle/internal/reticle"
	"github.com/rook-computer/reticle/internal/settings"
	"github.com/rook-computer/reticle/internal/state"
	"github.com/rook-computer/reticle/internal/svg"
	"github.com/rook-computer/reticle/internal/system"
	"github.com/rook-computer/reticle/internal/web"
	"github.com/rs/zerolog"
)

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	debug := flag.Bool("debug", false, "log every app event and force debug log level")
	stdioLog := flag.String("stdio-log", "", "redirect stdout+stderr (including panics) to this file; also configurable via RETICLE_STDIO_LOG")
	flag.Parse()

	// Best-effort: redirect all stdout/stderr output (including panic stack traces)
	// to a file so crashes are diagnosable even when the console is left in graphics mode.
	logPath := *stdioLog
	if logPath == "" {
		logPath = os.Getenv("RETICLE_STDIO_LOG")
	}
	if logPath != "" {
		if err := redirectStdIO(logPath); err != nil {
			fmt.Println("stdio log redirect error:", err)
		}
	}

	if err := config.Load(*configDir); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	cfg, err := config.Get()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			fmt.Println("log open error:", err)
		} else {
			defer f.Close()
			out = f
		}
	}
	zl := zerolog.New(out).With().Timestamp().Logger()
	setLogLevel(cfg.LogLevel, *debug)
	logger := app.NewZeroLogger(zl)

	config.Watch(func(next config.Config, err error) {
		if err != nil {
			logger.Errorf("config", "reload failed: %v", err)
			return
		}
		setLogLevel(next.LogLevel, *debug)
		logger.Infof("config", "log level now %s", zerolog.GlobalLevel())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settings.Open(cfg.StoragePath, zl)
	if err != nil {
		logger.Errorf("main", "open settings store %s: %v", cfg.StoragePath, err)
		os.Exit(1)
	}
	defer store.Close()
	go store.Watch(ctx, cfg.SyncInterval)
	node := settings.NewNode(store)

	doc := svg.NewDocument(render.CanvasWidth, render.CanvasHeight)
	doc.AddSurface(cfg.SurfaceID)
	ret, err := reticle.New(doc, cfg.SurfaceID)
	if err != nil {
		logger.Errorf("main", "create reticle: %v", err)
		os.Exit(1)
	}

	stateStore := state.NewStore()
	renderer := render.NewFBRenderer(cfg.Framebuffer)
	renderer.Logger = logger
	renderer.Debug = *debug

	a := app.New(stateStore, renderer, node, doc, ret)
	a.Logger = logger
	a.Debug = *debug
	a.FrameRate = cfg.FrameRate
	a.HotkeyLabel = cfg.Hotkey.Key
	a.Console = system.Console{Logger: logger}

	settingsURL := cfg.SettingsURL
	if settingsURL == "" {
		lanIP, err := system.LANIPv4()
		if err != nil {
			logger.Infof("main", "lan address unknown: %v", err)
		}
		settingsURL = system.SettingsURL(cfg.Listen, lanIP)
	}
	stateStore.SetSettingsURL(settingsURL)

	server := web.NewHTTPServer(
		web.ServerConfig{ListenAddr: cfg.Listen, DevMode: cfg.DevMode},
		web.APIV1Deps{
			Settings:    node,
			SettingsURL: func() string { return stateStore.Snapshot().SettingsURL },
			Logger:      logger,
		},
	)
	if err := server.Start(ctx); err != nil {
		// The overlay still works without its settings window.
		logger.Errorf("main", "settings server: %v", err)
	} else {
		defer server.Stop()
		logger.Infof("main", "settings window at %s", settingsURL)
	}

	if code, err := system.KeyCode(cfg.Hotkey.Key); err != nil {
		logger.Errorf("main", "hotkey %q: %v", cfg.Hotkey.Key, err)
	} else {
		name := cfg.Hotkey.Name
		if name == "" {
			name = app.HotkeyMenu
		}
		system.WatchHotkeys(ctx, logger, []system.Hotkey{{Code: code, Name: name}}, func(name string) {
			_ = a.Post(app.Event{Kind: app.HotkeyPressed, Hotkey: name})
		})
	}

	if len(cfg.Game.Processes) > 0 {
		watcher := system.GameWatcher{
			ProcRoot:  cfg.Game.ProcRoot,
			Processes: cfg.Game.Processes,
			Interval:  cfg.Game.Interval,
			Logger:    logger,
		}
		go watcher.Run(ctx, func(inGame bool) {
			_ = a.Post(app.Event{Kind: app.GameStateChanged, InGame: inGame})
		})
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "overlay stopped: %v", err)
		os.Exit(1)
	}
}

func setLogLevel(name string, debug bool) {
	level, err := zerolog.ParseLevel(name)
	if err != nil || name == "" {
		level = zerolog.InfoLevel
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}
