package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gdamore/tcell/v2"
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
	listenAddr := flag.String("listen", "127.0.0.1:8080", "http listen address for the settings window")
	devMode := flag.Bool("dev", false, "enable dev mode (permissive CORS)")
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	dbPath := flag.String("db", "", "settings database path (default: in-memory)")
	snapshot := flag.String("snapshot", "", "render the reticle once to this .svg or .png file and exit")
	width := flag.Int("width", 200, "snapshot width")
	height := flag.Int("height", 200, "snapshot height")
	noSound := flag.Bool("no-sound", false, "disable the event chime")
	logPath := flag.String("log", "./reticle-sim.log", "log file; the terminal is used for the preview")
	flag.Parse()

	if err := config.Load(*configDir); err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}
	cfg, err := config.Get()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(2)
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Println("log open error:", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := app.NewFileLogger(logFile)
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	store, err := settings.Open(*dbPath, logger.Zerolog())
	if err != nil {
		fmt.Println("settings store error:", err)
		os.Exit(1)
	}
	defer store.Close()
	node := settings.NewNode(store)

	if *snapshot != "" {
		if err := writeSnapshot(*snapshot, node.Current(), *width, *height); err != nil {
			fmt.Println("snapshot error:", err)
			os.Exit(1)
		}
		fmt.Println("wrote", *snapshot)
		return
	}

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Watch(processCtx, cfg.SyncInterval)

	doc := svg.NewDocument(render.CanvasWidth, render.CanvasHeight)
	doc.AddSurface(cfg.SurfaceID)
	ret, err := reticle.New(doc, cfg.SurfaceID)
	if err != nil {
		fmt.Println("reticle error:", err)
		os.Exit(1)
	}

	stateStore := state.NewStore()
	renderer := &TUIRenderer{Logger: logger}
	a := app.New(stateStore, renderer, node, doc, ret)
	a.Logger = logger
	a.FrameRate = cfg.FrameRate
	a.HotkeyLabel = "M"

	var chime *Chime
	if !*noSound {
		chime = NewChime(logger)
	}
	control := &SimControl{App: a, Store: stateStore, Chime: chime}
	renderer.OnEvent = func(ev tcell.Event) {
		control.HandleTerminalEvent(ev, renderer.Size)
	}

	server := web.NewHTTPServer(
		web.ServerConfig{ListenAddr: *listenAddr, DevMode: *devMode, StaticDir: *staticDir},
		web.APIV1Deps{
			Settings:    node,
			SettingsURL: func() string { return stateStore.Snapshot().SettingsURL },
			Logger:      logger,
		},
	)
	server.Register = func(mux *http.ServeMux) { registerSimEndpoints(mux, control) }
	if err := server.Start(processCtx); err != nil {
		fmt.Println("server start error:", err)
		os.Exit(1)
	}
	defer server.Stop()
	stateStore.SetSettingsURL(system.SettingsURL(server.Addr(), ""))
	logger.Infof("main", "simulator listening on %s", server.Addr())

	// The overlay starts outside a game, with the menu up.
	go func() { _ = control.SetInGame(false) }()

	if err := a.Start(processCtx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Println("simulator error:", err)
		os.Exit(1)
	}
}

// writeSnapshot renders the stored settings once, as SVG or PNG depending on the
// file extension.
func writeSnapshot(path string, data settings.Settings, width, height int) error {
	doc := svg.NewDocument(width, height)
	doc.AddSurface("snapshot")
	ret, err := reticle.New(doc, "snapshot")
	if err != nil {
		return err
	}
	ret.Render(data)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		_, err = ret.Surface().WriteTo(f)
	case ".png":
		img := image.NewRGBA(image.Rect(0, 0, width, height))
		render.Rasterize(img, ret.Surface())
		err = png.Encode(f, img)
	default:
		err = fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}
