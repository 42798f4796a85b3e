package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

const FileName = "reticle.cfg.json"

type HotkeyConfig struct {
	Key  string `json:"key" mapstructure:"key"`
	Name string `json:"name" mapstructure:"name"`
}

type GameConfig struct {
	Processes []string      `json:"processes" mapstructure:"processes"`
	ProcRoot  string        `json:"procRoot" mapstructure:"procRoot"`
	Interval  time.Duration `json:"interval" mapstructure:"interval"`
}

// Config is the overlay process configuration. Reticle appearance lives in the
// settings store, not here.
type Config struct {
	LogLevel     string        `json:"logLevel" mapstructure:"logLevel"`
	LogFile      string        `json:"logFile" mapstructure:"logFile"`
	StoragePath  string        `json:"storagePath" mapstructure:"storagePath"`
	SyncInterval time.Duration `json:"syncInterval" mapstructure:"syncInterval"`
	SurfaceID    string        `json:"surfaceId" mapstructure:"surfaceId"`
	Framebuffer  string        `json:"framebuffer" mapstructure:"framebuffer"`
	FrameRate    int           `json:"frameRate" mapstructure:"frameRate"`
	Listen       string        `json:"listen" mapstructure:"listen"`
	SettingsURL  string        `json:"settingsUrl" mapstructure:"settingsUrl"`
	DevMode      bool          `json:"devMode" mapstructure:"devMode"`
	Hotkey       HotkeyConfig  `json:"hotkey" mapstructure:"hotkey"`
	Game         GameConfig    `json:"game" mapstructure:"game"`
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFile", "")
	viper.SetDefault("storagePath", "./reticle.db")
	viper.SetDefault("syncInterval", "250ms")
	viper.SetDefault("surfaceId", "reticle")
	viper.SetDefault("framebuffer", "/dev/fb0")
	viper.SetDefault("frameRate", 30)
	viper.SetDefault("listen", ":8080")
	viper.SetDefault("settingsUrl", "")
	viper.SetDefault("devMode", false)

	viper.SetDefault("hotkey.key", "F10")
	viper.SetDefault("hotkey.name", "reticle_menu")

	viper.SetDefault("game.processes", []string{})
	viper.SetDefault("game.procRoot", "/proc")
	viper.SetDefault("game.interval", "2s")
}

// Load sets defaults, binds RETICLE_* environment variables and reads the JSON
// config file from configDir. A missing file is not an error.
func Load(configDir string) error {
	setDefaults()

	viper.SetEnvPrefix("RETICLE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("error reading config file: %v", err)
	}
	return nil
}

// Get decodes the current configuration.
func Get() (Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Watch calls onChange with the re-read configuration whenever the config file
// is written. Only some values (the log level) are applied live.
func Watch(onChange func(Config, error)) {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Get()
		onChange(cfg, err)
	})
	viper.WatchConfig()
}
