// Package daemon manages the countdown daemon lifecycle and configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tutu-network/countdown/internal/app/countdown"
	"github.com/tutu-network/countdown/internal/domain"
	"github.com/tutu-network/countdown/internal/infra/alert"
	"github.com/tutu-network/countdown/internal/logging"
)

// Config holds all daemon configuration.
type Config struct {
	Timer     TimerConfig     `toml:"timer"`
	API       APIConfig       `toml:"api"`
	Alert     AlertConfig     `toml:"alert"`
	Logging   LoggingConfig   `toml:"logging"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// TimerConfig controls the countdown session.
type TimerConfig struct {
	DefaultInput   string `toml:"default_input"`
	TickInterval   string `toml:"tick_interval"`
	MaxInputLength int    `toml:"max_input_length"`
	AutoStart      bool   `toml:"auto_start"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// AlertConfig controls the completion alert.
type AlertConfig struct {
	SoundFile string `toml:"sound_file"`
	Player    string `toml:"player"`
	Notifier  string `toml:"notifier"`
	Title     string `toml:"title"`
	Body      string `toml:"body"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// TelemetryConfig controls the Prometheus endpoint.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() Config {
	homeDir := countdownHome()
	msg := domain.DefaultAlertMessage()
	return Config{
		Timer: TimerConfig{
			DefaultInput:   countdown.DefaultInput,
			TickInterval:   "1s",
			MaxInputLength: countdown.DefaultMaxInputLength,
		},
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 11435,
		},
		Alert: AlertConfig{
			SoundFile: filepath.Join(homeDir, "sounds", "alert.wav"),
			Player:    "paplay",
			Notifier:  "notify-send --icon=alarm-symbolic",
			Title:     msg.Title,
			Body:      msg.Body,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "countdown.log"),
		},
	}
}

// LoadConfig reads config from ~/.countdown/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFile(ConfigPath())
}

// LoadConfigFile reads config from path. Keys missing from the file keep
// their default values.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Timer.TickInterval != "" {
		if _, err := time.ParseDuration(cfg.Timer.TickInterval); err != nil {
			return cfg, fmt.Errorf("parse config: timer.tick_interval: %w", err)
		}
	}
	return cfg, nil
}

// SaveConfig writes the config to ~/.countdown/config.toml.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ConfigPath returns the location of the config file.
func ConfigPath() string {
	return filepath.Join(countdownHome(), "config.toml")
}

// ─── Component Configs ──────────────────────────────────────────────────────

// SessionConfig converts the [timer] section for the countdown service.
func (c Config) SessionConfig() countdown.Config {
	return countdown.Config{
		DefaultInput:   c.Timer.DefaultInput,
		TickInterval:   parseDuration(c.Timer.TickInterval, time.Second),
		MaxInputLength: c.Timer.MaxInputLength,
		AutoStart:      c.Timer.AutoStart,
	}
}

// AlertConfig converts the [alert] section for the alert dispatcher.
func (c Config) AlertConfig() alert.Config {
	return alert.Config{
		SoundFile: c.Alert.SoundFile,
		Player:    c.Alert.Player,
		Notifier:  c.Alert.Notifier,
		Message: domain.AlertMessage{
			Title: c.Alert.Title,
			Body:  c.Alert.Body,
		},
	}
}

// LoggingOptions converts the [logging] section.
func (c Config) LoggingOptions() logging.Options {
	return logging.Options{Level: c.Logging.Level, File: c.Logging.File}
}

// Addr returns the host:port the API listens on.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

// countdownHome returns the countdown data directory.
func countdownHome() string {
	if env := os.Getenv("COUNTDOWN_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".countdown")
}

// Home is exported for use by other packages.
func Home() string {
	return countdownHome()
}

// parseDuration parses a duration string, returning a fallback on error.
func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
