// Package config loads and validates the mudra configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration.
type Config struct {
	Camera   CameraConfig         `yaml:"camera"`
	Detector DetectorConfig       `yaml:"detector"`
	Apps     map[string]AppConfig `yaml:"apps"`
	Process  ProcessConfig        `yaml:"process"`
	Keyboard KeyboardConfig       `yaml:"keyboard"`
	Display  DisplayConfig        `yaml:"display"`
	Server   ServerConfig         `yaml:"server"`
	Store    StoreConfig          `yaml:"store"`
	Logging  LoggingConfig        `yaml:"logging"`
	Tray     TrayConfig           `yaml:"tray"`
}

type CameraConfig struct {
	DeviceID int `yaml:"device_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
}

type DetectorConfig struct {
	MaxHands          int     `yaml:"max_hands"`
	MinConfidence     float64 `yaml:"min_confidence"`
	MinTrackingConf   float64 `yaml:"min_tracking_confidence"`
	ScriptPath        string  `yaml:"script_path,omitempty"`
	PythonPath        string  `yaml:"python_path,omitempty"`
	AllowMockFallback bool    `yaml:"allow_mock_fallback"`
}

// AppConfig describes one controllable application. Paths are tried in
// order; later entries are only used when earlier executables are missing.
type AppConfig struct {
	Paths       []string `yaml:"paths"`
	Args        []string `yaml:"args,omitempty"`
	ProcessName string   `yaml:"process_name"`
}

type ProcessConfig struct {
	// TerminateCommand is the force-kill prefix; the process name is appended.
	TerminateCommand []string `yaml:"terminate_command"`
	TimeoutMS        int      `yaml:"timeout_ms"`
}

type KeyboardConfig struct {
	OriginX int `yaml:"origin_x"`
	OriginY int `yaml:"origin_y"`
	KeySize int `yaml:"key_size"`
	Gap     int `yaml:"gap"`
}

type DisplayConfig struct {
	WindowTitle string `yaml:"window_title"`
	Headless    bool   `yaml:"headless"`
	ExitKey     int    `yaml:"exit_key"`
	DrawHands   bool   `yaml:"draw_hands"`
}

type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type StoreConfig struct {
	// Path of the sqlite journal. Empty disables the journal.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type TrayConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns a fully-populated Config for the current platform.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			DeviceID: 0,
			Width:    640,
			Height:   480,
		},
		Detector: DetectorConfig{
			MaxHands:        2,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
		},
		Apps:    defaultApps(),
		Process: ProcessConfig{TerminateCommand: defaultTerminateCommand(), TimeoutMS: 5000},
		Keyboard: KeyboardConfig{
			OriginX: 50,
			OriginY: 50,
			KeySize: 50,
			Gap:     10,
		},
		Display: DisplayConfig{
			WindowTitle: "mudra",
			ExitKey:     27,
			DrawHands:   true,
		},
		Server: ServerConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8080",
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file on top of Default. Unknown fields are rejected.
func Load(path string) (Config, error) {
	if path == "" {
		return Config{}, errors.New("config path is empty")
	}
	b, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML on top of Default.
func Parse(b []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config yaml: %w", err)
	}

	var trailing yaml.Node
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return Config{}, errors.New("decode config yaml: unexpected trailing document")
	}

	return cfg, nil
}

// FlagOverrides carries command line values. Nil pointers are ignored.
type FlagOverrides struct {
	CameraID  *int
	Width     *int
	Height    *int
	Headless  *bool
	Tray      *bool
	ServeAddr *string
	StorePath *string
	LogLevel  *string
}

// Apply merges the overrides into cfg.
func (o FlagOverrides) Apply(cfg *Config) {
	if cfg == nil {
		return
	}
	if o.CameraID != nil {
		cfg.Camera.DeviceID = *o.CameraID
	}
	if o.Width != nil {
		cfg.Camera.Width = *o.Width
	}
	if o.Height != nil {
		cfg.Camera.Height = *o.Height
	}
	if o.Headless != nil {
		cfg.Display.Headless = *o.Headless
	}
	if o.Tray != nil {
		cfg.Tray.Enabled = *o.Tray
	}
	if o.ServeAddr != nil {
		cfg.Server.Addr = *o.ServeAddr
		cfg.Server.Enabled = *o.ServeAddr != ""
	}
	if o.StorePath != nil {
		cfg.Store.Path = *o.StorePath
	}
	if o.LogLevel != nil {
		cfg.Logging.Level = *o.LogLevel
	}
}

// Validate checks config invariants after defaults, file and overrides are applied.
func (c *Config) Validate() error {
	if c.Camera.DeviceID < 0 {
		return errors.New("camera.device_id must be >= 0")
	}
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be > 0")
	}

	if c.Detector.MaxHands <= 0 {
		return errors.New("detector.max_hands must be > 0")
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		return errors.New("detector.min_confidence must be between 0 and 1")
	}
	if c.Detector.MinTrackingConf < 0 || c.Detector.MinTrackingConf > 1 {
		return errors.New("detector.min_tracking_confidence must be between 0 and 1")
	}

	for _, name := range []string{"notepad", "browser", "calculator"} {
		app, ok := c.Apps[name]
		if !ok {
			return fmt.Errorf("apps.%s is missing", name)
		}
		if len(app.Paths) == 0 {
			return fmt.Errorf("apps.%s.paths must not be empty", name)
		}
		for i, p := range app.Paths {
			if strings.TrimSpace(p) == "" {
				return fmt.Errorf("apps.%s.paths[%d] is empty", name, i)
			}
		}
		if app.ProcessName == "" {
			return fmt.Errorf("apps.%s.process_name must not be empty", name)
		}
	}

	if len(c.Process.TerminateCommand) == 0 || c.Process.TerminateCommand[0] == "" {
		return errors.New("process.terminate_command must not be empty")
	}
	if c.Process.TimeoutMS <= 0 {
		return errors.New("process.timeout_ms must be > 0")
	}

	if c.Keyboard.KeySize <= 0 {
		return errors.New("keyboard.key_size must be > 0")
	}
	if c.Keyboard.Gap < 0 || c.Keyboard.OriginX < 0 || c.Keyboard.OriginY < 0 {
		return errors.New("keyboard.origin_x, origin_y and gap must be >= 0")
	}

	if c.Server.Enabled && c.Server.Addr == "" {
		return errors.New("server.enabled is true but server.addr is empty")
	}

	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".mudra", "mudra.db")
}
