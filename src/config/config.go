package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ConfigPathEnvVar = "SCREEN_SNIP"
	DefaultHotkey    = "Ctrl+Alt+S"

	DefaultOverlayOpacity = 0.3
	DefaultWindowWidth    = 300
	DefaultWindowHeight   = 200
)

type LoadOptions struct {
	EnvPathOverride string
	HotkeyOverride  string
}

type Config struct {
	EnableFileLogging bool
	// Hotkey is empty when the global hotkey is disabled.
	Hotkey         string
	OverlayOpacity float64
	SaveDir        string
	WindowWidth    int
	WindowHeight   int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) explicit override path
	// 2) .env in the application (executable) directory
	// 3) SCREEN_SNIP env var as a path to a config file
	envPath := resolveEnvPath(opts)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	hotkey := getEnvWithDefault("HOTKEY", DefaultHotkey)
	if override := strings.TrimSpace(opts.HotkeyOverride); override != "" {
		hotkey = override
	}

	cfg := &Config{
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		Hotkey:            resolveHotkey(hotkey),
		OverlayOpacity:    resolveOpacity(os.Getenv("OVERLAY_OPACITY")),
		SaveDir:           strings.TrimSpace(os.Getenv("SAVE_DIR")),
		WindowWidth:       positiveIntEnv("WINDOW_WIDTH", DefaultWindowWidth),
		WindowHeight:      positiveIntEnv("WINDOW_HEIGHT", DefaultWindowHeight),
	}

	return cfg, nil
}

func resolveEnvPath(opts LoadOptions) string {
	if p := strings.TrimSpace(opts.EnvPathOverride); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if execPath, err := os.Executable(); err == nil {
		exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
		if _, err := os.Stat(exeEnv); err == nil {
			return exeEnv
		}
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func resolveHotkey(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "", "none", "off", "disabled":
		return ""
	}
	return value
}

// resolveOpacity accepts values in (0,1]; anything else falls back to the default.
func resolveOpacity(value string) float64 {
	if value == "" {
		return DefaultOverlayOpacity
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || f <= 0 || f > 1 {
		return DefaultOverlayOpacity
	}
	return f
}

func positiveIntEnv(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
