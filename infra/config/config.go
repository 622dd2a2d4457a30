// Package config loads application configuration from the environment
// and an optional YAML file, and persists the small bit of UI state
// that survives restarts.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Backend selects the store implementation.
const (
	BackendMemory    = "memory"
	BackendPulsebase = "pulsebase"
)

// Config holds application-level configuration.
type Config struct {
	Backend    string // "memory" or "pulsebase"
	BackendURL string // Pulsebase base URL, https only
	APIKey     string // Pulsebase project API key
	LogFile    string // zap sink; the TUI owns the terminal
	StatePath  string // persisted UI state
}

// Load reads configuration from PULSE_* environment variables, falling
// back to ~/.config/pulse/config.yaml when present.
//
//	PULSE_BACKEND      - "memory" (default) or "pulsebase"
//	PULSE_BACKEND_URL  - Pulsebase base URL (required for pulsebase)
//	PULSE_API_KEY      - Pulsebase project API key
//	PULSE_LOG_FILE     - log file path (default: ~/.config/pulse/pulse.log)
//	PULSE_STATE_PATH   - UI state path (default: ~/.config/pulse/ui_state.json)
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	configDir := filepath.Join(home, ".config", "pulse")

	v := viper.New()
	v.SetEnvPrefix("PULSE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("backend", BackendMemory)
	v.SetDefault("backend_url", "")
	v.SetDefault("api_key", "")
	v.SetDefault("log_file", filepath.Join(configDir, "pulse.log"))
	v.SetDefault("state_path", filepath.Join(configDir, "ui_state.json"))

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Config{
		Backend:    v.GetString("backend"),
		BackendURL: v.GetString("backend_url"),
		APIKey:     v.GetString("api_key"),
		LogFile:    v.GetString("log_file"),
		StatePath:  v.GetString("state_path"),
	}

	switch cfg.Backend {
	case BackendMemory:
	case BackendPulsebase:
		if cfg.BackendURL == "" {
			return Config{}, fmt.Errorf("PULSE_BACKEND_URL is required for the %s backend", BackendPulsebase)
		}
		parsed, err := url.Parse(cfg.BackendURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return Config{}, fmt.Errorf("invalid PULSE_BACKEND_URL: must be an absolute URL")
		}
		if parsed.Scheme != "https" {
			return Config{}, fmt.Errorf("invalid PULSE_BACKEND_URL: only https is allowed")
		}
		cfg.BackendURL = strings.TrimRight(parsed.String(), "/")
	default:
		return Config{}, fmt.Errorf("unknown PULSE_BACKEND %q", cfg.Backend)
	}

	return cfg, nil
}

// UIState is the slice of interface state persisted across runs.
type UIState struct {
	View        string `json:"view,omitempty"`        // last active view
	ScopeUserID string `json:"scopeUserId,omitempty"` // "" means the all-posts feed
}

// LoadUIState reads persisted state. A missing file yields the zero state.
func LoadUIState(path string) (UIState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return UIState{}, nil
		}
		return UIState{}, fmt.Errorf("reading ui state: %w", err)
	}
	var st UIState
	if err := json.Unmarshal(data, &st); err != nil {
		return UIState{}, fmt.Errorf("parsing ui state: %w", err)
	}
	return st, nil
}

// SaveUIState writes state, creating the parent directory if needed.
func SaveUIState(path string, st UIState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding ui state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing ui state: %w", err)
	}
	return nil
}
