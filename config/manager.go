// Package config manages the settings document for the service. Settings
// live in a single JSON file next to the data directory; the provider
// credential can additionally be supplied through the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// envAPIKey overrides the persisted provider credential when set.
const envAPIKey = "TMDB_API_KEY"

// Settings is the full configuration document.
type Settings struct {
	Server  ServerSettings  `json:"server"`
	TMDB    TMDBSettings    `json:"tmdb"`
	Data    DataSettings    `json:"data"`
	Logging LoggingSettings `json:"logging"`
}

type ServerSettings struct {
	Listen string `json:"listen"`
}

type TMDBSettings struct {
	APIKey string `json:"apiKey"`
}

type DataSettings struct {
	// Dir holds the persisted library document.
	Dir string `json:"dir"`
	// FallbackDataset is the bundled popular-movies document served when
	// the provider is unreachable or unconfigured.
	FallbackDataset string `json:"fallbackDataset"`
}

type LoggingSettings struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// DefaultSettings returns the configuration used on first run.
func DefaultSettings() *Settings {
	return &Settings{
		Server: ServerSettings{
			Listen: ":8380",
		},
		TMDB: TMDBSettings{},
		Data: DataSettings{
			Dir:             "data",
			FallbackDataset: "data/fallback_popular.json",
		},
		Logging: LoggingSettings{
			File:       "data/reelfeed.log",
			MaxSizeMB:  25,
			MaxBackups: 3,
			MaxAgeDays: 14,
		},
	}
}

// Manager loads and saves the settings document.
type Manager struct {
	path string
	mu   sync.Mutex
}

// NewManager creates a manager for the settings file at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Load reads the settings document, falling back to defaults when it does
// not exist yet. The TMDB_API_KEY environment variable, when set, takes
// precedence over the persisted credential.
func (m *Manager) Load() (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	settings := DefaultSettings()

	data, err := os.ReadFile(m.path)
	switch {
	case os.IsNotExist(err):
		// First run, keep defaults.
	case err != nil:
		return nil, fmt.Errorf("read settings: %w", err)
	default:
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	}

	if key := os.Getenv(envAPIKey); key != "" {
		settings.TMDB.APIKey = key
	}
	return settings, nil
}

// Save writes the settings document, creating the parent directory when
// needed.
func (m *Manager) Save(settings *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := filepath.Dir(m.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
