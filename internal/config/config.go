package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Version             int         `toml:"version"`
	Endpoint            string      `toml:"endpoint"`              // transcription server websocket URL
	Workbook            string      `toml:"workbook"`              // path to the .xlsx workbook
	Sheet               string      `toml:"sheet"`                 // worksheet name, "" means the active sheet
	HighlightColor      string      `toml:"highlight_color"`       // RGB hex without '#'
	AutoSearchThreshold int         `toml:"auto_search_threshold"` // transcript length that triggers auto-search
	InsecureSkipVerify  bool        `toml:"insecure_skip_verify"`  // accept the local dev certificate
	Log                 LogSettings `toml:"log"`
}

// LogSettings represents logging configuration
type LogSettings struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
}

// configService is the concrete implementation
type configService struct {
	filePath string
}

// NewConfigService creates a new config service
func NewConfigService() ConfigService {
	configDir, err := os.UserConfigDir()
	if err != nil {
		// Fallback to home directory
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}

	appDir := filepath.Join(configDir, "sheetscribe")
	os.MkdirAll(appDir, 0755)

	return &configService{
		filePath: filepath.Join(appDir, "config.toml"),
	}
}

// Load loads the configuration from the default path
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		// Return default config if file doesn't exist
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save saves the configuration to the default path
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:  1,
		Endpoint: "wss://localhost:8000/ws/transcribe",
		// The local STT server runs on office-addin dev certificates,
		// which no system trust store accepts.
		InsecureSkipVerify:  true,
		HighlightColor:      "FFFF00",
		AutoSearchThreshold: 12,
		Log: LogSettings{
			Level: "info",
			File:  "sheetscribe.log",
		},
	}
}
