// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/bethropolis/ebb/internal/logger"
)

// Config holds the application's combined configuration.
type Config struct {
	Logger  logger.Config `toml:"logger"`
	History HistoryConfig `toml:"history"`
	Editor  EditorConfig  `toml:"editor"`
	// Plugins holds free-form [plugins.<name>] tables, read by each plugin.
	Plugins map[string]map[string]interface{} `toml:"plugins"`
}

// HistoryConfig holds undo/redo settings.
type HistoryConfig struct {
	MaxUndo int `toml:"max_undo"` // Committed units kept; older ones are evicted
}

// EditorConfig holds editor-specific settings.
type EditorConfig struct {
	TabWidth        int  `toml:"tab_width"`
	SystemClipboard bool `toml:"system_clipboard"`
}

// NewDefaultConfig creates a Config struct with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		History: HistoryConfig{
			MaxUndo: DefaultMaxUndo,
		},
		Editor: EditorConfig{
			TabWidth:        DefaultTabWidth,
			SystemClipboard: SystemClipboard,
		},
	}
}

// PluginValue returns the value of key in the [plugins.<pluginName>] table.
func (c *Config) PluginValue(pluginName, key string) (interface{}, bool) {
	section, ok := c.Plugins[pluginName]
	if !ok {
		return nil, false
	}
	value, ok := section[key]
	return value, ok
}

// DefaultPath returns the config file location under the user config dir,
// or "" when that cannot be determined.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(configDir, AppName, DefaultConfigFileName)
}

// loadFromFile decodes filePath over cfg, so keys absent from the file keep
// the values already in cfg. A missing file is not an error.
func loadFromFile(filePath string, cfg *Config) ([]string, error) {
	_, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error checking config file '%s': %w", filePath, err)
	}

	metadata, err := toml.DecodeFile(filePath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file '%s': %w", filePath, err)
	}
	var undecoded []string
	for _, key := range metadata.Undecoded() {
		undecoded = append(undecoded, key.String())
	}
	return undecoded, nil
}

// validate checks config values and resets invalid ones to defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Editor.TabWidth <= 0 {
		c.Editor.TabWidth = defaults.Editor.TabWidth
	}
	if c.History.MaxUndo <= 0 {
		c.History.MaxUndo = defaults.History.MaxUndo
	}
	if _, ok := logger.ParseLevel(c.Logger.LogLevel); !ok {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
}

// LoadConfig orchestrates loading defaults, file, applying flags, and validation.
// configFilePath "" selects DefaultPath. flags may be nil.
//
// The logger is usually not initialised yet, so problems that are not fatal
// (unknown keys) are returned as warnings for the caller to log.
func LoadConfig(configFilePath string, flags *Flags) (cfg *Config, warnings []string, err error) {
	cfg = NewDefaultConfig()

	path := configFilePath
	if path == "" {
		path = DefaultPath()
	}
	if path != "" {
		undecoded, err := loadFromFile(path, cfg)
		if err != nil {
			return nil, nil, err
		}
		for _, key := range undecoded {
			warnings = append(warnings, fmt.Sprintf("config file '%s': unrecognized key %s", path, key))
		}
	}

	if flags != nil {
		flags.ApplyOverrides(cfg)
	}

	cfg.validate()
	return cfg, warnings, nil
}
