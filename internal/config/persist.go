package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"diskscope/internal/domain"
)

const (
	configDirName  = "diskscope"
	configFileName = "config.json"
)

func DefaultConfig() Config {
	return Config{
		Path:            ".",
		MaxDepth:        UnlimitedDepth,
		ExcludePatterns: []string{},
		UseTrash:        true,
		SafeMode:        true,
		SortMode:        domain.SortBySize,
		Theme:           "dark",
		LogLevel:        "info",
		ListenAddr:      "127.0.0.1:7420",
		KeyBindings:     map[string]string{},
	}
}

func ConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, configDirName, configFileName), nil
}

func LoadConfig() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}
	return LoadConfigFrom(path)
}

// LoadConfigFrom merges the file at path over the defaults. A missing file
// is not an error.
func LoadConfigFrom(path string) (Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}
	var stored fileConfig
	if err := json.Unmarshal(data, &stored); err != nil {
		return config, fmt.Errorf("parse %s: %w", path, err)
	}
	return mergeConfig(config, stored), nil
}

func SaveConfig(config Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveConfigTo(path, config)
}

func SaveConfigTo(path string, config Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeConfig(base Config, stored fileConfig) Config {
	merged := base
	if stored.Path != nil {
		merged.Path = *stored.Path
	}
	if stored.MaxDepth != nil {
		merged.MaxDepth = *stored.MaxDepth
		if merged.MaxDepth < 0 {
			merged.MaxDepth = UnlimitedDepth
		}
	}
	if stored.ExcludePatterns != nil {
		merged.ExcludePatterns = stored.ExcludePatterns
	}
	if stored.UseTrash != nil {
		merged.UseTrash = *stored.UseTrash
	}
	if stored.SafeMode != nil {
		merged.SafeMode = *stored.SafeMode
	}
	if stored.SortMode != nil {
		merged.SortMode = domainSortMode(*stored.SortMode, base.SortMode)
	}
	if stored.Theme != nil {
		merged.Theme = *stored.Theme
	}
	if stored.LogLevel != nil {
		merged.LogLevel = *stored.LogLevel
	}
	if stored.LogFile != nil {
		merged.LogFile = *stored.LogFile
	}
	if stored.ListenAddr != nil {
		merged.ListenAddr = *stored.ListenAddr
	}
	if stored.KeyBindings != nil {
		merged.KeyBindings = stored.KeyBindings
	}
	return merged
}

func domainSortMode(value string, fallback domain.SortMode) domain.SortMode {
	switch domain.SortMode(value) {
	case domain.SortByName, domain.SortByMod, domain.SortBySize:
		return domain.SortMode(value)
	default:
		return fallback
	}
}
