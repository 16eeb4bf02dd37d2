package config

import "diskscope/internal/domain"

// UnlimitedDepth disables the scan depth limit.
const UnlimitedDepth = -1

type Config struct {
	Path            string            `json:"path"`
	MaxDepth        int               `json:"maxDepth"`
	ExcludePatterns []string          `json:"excludePatterns"`
	UseTrash        bool              `json:"useTrash"`
	SafeMode        bool              `json:"safeMode"`
	SortMode        domain.SortMode   `json:"sortMode"`
	Theme           string            `json:"theme"`
	LogLevel        string            `json:"logLevel"`
	LogFile         string            `json:"logFile,omitempty"`
	ListenAddr      string            `json:"listenAddr"`
	KeyBindings     map[string]string `json:"keyBindings"`
}

// DepthLimit converts MaxDepth into a scan depth limit, nil meaning none.
func (config Config) DepthLimit() *int {
	if config.MaxDepth < 0 {
		return nil
	}
	depth := config.MaxDepth
	return &depth
}

type fileConfig struct {
	Path            *string           `json:"path"`
	MaxDepth        *int              `json:"maxDepth"`
	ExcludePatterns []string          `json:"excludePatterns"`
	UseTrash        *bool             `json:"useTrash"`
	SafeMode        *bool             `json:"safeMode"`
	SortMode        *string           `json:"sortMode"`
	Theme           *string           `json:"theme"`
	LogLevel        *string           `json:"logLevel"`
	LogFile         *string           `json:"logFile"`
	ListenAddr      *string           `json:"listenAddr"`
	KeyBindings     map[string]string `json:"keyBindings"`
}
