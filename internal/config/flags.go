package config

import "github.com/spf13/pflag"

// BindScanFlags registers the flags that shape a scan.
func BindScanFlags(flags *pflag.FlagSet, config *Config) {
	flags.IntVarP(&config.MaxDepth, "max-depth", "d", config.MaxDepth, "Maximum depth to descend (-1 for unlimited)")
	flags.StringSliceVarP(&config.ExcludePatterns, "exclude", "e", config.ExcludePatterns, "Skip paths matching pattern (*suffix, prefix*, or substring); repeatable")
}

// BindDeleteFlags registers the flags that shape a deletion.
func BindDeleteFlags(flags *pflag.FlagSet, config *Config) {
	flags.BoolVar(&config.SafeMode, "safe-mode", config.SafeMode, "Refuse critical and system paths")
	flags.BoolVar(&config.UseTrash, "trash", config.UseTrash, "Move to the trash instead of removing permanently")
}

// BindGlobalFlags registers flags shared by every command.
func BindGlobalFlags(flags *pflag.FlagSet, config *Config) {
	flags.StringVar(&config.LogLevel, "log-level", config.LogLevel, "Log level (debug, info, warn, error)")
	flags.StringVar(&config.LogFile, "log-file", config.LogFile, "Write logs to this file")
}
