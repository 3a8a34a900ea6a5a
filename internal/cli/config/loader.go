package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// maxUpwardSearchLevels limits how far up the directory tree to search for settings files.
const maxUpwardSearchLevels = 10

// Package-level koanf instance and settings file tracking
var (
	k              = koanf.New(".")
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// settingsFileIn returns the settings file in dir, if any.
func settingsFileIn(dir string) string {
	for _, name := range SettingsFiles {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// findSettingsFileUpward searches upward from startDir for a settings file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findSettingsFileUpward(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		if path := settingsFileIn(dir); path != "" {
			return path
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// startDir determines where to look for settings: --cwd, then FINDRULES_CWD,
// then the process working directory.
func startDir(flags *pflag.FlagSet) string {
	if flags != nil {
		if f := flags.Lookup("cwd"); f != nil && f.Changed && f.Value.String() != "" {
			return absOrClean(f.Value.String())
		}
	}
	if v := os.Getenv(EnvPrefix + "CWD"); v != "" {
		return absOrClean(v)
	}
	cwd, _ := os.Getwd()
	if cwd == "" {
		cwd = "."
	}
	return cwd
}

func absOrClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig resets the koanf instance. Used for testing.
func ResetConfig() {
	k = koanf.New(".")
	configFileUsed = ""
	currentConfig = nil
}

// LoadConfig loads settings from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > settings file > defaults.
// An empty settingsFile means search upward from the start directory.
func LoadConfig(settingsFile string, flags *pflag.FlagSet) (*Config, error) {
	// Reset koanf for fresh load
	k = koanf.New(".")

	start := startDir(flags)
	defaults := DefaultConfig()

	// 1. Load defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"cwd":          "",
		"config":       "",
		"library":      "",
		"output":       defaults.OutputFormat,
		"verbose":      false,
		"unused":       defaults.Unused,
		"deprecated":   defaults.Deprecated,
		"invalid":      defaults.Invalid,
		"current":      false,
		"available":    false,
		"chunk_size":   defaults.ChunkSize,
		"concurrency":  defaults.Concurrency,
		"missing_docs": defaults.MissingDocs,
		"docs_url":     "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load settings file
	if settingsFile != "" {
		configFileUsed = resolvePathRelativeTo(settingsFile, start)
	} else {
		configFileUsed = findSettingsFileUpward(start)
	}
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading settings file %s: %w", configFileUsed, err)
		}
	}

	// 3. Load environment variables (FINDRULES_ prefix)
	// Transform: FINDRULES_CHUNK_SIZE -> chunk_size
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and settings file)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			// --settings only selects the file, it is not a setting itself
			if f.Name == "settings" {
				return "", nil
			}
			// Transform kebab-case to snake_case for config keys
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode settings: %w", err)
	}

	// 6. Anchor paths. Values from flags or env are relative to the process
	// working directory; values from the settings file are relative to the file.
	cfg.ProjectRoot = start
	if cfg.Cwd != "" && configFileUsed != "" && !overridden(flags, "cwd") {
		cfg.ProjectRoot = anchor(cfg.Cwd, flags, "cwd")
	}
	cfg.StylelintConfig = anchor(cfg.StylelintConfig, flags, "config")
	cfg.Library = anchor(cfg.Library, flags, "library")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// overridden reports whether key was set through the environment or a flag.
func overridden(flags *pflag.FlagSet, key string) bool {
	if os.Getenv(EnvPrefix+strings.ToUpper(key)) != "" {
		return true
	}
	if flags == nil {
		return false
	}
	f := flags.Lookup(strings.ReplaceAll(key, "_", "-"))
	return f != nil && f.Changed
}

// anchor makes path absolute against the directory its value came from.
func anchor(path string, flags *pflag.FlagSet, key string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if configFileUsed != "" && !overridden(flags, key) {
		base := filepath.Dir(absOrClean(configFileUsed))
		return absOrClean(resolvePathRelativeTo(path, base))
	}
	return absOrClean(path)
}

// GetConfigFileUsed returns the path to the settings file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded settings.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// LoggerKey returns the context key used for storing the logger.
// This allows the commands package to retrieve the logger from context
// without creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return slog.New(slog.DiscardHandler)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

// NewLogger builds the CLI logger: text on w, Debug when verbose, Warn otherwise.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
