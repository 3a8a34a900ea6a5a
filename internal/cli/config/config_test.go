package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFlags mirrors the subset of root flags that settings loading cares about.
func newFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("cwd", "", "working directory")
	flags.String("settings", "", "settings file")
	flags.String("config", "", "stylelint config")
	flags.String("library", "", "stylelint package")
	flags.StringP("output", "o", DefaultOutput, "output format")
	flags.Int("chunk-size", DefaultChunkSize, "bytes scanned per doc")
	flags.String("missing-docs", DefaultMissingDocs, "missing doc policy")
	flags.BoolP("current", "c", false, "show current rules")
	return flags
}

func writeSettings(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "findrules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()

	flags := newFlags()
	require.NoError(t, flags.Set("cwd", t.TempDir()))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.True(t, cfg.Unused)
	assert.True(t, cfg.Deprecated)
	assert.True(t, cfg.Invalid)
	assert.False(t, cfg.Current)
	assert.False(t, cfg.Available)
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize)
	assert.Equal(t, DefaultMissingDocs, cfg.MissingDocs)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_SettingsFoundUpward(t *testing.T) {
	ResetConfig()

	root := t.TempDir()
	nested := filepath.Join(root, "packages", "web")
	require.NoError(t, os.MkdirAll(nested, 0755))
	path := writeSettings(t, root, "current: true\nchunk_size: 2048\n")

	flags := newFlags()
	require.NoError(t, flags.Set("cwd", nested))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.True(t, cfg.Current)
	assert.Equal(t, 2048, cfg.ChunkSize)
	assert.Equal(t, nested, cfg.ProjectRoot)
}

func TestLoadConfig_ExplicitSettingsFile(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := writeSettings(t, dir, "output: json\n")

	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, path, GetConfigFileUsed())
}

func TestLoadConfig_MissingExplicitSettingsFile(t *testing.T) {
	ResetConfig()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), newFlags())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading settings file")
}

func TestLoadConfig_CwdInSettingsIsRelativeToFile(t *testing.T) {
	ResetConfig()

	root := t.TempDir()
	path := writeSettings(t, root, "cwd: site\n")

	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "site"), cfg.ProjectRoot)
}

func TestLoadConfig_PathsAnchoredToTheirSource(t *testing.T) {
	ResetConfig()

	root := t.TempDir()
	path := writeSettings(t, root, "config: lint/.stylelintrc.json\nlibrary: vendor/stylelint\n")

	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "lint", ".stylelintrc.json"), cfg.StylelintConfig)
	assert.Equal(t, filepath.Join(root, "vendor", "stylelint"), cfg.Library)

	ResetConfig()
	wd, err := os.Getwd()
	require.NoError(t, err)

	flags := newFlags()
	require.NoError(t, flags.Set("config", "other.json"))
	cfg, err = LoadConfig(path, flags)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "other.json"), cfg.StylelintConfig, "flag values are relative to the process")
	assert.Equal(t, filepath.Join(root, "vendor", "stylelint"), cfg.Library)
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and the settings file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := writeSettings(t, dir, "output: text\n")
	t.Setenv("FINDRULES_OUTPUT", "yaml")

	flags := newFlags()
	require.NoError(t, flags.Set("output", "json"))

	cfg, err := LoadConfig(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.OutputFormat, "flag value should override settings file and env var")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override the settings file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := writeSettings(t, dir, "output: text\nchunk_size: 10\n")
	t.Setenv("FINDRULES_OUTPUT", "yaml")
	t.Setenv("FINDRULES_CHUNK_SIZE", "4096")

	cfg, err := LoadConfig(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "yaml", cfg.OutputFormat, "env var should override settings file")
	assert.Equal(t, 4096, cfg.ChunkSize)
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()

	dir := t.TempDir()
	path := writeSettings(t, dir, "missing_docs: fatal\n")
	t.Setenv("FINDRULES_MISSING_DOCS", "skip")

	cfg, err := LoadConfig(path, newFlags())
	require.NoError(t, err)

	assert.Equal(t, "skip", cfg.MissingDocs, "env var should be used when flag is not set")
}

func TestLoadConfig_EnvCwd(t *testing.T) {
	ResetConfig()

	root := t.TempDir()
	path := writeSettings(t, root, "current: true\n")
	t.Setenv("FINDRULES_CWD", root)

	cfg, err := LoadConfig("", newFlags())
	require.NoError(t, err)

	assert.Equal(t, path, GetConfigFileUsed())
	assert.Equal(t, root, cfg.ProjectRoot)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		settings  string
		errSubstr string
	}{
		{"unknown output", "output: xml\n", "invalid output format"},
		{"unknown missing doc policy", "missing_docs: maybe\n", "missing"},
		{"negative chunk size", "chunk_size: -1\n", "chunk_size must not be negative"},
		{"negative concurrency", "concurrency: -2\n", "concurrency must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ResetConfig()
			path := writeSettings(t, t.TempDir(), tt.settings)

			_, err := LoadConfig(path, newFlags())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.Nil(t, GetCurrentConfig())
		})
	}
}

func TestConfig_HasSection(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.HasSection())

	cfg.Unused, cfg.Deprecated, cfg.Invalid = false, false, false
	assert.False(t, cfg.HasSection())

	cfg.Available = true
	assert.True(t, cfg.HasSection())
}

func TestResetConfig(t *testing.T) {
	path := writeSettings(t, t.TempDir(), "verbose: true\n")
	_, err := LoadConfig(path, nil)
	require.NoError(t, err)
	require.NotEmpty(t, GetConfigFileUsed())

	ResetConfig()

	assert.Empty(t, GetConfigFileUsed())
	assert.Nil(t, GetCurrentConfig())
}

func TestGetLogger(t *testing.T) {
	//nolint:staticcheck // nil context is handled explicitly
	assert.NotNil(t, GetLogger(nil))
	assert.NotNil(t, GetLogger(context.Background()))

	var buf bytes.Buffer
	logger := NewLogger(&buf, true)
	ctx := context.WithValue(context.Background(), LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))

	GetLogger(ctx).Debug("resolving extends")
	assert.Contains(t, buf.String(), "resolving extends")
}

func TestNewLogger_QuietByDefault(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, false)

	logger.Info("classified rules")
	logger.Warn("doc missing")

	assert.NotContains(t, buf.String(), "classified rules")
	assert.Contains(t, buf.String(), "doc missing")
}
