// Package config provides settings management for the findrules CLI.
//
// Settings come from, in increasing precedence: built-in defaults, an
// optional findrules.yaml found upward from the working directory,
// FINDRULES_* environment variables, and explicitly set flags.
package config

// Config holds all CLI settings.
type Config struct {
	// Cwd is where stylelint config discovery starts.
	Cwd string `koanf:"cwd"`
	// StylelintConfig is an explicit stylelint config path.
	StylelintConfig string `koanf:"config"`
	// Library is the stylelint install directory.
	Library string `koanf:"library"`

	OutputFormat string `koanf:"output"`
	Verbose      bool   `koanf:"verbose"`

	// Report sections
	Unused     bool `koanf:"unused"`
	Deprecated bool `koanf:"deprecated"`
	Invalid    bool `koanf:"invalid"`
	Current    bool `koanf:"current"`
	Available  bool `koanf:"available"`

	ChunkSize   int    `koanf:"chunk_size"`
	Concurrency int    `koanf:"concurrency"`
	MissingDocs string `koanf:"missing_docs"`
	DocsURL     string `koanf:"docs_url"`

	// ProjectRoot is the absolute form of Cwd, filled in after loading.
	ProjectRoot string `koanf:"-"`
}

// Default settings values.
const (
	DefaultOutput      = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultMissingDocs = "fatal"
	DefaultChunkSize   = 1024
	DefaultConcurrency = 0 // unbounded
	EnvPrefix          = "FINDRULES_"
)

// SettingsFiles are the settings file names searched for, in order.
var SettingsFiles = []string{"findrules.yaml", "findrules.yml"}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		OutputFormat: DefaultOutput,
		Unused:       true,
		Deprecated:   true,
		Invalid:      true,
		ChunkSize:    DefaultChunkSize,
		Concurrency:  DefaultConcurrency,
		MissingDocs:  DefaultMissingDocs,
	}
}
