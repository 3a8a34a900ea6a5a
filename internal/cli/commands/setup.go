package commands

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/config"
	"github.com/leapstack-labs/findrules/internal/cli/output"
	"github.com/leapstack-labs/findrules/pkg/lint"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext. It reuses the renderer the
// root command stored in the context, or builds one for the configured
// output mode.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())
	r := output.FromContext(cmd.Context())
	if r == nil {
		r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// NewAuditor builds an auditor from the loaded settings.
func (c *CommandContext) NewAuditor(sections audit.Sections) (*audit.Auditor, error) {
	policy, err := parsePolicy(c)
	if err != nil {
		return nil, err
	}
	return audit.New(c.auditConfig(sections, policy))
}

// auditConfig maps settings onto an audit.Config. It also applies the
// documentation base URL override.
func (c *CommandContext) auditConfig(sections audit.Sections, policy lint.MissingDocPolicy) audit.Config {
	if c.Cfg.DocsURL != "" {
		lint.SetDocsBaseURL(c.Cfg.DocsURL)
	}

	return audit.Config{
		ProjectRoot: c.Cfg.ProjectRoot,
		ConfigPath:  c.Cfg.StylelintConfig,
		LibraryDir:  c.Cfg.Library,
		Sections:    sections,
		ChunkSize:   c.Cfg.ChunkSize,
		Concurrency: c.Cfg.Concurrency,
		MissingDocs: policy,
		Logger:      c.Logger,
	}
}

func parsePolicy(c *CommandContext) (lint.MissingDocPolicy, error) {
	return lint.ParseMissingDocPolicy(c.Cfg.MissingDocs)
}

// Sections returns the report sections enabled in the settings.
func (c *CommandContext) Sections() audit.Sections {
	return audit.Sections{
		Unused:     c.Cfg.Unused,
		Deprecated: c.Cfg.Deprecated,
		Invalid:    c.Cfg.Invalid,
		Current:    c.Cfg.Current,
		Available:  c.Cfg.Available,
	}
}

// Helper functions shared across commands

// getConfig returns the current configuration.
// It uses config.GetCurrentConfig() if available, otherwise falls back to environment variables.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	cfg := config.DefaultConfig()
	cfg.Cwd = os.Getenv(config.EnvPrefix + "CWD")
	cfg.ProjectRoot = cfg.Cwd
	cfg.StylelintConfig = os.Getenv(config.EnvPrefix + "CONFIG")
	cfg.Library = os.Getenv(config.EnvPrefix + "LIBRARY")
	cfg.OutputFormat = getEnvOrDefault(config.EnvPrefix+"OUTPUT", config.DefaultOutput)
	cfg.MissingDocs = getEnvOrDefault(config.EnvPrefix+"MISSING_DOCS", config.DefaultMissingDocs)
	cfg.DocsURL = os.Getenv(config.EnvPrefix + "DOCS_URL")
	cfg.Verbose, _ = strconv.ParseBool(os.Getenv(config.EnvPrefix + "VERBOSE"))
	return cfg
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
