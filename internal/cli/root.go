// Package cli provides the command-line interface for findrules.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/commands"
	"github.com/leapstack-labs/findrules/internal/cli/config"
	"github.com/leapstack-labs/findrules/internal/cli/output"
	"github.com/spf13/cobra"
)

var settingsFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// IssuesURL is where users are pointed when a run fails.
const IssuesURL = "https://github.com/leapstack-labs/findrules/issues"

// configKey is used to store config in context.
type configKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "findrules",
		Short: "Find unused, deprecated and invalid stylelint rules",
		Long: `findrules compares a project's stylelint config with the rules shipped by
the installed stylelint package.

It reports rules that are available but not configured (UNUSED), configured
rules that are deprecated (DEPRECATED) and configured rules the package no
longer provides (INVALID). It can also list the configured (CURRENT) and
available (AVAILABLE) rules verbatim.

The stylelint config is searched upward from --cwd the way stylelint does
(package.json "stylelint" field, .stylelintrc and friends), and extends
chains are followed.`,
		Example: `  # Audit the project in the current directory
  findrules

  # Only list unused rules, as JSON
  findrules --deprecated=false --invalid=false -o json

  # Audit another project with an explicit config
  findrules --cwd ./site --config ./site/.stylelintrc.yaml`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip settings loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(settingsFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx := context.WithValue(cmd.Context(), config.LoggerKey(), logger)
			ctx = context.WithValue(ctx, configKey{}, cfg)

			// Create and store renderer based on output mode
			mode := output.Mode(cfg.OutputFormat)
			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			ctx = context.WithValue(ctx, output.RendererKey(), renderer)
			cmd.SetContext(ctx)

			if used := config.GetConfigFileUsed(); used != "" {
				logger.Debug("using settings file", "path", used)
			}
			logger.Debug("project root", "path", cfg.ProjectRoot)

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !GetConfig(cmd.Context()).HasSection() {
				_ = cmd.Usage()
				return audit.ErrNoSections
			}
			return commands.RunAudit(cmd, Version)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Finds unused, deprecated and invalid stylelint rules
`)

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "settings", "", "findrules settings file (default: findrules.yaml found upward)")
	pf.String("config", "", "Path to the stylelint config (default: searched upward from --cwd)")
	pf.String("cwd", "", "Directory the stylelint config is searched from (default: current directory)")
	pf.String("library", "", "Path to the stylelint package (default: <cwd>/node_modules/stylelint)")
	pf.BoolP("unused", "u", true, "Report available rules that are not configured")
	pf.BoolP("deprecated", "d", true, "Report configured rules that are deprecated")
	pf.BoolP("invalid", "i", true, "Report configured rules that are no longer available")
	pf.BoolP("current", "c", false, "List the configured rules")
	pf.BoolP("available", "a", false, "List every available rule")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json|yaml)")
	pf.Int("chunk-size", config.DefaultChunkSize, "Bytes of each rule README scanned for a deprecation notice")
	pf.Int("concurrency", config.DefaultConcurrency, "Maximum README reads in flight (0 = unbounded)")
	pf.String("missing-docs", config.DefaultMissingDocs, "Missing rule README handling (fatal|skip)")
	pf.String("docs-url", "", "Base URL for rule documentation links")

	// Register completion for output flag
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		modes := make([]string, len(output.Modes))
		for i, m := range output.Modes {
			modes[i] = string(m)
		}
		return modes, cobra.ShellCompDirectiveNoFileComp
	})

	_ = rootCmd.RegisterFlagCompletionFunc("missing-docs", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"fatal", "skip"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewWatchCommand(Version))
	rootCmd.AddCommand(commands.NewExplainCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, printing any error once.
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd.ErrOrStderr(), err)
		return err
	}
	return nil
}

// PrintError writes err and, for unexpected failures, where to report it.
func PrintError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, audit.ErrNoSections) || errors.Is(err, context.Canceled) {
		return
	}
	_, _ = fmt.Fprintln(w, "If you can't settle this, please open an issue at:")
	_, _ = fmt.Fprintln(w, IssuesURL)
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	// Return default config if none in context
	return config.DefaultConfig()
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r := output.FromContext(ctx); r != nil {
		return r
	}
	// Return default renderer if none in context
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for findrules.

To load completions:

Bash:
  $ source <(findrules completion bash)

Zsh:
  $ findrules completion zsh > "${fpath[1]}/_findrules"

Fish:
  $ findrules completion fish | source

PowerShell:
  PS> findrules completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
