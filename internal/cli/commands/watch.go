package commands

import (
	"time"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/spf13/cobra"
)

// WatchOptions holds options for the watch command.
type WatchOptions struct {
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(version string) *cobra.Command {
	opts := &WatchOptions{}
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the audit whenever the stylelint config changes",
		Long: `Run the audit, then run it again every time a stylelint config file
in the extends chain is written, created or removed.

A failing run is reported and the watch keeps going, so a config can be
fixed without restarting. Press Ctrl+C to stop.`,
		Example: `  # Watch the project in the current directory
  findrules watch

  # Watch another project, reporting only unused rules
  findrules watch --cwd ./site --deprecated=false --invalid=false`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, version, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", audit.DefaultDebounce, "Wait this long for writes to settle before re-running")

	return cmd
}

func runWatch(cmd *cobra.Command, version string, opts *WatchOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	policy, err := parsePolicy(cmdCtx)
	if err != nil {
		return err
	}

	cfg := cmdCtx.auditConfig(cmdCtx.Sections(), policy)
	cfg.Debounce = opts.Debounce

	a, err := audit.New(cfg)
	if err != nil {
		return err
	}

	return a.Watch(cmd.Context(), func(report *audit.Report, err error) {
		if err != nil {
			r.Error("Error: " + err.Error())
			return
		}
		if renderErr := RenderReport(r, report, version); renderErr != nil {
			r.Error("Error: " + renderErr.Error())
			return
		}
		if !r.EffectiveMode().Structured() {
			r.Println("")
			r.Muted("Watching for changes (Ctrl+C to stop)")
		}
	})
}
