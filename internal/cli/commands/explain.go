package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/output"
	"github.com/leapstack-labs/findrules/pkg/core"
	"github.com/leapstack-labs/findrules/pkg/lint"
	"github.com/spf13/cobra"
)

// excerptLines caps how much of the scanned prefix is echoed back.
const excerptLines = 8

// NewExplainCommand creates the explain command.
func NewExplainCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <rule>",
		Short: "Show how a single rule is classified",
		Long: `Show the deprecation verdict for one rule together with the documentation
prefix it was based on, its documentation URL, and whether the current
stylelint config enables it.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Why is this rule reported as deprecated?
  findrules explain function-calc-no-invalid

  # Scan more of the README before deciding
  findrules explain color-hex-case --chunk-size 4096 -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(cmd, core.RuleName(args[0]))
		},
	}
}

func runExplain(cmd *cobra.Command, rule core.RuleName) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	ctx := cmd.Context()

	a, err := cmdCtx.NewAuditor(audit.DefaultSections())
	if err != nil {
		return err
	}

	registry, err := a.Registry()
	if err != nil {
		return err
	}
	if !registry.Has(rule) {
		return fmt.Errorf("rule %q is not provided by the stylelint library at %s", rule, a.LibraryDir())
	}

	classifier := a.Classifier(cmdCtx.Logger)
	deprecated, err := classifier.Classify(ctx, rule)
	if err != nil {
		return err
	}

	// The prefix is informational; under the skip policy a missing doc has
	// already been classified above.
	prefix, err := classifier.Prefix(rule)
	if err != nil {
		cmdCtx.Logger.Warn("cannot read rule documentation", "rule", rule, "error", err)
	}

	configured, err := isConfigured(ctx, cmdCtx, a, rule)
	if err != nil {
		return err
	}

	chunk := cmdCtx.Cfg.ChunkSize
	if chunk <= 0 {
		chunk = lint.DefaultChunkSize
	}

	result := output.ExplainOutput{
		Rule:         string(rule),
		URL:          lint.BuildDocURL(rule),
		DocPath:      lint.RuleDocPath(a.LibraryDir(), rule),
		ScannedBytes: len(prefix),
		ChunkSize:    chunk,
		Deprecated:   deprecated,
		Configured:   configured,
		Excerpt:      excerpt(prefix, excerptLines),
	}

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Structured(result)
	case output.ModeMarkdown:
		explainMarkdown(r, result)
	default:
		explainText(r, result)
	}
	return nil
}

// isConfigured reports whether the resolved user config enables rule.
// A project without a stylelint config simply does not configure it.
func isConfigured(ctx context.Context, cmdCtx *CommandContext, a *audit.Auditor, rule core.RuleName) (bool, error) {
	rules, err := a.ResolveRules(ctx)
	if err != nil {
		var notFound *core.ConfigNotFoundError
		if errors.As(err, &notFound) {
			cmdCtx.Logger.Debug("no stylelint config found", "error", err)
			return false, nil
		}
		return false, err
	}
	for _, name := range rules {
		if name == rule {
			return true, nil
		}
	}
	return false, nil
}

// excerpt returns up to n non-blank lines of the scanned prefix.
func excerpt(prefix []byte, n int) string {
	var lines []string
	for _, line := range strings.Split(string(prefix), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return strings.Join(lines, "\n")
}

func verdict(deprecated bool) string {
	if deprecated {
		return "deprecated"
	}
	return "not deprecated"
}

func explainText(r *output.Renderer, e output.ExplainOutput) {
	styles := r.Styles()

	r.Header(1, e.Rule)

	status := "success"
	if e.Deprecated {
		status = "failed"
	}
	r.StatusLine(verdict(e.Deprecated), status, "")
	r.Println("")

	r.Printf("  %s %s\n", styles.Bold.Render("Documentation:"), styles.URL.Render(e.URL))
	r.Printf("  %s %s\n", styles.Bold.Render("README:"), e.DocPath)
	r.Printf("  %s %d of %d bytes\n", styles.Bold.Render("Scanned:"), e.ScannedBytes, e.ChunkSize)
	r.Printf("  %s %t\n", styles.Bold.Render("Configured:"), e.Configured)

	if e.Excerpt != "" {
		r.Println("")
		for _, line := range strings.Split(e.Excerpt, "\n") {
			r.Println("    " + styles.Muted.Render(line))
		}
	}
}

func explainMarkdown(r *output.Renderer, e output.ExplainOutput) {
	r.Println(output.FormatHeader(1, e.Rule))
	r.Println("")
	r.Println(output.FormatKeyValue("Verdict", verdict(e.Deprecated)))
	r.Println(output.FormatKeyValue("Documentation", e.URL))
	r.Println(output.FormatKeyValue("README", output.FormatCode(e.DocPath)))
	r.Println(output.FormatKeyValue("Scanned", fmt.Sprintf("%d of %d bytes", e.ScannedBytes, e.ChunkSize)))
	r.Println(output.FormatKeyValue("Configured", fmt.Sprintf("%t", e.Configured)))

	if e.Excerpt != "" {
		r.Println("")
		r.Println(output.FormatHeader(2, "Scanned prefix"))
		r.Println("")
		r.Println("```markdown")
		r.Println(e.Excerpt)
		r.Println("```")
	}
}
