package commands

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/config"
	"github.com/leapstack-labs/findrules/internal/cli/output"
	"github.com/leapstack-labs/findrules/pkg/core"
	"github.com/leapstack-labs/findrules/pkg/lint"
	"github.com/spf13/cobra"
)

// Health check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
	statusSkip  = "skip"
)

// NewDoctorCommand checks every audit input and reports all problems at once.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the project can be audited",
		Long: `Check every input an audit depends on and report what is wrong
instead of stopping at the first failure.

The doctor command checks:
- Config: the stylelint config is found and its extends chain resolves
- Library: the stylelint rule directory is readable and every rule has a README
- Rules: no configured rule is invalid or deprecated

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON/YAML: Machine-readable format`,
		Example: `  # Check the project in the current directory
  findrules doctor

  # Output as JSON
  findrules doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

// DoctorOutput is the machine-readable doctor report.
type DoctorOutput struct {
	Summary         ProjectSummary `json:"summary" yaml:"summary"`
	HealthChecks    []HealthCheck  `json:"health_checks" yaml:"health_checks"`
	Score           int            `json:"score" yaml:"score"`
	Recommendations []string       `json:"recommendations" yaml:"recommendations"`
	IssueCount      int            `json:"issue_count" yaml:"issue_count"`
}

// ProjectSummary describes what the doctor found on disk.
type ProjectSummary struct {
	SettingsFile  string `json:"settings_file" yaml:"settings_file"`
	ConfigFile    string `json:"config_file" yaml:"config_file"`
	ConfigSources int    `json:"config_sources" yaml:"config_sources"`
	LibraryDir    string `json:"library_dir" yaml:"library_dir"`
	Available     int    `json:"available" yaml:"available"`
	Configured    int    `json:"configured" yaml:"configured"`
	Deprecated    int    `json:"deprecated" yaml:"deprecated"`
}

// HealthCheck is the outcome of one check.
type HealthCheck struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Group      string   `json:"group" yaml:"group"`
	Status     string   `json:"status" yaml:"status"` // "pass", "warn", "error", "skip"
	IssueCount int      `json:"issue_count" yaml:"issue_count"`
	Details    []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	a, err := cmdCtx.NewAuditor(audit.DefaultSections())
	if err != nil {
		return err
	}

	doctorOutput := diagnose(cmd.Context(), a, cmdCtx)

	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Structured(doctorOutput)
	case output.ModeMarkdown:
		return renderDoctorMarkdown(r, doctorOutput)
	default:
		return renderDoctorText(r, doctorOutput)
	}
}

// diagnose runs every check. A failed prerequisite marks dependent checks
// as skipped rather than aborting.
func diagnose(ctx context.Context, a *audit.Auditor, cmdCtx *CommandContext) *DoctorOutput {
	summary := ProjectSummary{
		SettingsFile: config.GetConfigFileUsed(),
		LibraryDir:   a.LibraryDir(),
	}
	var checks []HealthCheck

	// Config
	var resolved []core.RuleName
	configOK := false
	userCfg, err := a.Discover()
	if err != nil {
		checks = append(checks,
			failed("config-found", "Stylelint config found", "config", err),
			skipped("extends-resolve", "Extends chain resolves", "config"))
	} else {
		summary.ConfigFile = userCfg.Source
		checks = append(checks, passed("config-found", "Stylelint config found", "config"))

		res, err := a.ResolveChain(ctx, userCfg)
		if err != nil {
			checks = append(checks, failed("extends-resolve", "Extends chain resolves", "config", err))
		} else {
			configOK = true
			resolved = res.Rules
			summary.ConfigSources = len(res.Sources)
			summary.Configured = len(res.Rules)
			checks = append(checks, passed("extends-resolve", "Extends chain resolves", "config"))
		}
	}

	// Library
	registry, err := a.Registry()
	if err != nil {
		checks = append(checks,
			failed("registry", "Rule registry readable", "library", err),
			skipped("docs", "Rule documentation readable", "library"),
			skipped("invalid-rules", "No invalid rules configured", "rules"),
			skipped("deprecated-rules", "No deprecated rules configured", "rules"))
		return finishDoctor(summary, checks)
	}
	summary.Available = registry.Len()
	checks = append(checks, passed("registry", "Rule registry readable", "library"))

	classifier := a.Classifier(cmdCtx.Logger)
	verdicts := make(map[core.RuleName]bool, registry.Len())
	var missing []string
	for _, rule := range registry.Names() {
		prefix, err := classifier.Prefix(rule)
		if err != nil {
			missing = append(missing, string(rule))
			continue
		}
		verdicts[rule] = lint.IsDeprecatedText(prefix)
	}
	checks = append(checks, issues("docs", "Rule documentation readable", "library", statusError, missing))

	result := lint.Reconcile(registry.Names(), resolved, verdicts)
	summary.Deprecated = len(result.Deprecated)

	if !configOK {
		checks = append(checks,
			skipped("invalid-rules", "No invalid rules configured", "rules"),
			skipped("deprecated-rules", "No deprecated rules configured", "rules"))
		return finishDoctor(summary, checks)
	}

	checks = append(checks,
		issues("invalid-rules", "No invalid rules configured", "rules", statusError, core.Strings(result.Invalid)),
		issues("deprecated-rules", "No deprecated rules configured", "rules", statusWarn, core.Strings(result.UserDeprecated)))

	return finishDoctor(summary, checks)
}

func finishDoctor(summary ProjectSummary, checks []HealthCheck) *DoctorOutput {
	issueCount := 0
	for _, c := range checks {
		issueCount += c.IssueCount
	}
	return &DoctorOutput{
		Summary:         summary,
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, summary.Available),
		Recommendations: generateRecommendations(checks),
		IssueCount:      issueCount,
	}
}

func passed(id, name, group string) HealthCheck {
	return HealthCheck{ID: id, Name: name, Group: group, Status: statusPass}
}

func skipped(id, name, group string) HealthCheck {
	return HealthCheck{ID: id, Name: name, Group: group, Status: statusSkip}
}

func failed(id, name, group string, err error) HealthCheck {
	return HealthCheck{ID: id, Name: name, Group: group, Status: statusError, IssueCount: 1, Details: []string{err.Error()}}
}

// issues builds a check that fails with status when details is non-empty.
func issues(id, name, group, status string, details []string) HealthCheck {
	if len(details) == 0 {
		return passed(id, name, group)
	}
	return HealthCheck{ID: id, Name: name, Group: group, Status: status, IssueCount: len(details), Details: details}
}

// calculateHealthScore maps findings to 0..100. Errors cost twice as much as
// warnings, and a single issue weighs less in a larger registry.
func calculateHealthScore(checks []HealthCheck, ruleCount int) int {
	if len(checks) == 0 {
		return 100
	}

	score := 100.0

	basePenalty := 5.0
	if ruleCount > 50 {
		basePenalty = 3.0
	}
	if ruleCount > 100 {
		basePenalty = 2.0
	}

	for _, check := range checks {
		switch check.Status {
		case statusError:
			score -= float64(check.IssueCount) * basePenalty * 2
		case statusWarn:
			score -= float64(check.IssueCount) * basePenalty
		}
	}

	// Clamp to 0-100
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return int(score)
}

// generateRecommendations lists one fix per failing check, in check order.
func generateRecommendations(checks []HealthCheck) []string {
	var recommendations []string
	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}
		if rec := getRecommendation(check.ID); rec != "" {
			recommendations = append(recommendations, rec)
		}
	}
	return recommendations
}

// getRecommendation returns a recommendation for a specific check.
func getRecommendation(id string) string {
	switch id {
	case "config-found":
		return "Add a .stylelintrc.json or pass --config, or point --cwd at the project"
	case "extends-resolve":
		return "Install the packages named in extends, or fix the relative paths"
	case "registry":
		return "Install stylelint (npm install --save-dev stylelint) or pass --library"
	case "docs":
		return "Reinstall stylelint, or run with --missing-docs skip"
	case "invalid-rules":
		return "Remove rules the installed stylelint no longer provides"
	case "deprecated-rules":
		return "Replace deprecated rules; run findrules explain <rule> for details"
	default:
		return ""
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	// Header
	r.Println("")
	r.Println(styles.Header1.Render("Stylelint Setup Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 48)))
	r.Println("")

	// Project Summary
	r.Println(styles.Header2.Render("Project Summary"))
	r.Printf("   Config: %s (%d files in chain)\n", orNone(out.Summary.ConfigFile), out.Summary.ConfigSources)
	r.Printf("   Library: %s\n", out.Summary.LibraryDir)
	r.Printf("   Rules: %d available | %d configured | %d deprecated\n",
		out.Summary.Available, out.Summary.Configured, out.Summary.Deprecated)
	r.Println("")

	r.Println(styles.Header2.Render("Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 32)))
		}

		icon := styles.StatusSuccess.String()
		switch check.Status {
		case statusWarn:
			icon = styles.Warning.Render("!")
		case statusError:
			icon = styles.StatusFailed.String()
		case statusSkip:
			icon = styles.Muted.Render("-")
		}

		status := fmt.Sprintf("%s %s", icon, check.Name)
		if check.IssueCount > 0 {
			status += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println("   " + status)

			for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       (+%d more)", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	// Health Score
	r.Println(styles.Muted.Render(strings.Repeat("=", 48)))
	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))
	r.Println("")

	// Recommendations
	if len(out.Recommendations) > 0 {
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println(output.FormatHeader(1, "Stylelint Setup Health Report"))
	r.Println("")

	r.Println(output.FormatHeader(2, "Project Summary"))
	r.Println("")
	r.Println(output.FormatKeyValue("Settings", orNone(out.Summary.SettingsFile)))
	r.Println(output.FormatKeyValue("Config", orNone(out.Summary.ConfigFile)))
	r.Println(output.FormatKeyValue("Files in extends chain", fmt.Sprintf("%d", out.Summary.ConfigSources)))
	r.Println(output.FormatKeyValue("Library", out.Summary.LibraryDir))
	r.Println(output.FormatKeyValue("Available rules", fmt.Sprintf("%d", out.Summary.Available)))
	r.Println(output.FormatKeyValue("Configured rules", fmt.Sprintf("%d", out.Summary.Configured)))
	r.Println(output.FormatKeyValue("Deprecated rules", fmt.Sprintf("%d", out.Summary.Deprecated)))
	r.Println("")

	r.Println(output.FormatHeader(2, "Health Checks"))
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(output.FormatHeader(3, titleCaser.String(currentGroup)))
			r.Println("")
		}

		r.Printf("- **[%s]** %s", strings.ToUpper(check.Status), check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")

		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println(output.FormatHeader(2, "Health Score"))
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)
	r.Println("")

	if len(out.Recommendations) > 0 {
		r.Println(output.FormatHeader(2, "Recommendations"))
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
		r.Println("")
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
