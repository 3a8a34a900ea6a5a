package commands

import (
	"fmt"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/output"
	"github.com/leapstack-labs/findrules/pkg/core"
	"github.com/leapstack-labs/findrules/pkg/lint"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Messages shared by every text rendering.
const (
	upToDateMessage = "All rules are up-to-date!"
	noRulesMessage  = "No rules."
)

// section is one block of the audit report.
type section struct {
	key   string
	title string
	rules []core.RuleName
	// omitEmpty drops the block entirely when it has no rules.
	omitEmpty bool
	// emptyMessage is shown instead of rows when the block is empty.
	emptyMessage string
	// danger marks every rule in the block as a problem.
	danger bool
	// noDocs drops documentation links; the rules have no page to link to.
	noDocs bool
}

// entries builds the block's rows.
func (s section) entries(res lint.Result) []lint.Entry {
	rows := res.Entries(s.rules)
	if s.noDocs {
		for i := range rows {
			rows[i].URL = ""
		}
	}
	return rows
}

// heading renders "KEY: Title:" the way the report has always printed it.
func (s section) heading() string {
	return fmt.Sprintf("%s: %s:", cases.Upper(language.English).String(s.key), s.title)
}

// reportSections lists the requested blocks in display order.
func reportSections(rep *audit.Report) []section {
	res := rep.Result
	var out []section

	if rep.Sections.Current {
		out = append(out, section{key: "current", title: "Currently configured user rules", rules: res.Current, emptyMessage: noRulesMessage})
	}
	if rep.Sections.Available {
		out = append(out, section{key: "available", title: "All available stylelint rules", rules: res.Available, emptyMessage: noRulesMessage})
	}
	if rep.Sections.Unused {
		out = append(out, section{key: "unused", title: "Available rules that are not configured", rules: res.Unused, emptyMessage: upToDateMessage})
	}
	if rep.Sections.Deprecated {
		out = append(out, section{key: "deprecated", title: "Configured rules that are deprecated", rules: res.UserDeprecated, omitEmpty: true, danger: true})
	}
	if rep.Sections.Invalid {
		out = append(out, section{key: "invalid", title: "Configured rules that are no longer available", rules: res.Invalid, omitEmpty: true, danger: true, noDocs: true})
	}

	return out
}

// RunAudit runs one audit with the loaded settings and renders the report.
func RunAudit(cmd *cobra.Command, version string) error {
	cmdCtx := NewCommandContext(cmd)

	a, err := cmdCtx.NewAuditor(cmdCtx.Sections())
	if err != nil {
		return err
	}

	report, err := a.Run(cmd.Context())
	if err != nil {
		return err
	}

	return RenderReport(cmdCtx.Renderer, report, version)
}

// RenderReport writes a report in the renderer's effective mode.
func RenderReport(r *output.Renderer, rep *audit.Report, version string) error {
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Structured(newAuditOutput(rep, version))
	case output.ModeMarkdown:
		renderReportMarkdown(r, rep, version)
		return nil
	default:
		renderReportText(r, rep, version)
		return nil
	}
}

func newAuditOutput(rep *audit.Report, version string) output.AuditOutput {
	res := rep.Result
	out := output.AuditOutput{
		RunID:         rep.RunID,
		Version:       version,
		ConfigFile:    rep.ConfigFile,
		ConfigSources: rep.ConfigSources,
		LibraryDir:    rep.LibraryDir,
		Classified:    rep.Classified,
		ElapsedMS:     rep.Elapsed.Milliseconds(),
	}
	if out.ConfigSources == nil {
		out.ConfigSources = []string{}
	}

	for _, s := range reportSections(rep) {
		e := s.entries(res)
		switch s.key {
		case "current":
			out.Current = &e
		case "available":
			out.Available = &e
		case "unused":
			out.Unused = &e
		case "deprecated":
			out.Deprecated = &e
		case "invalid":
			out.Invalid = &e
		}
	}

	return out
}

func renderReportText(r *output.Renderer, rep *audit.Report, version string) {
	styles := r.Styles()

	r.Header(1, fmt.Sprintf("findrules v%s", version))

	for _, s := range reportSections(rep) {
		if len(s.rules) == 0 && s.omitEmpty {
			continue
		}

		r.Println(styles.Header2.Render(s.heading()))
		r.Println("")

		if len(s.rules) == 0 {
			if s.key == "unused" {
				r.Success(s.emptyMessage)
			} else {
				r.Muted(s.emptyMessage)
			}
			r.Println("")
			continue
		}

		rows := make([][]string, 0, len(s.rules))
		withURL := false
		for _, e := range s.entries(rep.Result) {
			name := string(e.Rule)
			switch {
			case s.danger:
				name = styles.DangerRule.Render(name)
			case e.Deprecated:
				name = styles.Warning.Render(name + " (deprecated)")
			}
			if e.URL != "" {
				withURL = true
			}
			rows = append(rows, []string{name, styles.URL.Render(e.URL)})
		}

		if withURL {
			r.Table([]string{"Rule", "Documentation"}, rows)
		} else {
			nameOnly := make([][]string, len(rows))
			for i, row := range rows {
				nameOnly[i] = row[:1]
			}
			r.Table([]string{"Rule"}, nameOnly)
		}
		r.Println("")
	}

	r.Muted(fmt.Sprintf("Finished in: %dms", rep.Elapsed.Milliseconds()))
}

func renderReportMarkdown(r *output.Renderer, rep *audit.Report, version string) {
	r.Println(output.FormatHeader(1, fmt.Sprintf("findrules v%s", version)))
	r.Println("")

	for _, s := range reportSections(rep) {
		if len(s.rules) == 0 && s.omitEmpty {
			continue
		}

		r.Println(output.FormatHeader(2, s.heading()))
		r.Println("")

		if len(s.rules) == 0 {
			r.Println(s.emptyMessage)
			r.Println("")
			continue
		}

		for _, e := range s.entries(rep.Result) {
			line := "- " + output.FormatLink(output.FormatCode(string(e.Rule)), e.URL)
			if e.Deprecated && !s.danger {
				line += " (deprecated)"
			}
			r.Println(line)
		}
		r.Println("")
	}

	r.Println(fmt.Sprintf("Finished in: %dms", rep.Elapsed.Milliseconds()))
}
