package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used for text output.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	URL     lipgloss.Style

	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style

	// Rule styles a rule name in a danger section.
	DangerRule lipgloss.Style

	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

// NewStyles builds styles bound to a lipgloss renderer, so color support
// follows the destination writer rather than the process stdout.
func NewStyles(lr *lipgloss.Renderer) *Styles {
	return &Styles{
		Header1: lr.NewStyle().Bold(true).Foreground(lipgloss.Color("15")),
		Header2: lr.NewStyle().Underline(true).Foreground(lipgloss.Color("12")),
		Bold:    lr.NewStyle().Bold(true),
		Muted:   lr.NewStyle().Foreground(lipgloss.Color("8")),
		URL:     lr.NewStyle().Foreground(lipgloss.Color("6")),

		Success: lr.NewStyle().Foreground(lipgloss.Color("2")),
		Warning: lr.NewStyle().Foreground(lipgloss.Color("3")),
		Error:   lr.NewStyle().Foreground(lipgloss.Color("1")),
		Info:    lr.NewStyle().Foreground(lipgloss.Color("4")),

		DangerRule: lr.NewStyle().Foreground(lipgloss.Color("9")),

		StatusSuccess: lr.NewStyle().Foreground(lipgloss.Color("2")).SetString("✓"),
		StatusFailed:  lr.NewStyle().Foreground(lipgloss.Color("1")).SetString("✗"),
	}
}
