// Package output renders command results for terminals, pipes and machines.
//
// Output adapts to the environment: styled text on a terminal, markdown
// when piped. JSON and YAML are available for scripts.
package output

import (
	"fmt"
	"strings"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Mode is shorthand for OutputMode.
type Mode = OutputMode

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeYAML     OutputMode = "yaml"
)

// Modes lists every accepted mode, for flag completion.
var Modes = []OutputMode{ModeAuto, ModeText, ModeMarkdown, ModeJSON, ModeYAML}

// ParseMode parses a mode name. The empty string means auto; "md" and "yml"
// are accepted as aliases.
func ParseMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "text":
		return ModeText, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "json":
		return ModeJSON, nil
	case "yaml", "yml":
		return ModeYAML, nil
	default:
		return ModeAuto, fmt.Errorf("unknown output mode %q", s)
	}
}

// Structured reports whether the mode is machine-readable.
func (m OutputMode) Structured() bool {
	return m == ModeJSON || m == ModeYAML
}
