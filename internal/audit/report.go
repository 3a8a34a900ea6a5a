package audit

import (
	"time"

	"github.com/leapstack-labs/findrules/pkg/lint"
)

// Sections selects which rule sets a run reports.
type Sections struct {
	Unused     bool `json:"unused" yaml:"unused"`
	Deprecated bool `json:"deprecated" yaml:"deprecated"`
	Invalid    bool `json:"invalid" yaml:"invalid"`
	Current    bool `json:"current" yaml:"current"`
	Available  bool `json:"available" yaml:"available"`
}

// DefaultSections reports unused, deprecated and invalid rules.
func DefaultSections() Sections {
	return Sections{Unused: true, Deprecated: true, Invalid: true}
}

// Any reports whether at least one section is enabled.
func (s Sections) Any() bool {
	return s.Unused || s.Deprecated || s.Invalid || s.Current || s.Available
}

// NeedsClassification reports whether deprecation verdicts affect the output.
// Current, Available and Invalid do not depend on them.
func (s Sections) NeedsClassification() bool {
	return s.Unused || s.Deprecated
}

// Report is the outcome of one audit run. It is not modified after Run returns.
type Report struct {
	// RunID identifies the run in logs and machine-readable output.
	RunID string
	// StartedAt is when the run began.
	StartedAt time.Time
	// Elapsed is the wall time of the run.
	Elapsed time.Duration

	// ConfigFile is the user config that was discovered or given.
	ConfigFile string
	// ConfigSources lists every config file in the extends chain, root first.
	ConfigSources []string
	// LibraryDir is the stylelint install the registry was read from.
	LibraryDir string

	Sections Sections
	// Classified is false when deprecation scanning was skipped.
	Classified bool

	Result lint.Result
}
