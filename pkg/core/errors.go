package core

import (
	"fmt"
	"strings"
)

// ConfigNotFoundError is returned when no stylelint configuration can be discovered.
type ConfigNotFoundError struct {
	// SearchFrom is the directory the upward search started from.
	SearchFrom string
	// Path is set when an explicit config path was given but does not exist.
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("no stylelint config found at %s", e.Path)
	}
	return fmt.Sprintf("no stylelint config found searching upward from %s\n"+
		"Hint: add a .stylelintrc.json, a \"stylelint\" field in package.json, or pass --config", e.SearchFrom)
}

// ConfigMalformedError is returned when a config or one of its extends
// targets cannot be parsed or lacks a usable rules field.
type ConfigMalformedError struct {
	Path   string
	Reason string
	Err    error
	// Chain lists the configs visited before the failure, outermost first.
	Chain []string
}

func (e *ConfigMalformedError) Error() string {
	var b strings.Builder
	b.WriteString("invalid stylelint config")
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ConfigMalformedError) Unwrap() error { return e.Err }

// DocArtifactUnavailableError is returned when a rule's README cannot be read.
// It means the installed library and its rule registry are out of sync.
type DocArtifactUnavailableError struct {
	Rule RuleName
	Path string
	Err  error
}

func (e *DocArtifactUnavailableError) Error() string {
	return fmt.Sprintf("cannot read documentation for rule %q at %s: %v", e.Rule, e.Path, e.Err)
}

func (e *DocArtifactUnavailableError) Unwrap() error { return e.Err }

// RegistryUnavailableError is returned when the library's rule directory cannot be listed.
type RegistryUnavailableError struct {
	Dir string
	Err error
}

func (e *RegistryUnavailableError) Error() string {
	return fmt.Sprintf("cannot read stylelint rules from %s: %v\n"+
		"Hint: install stylelint in the project or pass --library", e.Dir, e.Err)
}

func (e *RegistryUnavailableError) Unwrap() error { return e.Err }
