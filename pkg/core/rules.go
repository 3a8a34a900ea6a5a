package core

import "sort"

// RuleName identifies a lint rule, e.g. "color-hex-case" or
// "scss/at-rule-no-unknown". Names are case-sensitive.
type RuleName string

// UserConfig is a stylelint configuration document.
// Only rule names matter here; rule settings are kept opaque.
type UserConfig struct {
	// Rules maps rule names to their settings.
	Rules map[string]any `koanf:"rules" mapstructure:"rules"`

	// Extends lists the configurations this one inherits from, in order.
	Extends []string `koanf:"extends" mapstructure:"extends"`

	// Source is the file the config was loaded from (empty for in-memory configs).
	Source string `koanf:"-" mapstructure:"-"`

	// HasRules reports whether the document carried a rules field at all.
	HasRules bool `koanf:"-" mapstructure:"-"`
}

// RuleNames returns the config's own rule names in sorted order.
func (c *UserConfig) RuleNames() []RuleName {
	if c == nil {
		return nil
	}
	names := make([]RuleName, 0, len(c.Rules))
	for name := range c.Rules {
		names = append(names, RuleName(name))
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// SortedUnique sorts names and drops duplicates.
// The input slice is not modified. The result is never nil.
func SortedUnique(names []RuleName) []RuleName {
	out := make([]RuleName, len(names))
	copy(out, names)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 0
	for i, name := range out {
		if i > 0 && name == out[n-1] {
			continue
		}
		out[n] = name
		n++
	}
	return out[:n]
}

// Strings converts rule names to plain strings.
func Strings(names []RuleName) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = string(name)
	}
	return out
}
