package lint

import "github.com/leapstack-labs/findrules/pkg/core"

// Result holds the rule sets derived from one reconciliation.
// Every slice is sorted and non-nil.
type Result struct {
	// Unused are available, non-deprecated rules the user has not configured.
	Unused []core.RuleName `json:"unused" yaml:"unused"`
	// UserDeprecated are configured rules that are deprecated.
	UserDeprecated []core.RuleName `json:"deprecated" yaml:"deprecated"`
	// Invalid are configured rules the library no longer ships.
	Invalid []core.RuleName `json:"invalid" yaml:"invalid"`
	// Current is the resolved user rule list, verbatim.
	Current []core.RuleName `json:"current" yaml:"current"`
	// Available is the registry, verbatim.
	Available []core.RuleName `json:"available" yaml:"available"`
	// Deprecated is every registry rule classified as deprecated.
	Deprecated []core.RuleName `json:"all_deprecated" yaml:"all_deprecated"`
}

// Reconcile computes the derived rule sets.
//
//	Unused         = registry - deprecated - resolved
//	UserDeprecated = deprecated ∩ resolved
//	Invalid        = resolved - registry
//
// Inputs are treated as sets; a name listed twice counts once.
func Reconcile(registry, resolved []core.RuleName, deprecated map[core.RuleName]bool) Result {
	available := core.SortedUnique(registry)
	current := core.SortedUnique(resolved)

	registered := toSet(available)
	configured := toSet(current)

	res := Result{
		Unused:         []core.RuleName{},
		UserDeprecated: []core.RuleName{},
		Invalid:        []core.RuleName{},
		Current:        current,
		Available:      available,
		Deprecated:     []core.RuleName{},
	}

	for _, name := range available {
		if deprecated[name] {
			res.Deprecated = append(res.Deprecated, name)
			continue
		}
		if _, ok := configured[name]; !ok {
			res.Unused = append(res.Unused, name)
		}
	}

	for _, name := range current {
		if deprecated[name] {
			res.UserDeprecated = append(res.UserDeprecated, name)
		}
		if _, ok := registered[name]; !ok {
			res.Invalid = append(res.Invalid, name)
		}
	}

	return res
}

// Entry is one reportable rule row.
type Entry struct {
	Rule       core.RuleName `json:"rule" yaml:"rule"`
	URL        string        `json:"url,omitempty" yaml:"url,omitempty"`
	Deprecated bool          `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// Entries turns rule names into report rows. Every row carries the rule's
// documentation URL, whether or not the registry knows the rule.
func (r Result) Entries(names []core.RuleName) []Entry {
	deprecated := toSet(r.Deprecated)

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		_, dep := deprecated[name]
		entries = append(entries, Entry{Rule: name, URL: BuildDocURL(name), Deprecated: dep})
	}
	return entries
}

func toSet(names []core.RuleName) map[core.RuleName]struct{} {
	set := make(map[core.RuleName]struct{}, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}
