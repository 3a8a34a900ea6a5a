package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/findrules/pkg/core"
	"github.com/leapstack-labs/findrules/pkg/lint"
)

func names(n ...string) []core.RuleName {
	out := make([]core.RuleName, len(n))
	for i, s := range n {
		out[i] = core.RuleName(s)
	}
	return out
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name               string
		registry           []core.RuleName
		resolved           []core.RuleName
		deprecated         map[core.RuleName]bool
		wantUnused         []core.RuleName
		wantUserDeprecated []core.RuleName
		wantInvalid        []core.RuleName
	}{
		{
			name:               "everything configured",
			registry:           names("a", "b"),
			resolved:           names("a", "b"),
			wantUnused:         names(),
			wantUserDeprecated: names(),
			wantInvalid:        names(),
		},
		{
			name:               "invalid rule",
			registry:           names("a", "b"),
			resolved:           names("a", "z"),
			wantUnused:         names("b"),
			wantUserDeprecated: names(),
			wantInvalid:        names("z"),
		},
		{
			name:               "deprecated rules are never unused",
			registry:           names("a", "b", "c", "d"),
			resolved:           names("a", "c"),
			deprecated:         map[core.RuleName]bool{"c": true, "d": true, "b": false},
			wantUnused:         names("b"),
			wantUserDeprecated: names("c"),
			wantInvalid:        names(),
		},
		{
			name:               "unsorted input with duplicates",
			registry:           names("c", "a", "b", "a"),
			resolved:           names("x", "b", "x", "a"),
			wantUnused:         names("c"),
			wantUserDeprecated: names(),
			wantInvalid:        names("x"),
		},
		{
			name:               "empty registry",
			registry:           nil,
			resolved:           names("a"),
			wantUnused:         names(),
			wantUserDeprecated: names(),
			wantInvalid:        names("a"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := lint.Reconcile(tt.registry, tt.resolved, tt.deprecated)

			assert.Equal(t, tt.wantUnused, res.Unused, "unused")
			assert.Equal(t, tt.wantUserDeprecated, res.UserDeprecated, "user deprecated")
			assert.Equal(t, tt.wantInvalid, res.Invalid, "invalid")
			assert.Equal(t, core.SortedUnique(tt.resolved), res.Current, "current")
			assert.Equal(t, core.SortedUnique(tt.registry), res.Available, "available")
		})
	}
}

func TestReconcile_EmptySetsAreNotNil(t *testing.T) {
	res := lint.Reconcile(names("a"), names("a"), nil)

	assert.NotNil(t, res.Unused)
	assert.NotNil(t, res.UserDeprecated)
	assert.NotNil(t, res.Invalid)
	assert.NotNil(t, res.Deprecated)
	assert.Empty(t, res.Unused)
}

func TestReconcile_Idempotent(t *testing.T) {
	registry := names("e", "d", "c", "b", "a")
	resolved := names("b", "z", "a")
	deprecated := map[core.RuleName]bool{"d": true, "b": true}

	first := lint.Reconcile(registry, resolved, deprecated)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, lint.Reconcile(registry, resolved, deprecated))
	}
}

func TestReconcile_SetProperties(t *testing.T) {
	registry := names("a", "b", "c", "d", "e", "f")
	resolved := names("a", "c", "x", "y")
	deprecated := map[core.RuleName]bool{"c": true, "e": true}

	res := lint.Reconcile(registry, resolved, deprecated)

	inRegistry := map[core.RuleName]bool{}
	for _, r := range registry {
		inRegistry[r] = true
	}
	configured := map[core.RuleName]bool{}
	for _, r := range resolved {
		configured[r] = true
	}

	t.Run("unused is disjoint from configured", func(t *testing.T) {
		for _, r := range res.Unused {
			assert.False(t, configured[r], "%s is configured", r)
		}
	})

	t.Run("invalid is disjoint from registry", func(t *testing.T) {
		for _, r := range res.Invalid {
			assert.False(t, inRegistry[r], "%s is registered", r)
		}
	})

	t.Run("every registry rule lands in exactly one bucket", func(t *testing.T) {
		unused := map[core.RuleName]bool{}
		for _, r := range res.Unused {
			unused[r] = true
		}
		for _, r := range registry {
			buckets := 0
			if unused[r] {
				buckets++
			}
			if deprecated[r] && !configured[r] {
				buckets++
			}
			if configured[r] {
				buckets++
			}
			assert.Equal(t, 1, buckets, "rule %s", r)
		}
	})
}

func TestResult_Entries(t *testing.T) {
	t.Cleanup(lint.ResetDocsBaseURL)

	res := lint.Reconcile(names("a", "b"), names("a", "z"), map[core.RuleName]bool{"a": true})
	entries := res.Entries(res.Current)

	assert.Equal(t, []lint.Entry{
		{Rule: "a", URL: "https://stylelint.io/user-guide/rules/a/", Deprecated: true},
		{Rule: "z", URL: "https://stylelint.io/user-guide/rules/z/"},
	}, entries)

	assert.Equal(t, []lint.Entry{{Rule: "b", URL: "https://stylelint.io/user-guide/rules/b/"}}, res.Entries(res.Unused))
}
