package config

import "github.com/leapstack-labs/findrules/pkg/core"

// Resolution is the outcome of resolving a config and its extends chain.
type Resolution struct {
	// Rules is the sorted, de-duplicated union of rule names across the chain.
	Rules []core.RuleName

	// Sources lists every config file visited, root first, in load order.
	// In-memory configs without a source are omitted.
	Sources []string
}

// chain tracks the configs on the current extends path.
type chain []string

func (c chain) contains(key string) bool {
	for _, k := range c {
		if k == key {
			return true
		}
	}
	return false
}
