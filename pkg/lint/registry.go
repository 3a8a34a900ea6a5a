package lint

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"

	"github.com/leapstack-labs/findrules/pkg/core"
)

const (
	// RulesSubdir is where stylelint keeps one directory per rule.
	RulesSubdir = "lib/rules"

	// DocFileName is the per-rule documentation file.
	DocFileName = "README.md"
)

// Registry is an immutable snapshot of the rules a library ships.
type Registry struct {
	libraryDir string
	names      []core.RuleName // sorted, unique
	index      map[core.RuleName]struct{}
}

// NewRegistry builds a registry from a list of rule names.
// Duplicates are dropped.
func NewRegistry(names ...core.RuleName) *Registry {
	sorted := core.SortedUnique(names)
	index := make(map[core.RuleName]struct{}, len(sorted))
	for _, name := range sorted {
		index[name] = struct{}{}
	}
	return &Registry{names: sorted, index: index}
}

// ReadRegistry lists the rules installed under libraryDir/lib/rules.
// Every subdirectory is a rule; files such as index.js are ignored.
func ReadRegistry(fsys billy.Filesystem, libraryDir string) (*Registry, error) {
	dir := filepath.Join(libraryDir, filepath.FromSlash(RulesSubdir))

	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, &core.RegistryUnavailableError{Dir: dir, Err: err}
	}

	names := make([]core.RuleName, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Skip hidden and private helper directories
		if strings.HasPrefix(entry.Name(), ".") || strings.HasPrefix(entry.Name(), "_") {
			continue
		}
		names = append(names, core.RuleName(entry.Name()))
	}

	if len(names) == 0 {
		return nil, &core.RegistryUnavailableError{Dir: dir, Err: fmt.Errorf("no rule directories found")}
	}

	reg := NewRegistry(names...)
	reg.libraryDir = libraryDir
	return reg, nil
}

// Names returns all rule names in sorted order.
func (r *Registry) Names() []core.RuleName {
	out := make([]core.RuleName, len(r.names))
	copy(out, r.names)
	return out
}

// Has reports whether the registry contains a rule.
func (r *Registry) Has(name core.RuleName) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.names)
}

// LibraryDir returns the directory the registry was read from, if any.
func (r *Registry) LibraryDir() string {
	return r.libraryDir
}

// RuleDocPath returns the documentation path for a rule.
func RuleDocPath(libraryDir string, rule core.RuleName) string {
	return filepath.Join(libraryDir, filepath.FromSlash(RulesSubdir), string(rule), DocFileName)
}
