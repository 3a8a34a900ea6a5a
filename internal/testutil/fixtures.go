package testutil

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

// LibraryDir is where fixtures install the fake stylelint package.
const LibraryDir = "/project/node_modules/stylelint"

// NewLibraryFS returns an in-memory filesystem with a stylelint install at
// LibraryDir. docs maps rule names to their README content.
func NewLibraryFS(t testing.TB, docs map[string]string) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	AddRules(t, fs, docs)
	WriteFile(t, fs, filepath.Join(LibraryDir, "lib", "rules", "index.js"), "module.exports = {};\n")
	return fs
}

// AddRules writes one README per rule under LibraryDir.
func AddRules(t testing.TB, fs billy.Filesystem, docs map[string]string) {
	t.Helper()
	for rule, doc := range docs {
		WriteFile(t, fs, filepath.Join(LibraryDir, "lib", "rules", rule, "README.md"), doc)
	}
}

// AddUndocumentedRule creates a rule directory without a README.
func AddUndocumentedRule(t testing.TB, fs billy.Filesystem, rule string) {
	t.Helper()
	WriteFile(t, fs, filepath.Join(LibraryDir, "lib", "rules", rule, "index.js"), "module.exports = {};\n")
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, fs billy.Filesystem, path, content string) {
	t.Helper()
	if err := util.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
