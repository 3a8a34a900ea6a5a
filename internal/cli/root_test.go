package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/cli/config"
	"github.com/leapstack-labs/findrules/internal/cli/testutil"
	"github.com/leapstack-labs/findrules/pkg/core"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func sampleProject(t *testing.T, config string) *testutil.Project {
	t.Helper()
	return testutil.SetupTestProject(t, map[string]string{
		"block-no-empty": testutil.CurrentDoc,
		"color-named":    testutil.CurrentDoc,
		"indentation":    testutil.DeprecatedDoc,
	}, config)
}

func TestRoot_Audit(t *testing.T) {
	p := sampleProject(t, `{"rules": {"color-named": "never", "indentation": 2, "no-such-rule": true}}`)

	out, _, err := run(t, "--cwd", p.Root, "-o", "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# findrules v"+Version)
	assert.Contains(t, out, "## UNUSED: Available rules that are not configured:\n\n- [`block-no-empty`]")
	assert.Contains(t, out, "## DEPRECATED: Configured rules that are deprecated:\n\n- [`indentation`]")
	assert.Contains(t, out, "## INVALID: Configured rules that are no longer available:\n\n- `no-such-rule`")
	assert.Contains(t, out, "Finished in: ")
	assert.NotContains(t, out, "CURRENT")
}

func TestRoot_AuditExtendsChain(t *testing.T) {
	p := sampleProject(t, `{"extends": "./base.json", "rules": {"color-named": "never"}}`)
	p.WriteFile(t, "base.json", `{"rules": {"block-no-empty": true}}`)

	out, _, err := run(t, "--cwd", p.Root, "-o", "markdown", "--current")
	require.NoError(t, err)

	assert.Contains(t, out, "## CURRENT: Currently configured user rules:\n\n- [`block-no-empty`]")
	assert.Contains(t, out, "All rules are up-to-date!")
}

func TestRoot_SectionFlags(t *testing.T) {
	p := sampleProject(t, `{"rules": {"color-named": "never"}}`)

	out, _, err := run(t, "--cwd", p.Root, "-o", "markdown", "-a", "--unused=false", "--deprecated=false", "--invalid=false")
	require.NoError(t, err)

	assert.Contains(t, out, "## AVAILABLE: All available stylelint rules:")
	assert.NotContains(t, out, "UNUSED")
}

func TestRoot_NoSections(t *testing.T) {
	p := sampleProject(t, `{"rules": {}}`)

	out, _, err := run(t, "--cwd", p.Root, "--unused=false", "--deprecated=false", "--invalid=false")
	require.ErrorIs(t, err, audit.ErrNoSections)
	assert.Contains(t, out, "Usage:")
}

func TestRoot_ConfigNotFound(t *testing.T) {
	p := sampleProject(t, "")

	_, _, err := run(t, "--cwd", p.Root, "-o", "json")
	require.Error(t, err)

	var notFound *core.ConfigNotFoundError
	if !errors.As(err, &notFound) {
		// A stylelint config above the temp directory would be found first.
		t.Skipf("unexpected config above temp dir: %v", err)
	}
}

func TestRoot_ExplicitConfig(t *testing.T) {
	p := sampleProject(t, "")
	path := p.WriteFile(t, "lint/stylelint.yaml", "rules:\n  block-no-empty: true\n  color-named: never\n")

	out, _, err := run(t, "--cwd", p.Root, "--config", path, "-o", "json")
	require.NoError(t, err)

	assert.Contains(t, out, `"config_file": "`+path+`"`)
	assert.Contains(t, out, `"unused": []`)
}

func TestRoot_MissingDocs(t *testing.T) {
	p := sampleProject(t, `{"rules": {}}`)
	require.NoError(t, os.MkdirAll(filepath.Join(p.LibraryDir, "lib", "rules", "no-readme"), 0755))

	_, _, err := run(t, "--cwd", p.Root, "-o", "json")
	var missing *core.DocArtifactUnavailableError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, core.RuleName("no-readme"), missing.Rule)

	out, _, err := run(t, "--cwd", p.Root, "-o", "json", "--missing-docs", "skip")
	require.NoError(t, err)
	assert.Contains(t, out, `"rule": "no-readme"`)
}

func TestRoot_SettingsFile(t *testing.T) {
	p := sampleProject(t, `{"rules": {"color-named": "never"}}`)
	p.WriteFile(t, "findrules.yaml", "output: markdown\ncurrent: true\n")

	out, _, err := run(t, "--cwd", p.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "## CURRENT: Currently configured user rules:")

	// Flags beat the settings file.
	out, _, err = run(t, "--cwd", p.Root, "--current=false")
	require.NoError(t, err)
	assert.NotContains(t, out, "CURRENT")
}

func TestRoot_InvalidSettings(t *testing.T) {
	p := sampleProject(t, `{"rules": {}}`)

	_, _, err := run(t, "--cwd", p.Root, "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestRoot_Help(t *testing.T) {
	out, _, err := run(t, "--help")
	require.NoError(t, err)

	for _, expected := range []string{"watch", "explain", "doctor", "version", "completion", "--unused", "--missing-docs"} {
		assert.Contains(t, out, expected)
	}
}

func TestRoot_Completion(t *testing.T) {
	out, _, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "findrules")

	_, _, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHint bool
	}{
		{"config error", &core.ConfigNotFoundError{SearchFrom: "/project"}, true},
		{"no sections", audit.ErrNoSections, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			PrintError(&buf, tt.err)

			out := buf.String()
			assert.True(t, strings.HasPrefix(out, "Error: "+tt.err.Error()+"\n"))
			assert.Equal(t, tt.wantHint, strings.Contains(out, IssuesURL))
		})
	}
}

func TestGetConfig_Default(t *testing.T) {
	cfg := GetConfig(t.Context())
	assert.Equal(t, config.DefaultConfig(), cfg)
	assert.NotNil(t, GetRenderer(t.Context()))
}
