package audit_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/findrules/internal/audit"
	"github.com/leapstack-labs/findrules/internal/testutil"
	"github.com/leapstack-labs/findrules/pkg/core"
)

type outcome struct {
	report *audit.Report
	err    error
}

func writeOSFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestWatch_RerunsOnConfigChange(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watch test in short mode")
	}

	root := t.TempDir()
	for _, rule := range []string{"a", "b"} {
		writeOSFile(t, filepath.Join(root, "node_modules", "stylelint", "lib", "rules", rule, "README.md"), "# "+rule)
	}
	configPath := filepath.Join(root, ".stylelintrc.json")
	writeOSFile(t, configPath, `{"rules": {"a": true}}`)

	a, err := audit.New(audit.Config{
		ProjectRoot: root,
		Sections:    audit.DefaultSections(),
		Debounce:    20 * time.Millisecond,
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcomes := make(chan outcome, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(r *audit.Report, err error) {
			outcomes <- outcome{report: r, err: err}
		})
	}()

	next := func() outcome {
		t.Helper()
		select {
		case o := <-outcomes:
			return o
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for audit run")
			return outcome{}
		}
	}

	first := next()
	require.NoError(t, first.err)
	assert.Equal(t, []core.RuleName{"b"}, first.report.Result.Unused)

	// Give the watcher a moment to register directories
	time.Sleep(50 * time.Millisecond)
	writeOSFile(t, configPath, `{"rules": {"a": true, "b": true}}`)

	second := next()
	require.NoError(t, second.err)
	assert.Empty(t, second.report.Result.Unused)
	assert.NotEqual(t, first.report.RunID, second.report.RunID)

	// A broken config is reported, not fatal
	writeOSFile(t, configPath, `{"rules": `)
	third := next()
	require.Error(t, third.err)
	assert.Nil(t, third.report)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}

func TestWatch_RecoversFromBrokenExtendsTarget(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping watch test in short mode")
	}

	root := t.TempDir()
	for _, rule := range []string{"a", "b"} {
		writeOSFile(t, filepath.Join(root, "node_modules", "stylelint", "lib", "rules", rule, "README.md"), "# "+rule)
	}
	writeOSFile(t, filepath.Join(root, ".stylelintrc.json"), `{"extends": "./shared/base.json", "rules": {"a": true}}`)
	basePath := filepath.Join(root, "shared", "base.json")
	writeOSFile(t, basePath, `{"rules": `)

	a, err := audit.New(audit.Config{
		ProjectRoot: root,
		Sections:    audit.DefaultSections(),
		Debounce:    20 * time.Millisecond,
		Logger:      testutil.NewTestLogger(t),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outcomes := make(chan outcome, 8)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, func(r *audit.Report, err error) {
			outcomes <- outcome{report: r, err: err}
		})
	}()

	next := func() outcome {
		t.Helper()
		select {
		case o := <-outcomes:
			return o
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for audit run")
			return outcome{}
		}
	}

	first := next()
	require.Error(t, first.err)
	var malformed *core.ConfigMalformedError
	require.ErrorAs(t, first.err, &malformed)

	time.Sleep(50 * time.Millisecond)
	writeOSFile(t, basePath, `{"rules": {"b": true}}`)

	second := next()
	require.NoError(t, second.err)
	assert.Empty(t, second.report.Result.Unused)
	assert.Contains(t, second.report.ConfigSources, basePath)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}
}
