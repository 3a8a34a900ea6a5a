package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTest(mode OutputMode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputMode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"TEXT", ModeText, false},
		{"md", ModeMarkdown, false},
		{"markdown", ModeMarkdown, false},
		{"json", ModeJSON, false},
		{"yml", ModeYAML, false},
		{"xml", ModeAuto, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		name  string
		mode  OutputMode
		isTTY bool
		want  OutputMode
	}{
		{"auto on terminal", ModeAuto, true, ModeText},
		{"auto piped", ModeAuto, false, ModeMarkdown},
		{"explicit text piped", ModeText, false, ModeText},
		{"explicit json on terminal", ModeJSON, true, ModeJSON},
		{"unknown falls back to auto", Mode("bogus"), false, ModeMarkdown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
			assert.Equal(t, tt.isTTY, r.IsTTY())
		})
	}
}

func TestHeader(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTest(ModeMarkdown, false)
		r.Header(2, "UNUSED")
		assert.Equal(t, "## UNUSED\n\n", out.String())
	})

	t.Run("text without terminal has no escapes", func(t *testing.T) {
		r, out, _ := newTest(ModeText, false)
		r.Header(1, "findrules")
		assert.Contains(t, out.String(), "findrules")
		assert.False(t, ansi.MatchString(out.String()))
	})
}

func TestDiagnosticsGoToErrWriter(t *testing.T) {
	r, out, errOut := newTest(ModeMarkdown, false)

	r.Error("Error: boom")
	r.Warning("careful")

	assert.Empty(t, out.String())
	assert.Contains(t, errOut.String(), "Error: boom")
	assert.Contains(t, errOut.String(), "Warning: careful")
}

func TestMutedAndSuccess(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Muted("nothing here")
	r.Success("All rules are up-to-date!")

	assert.Equal(t, "_nothing here_\nAll rules are up-to-date!\n", out.String())
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string][]string{"unused": {}}))

	assert.Equal(t, "{\n  \"unused\": []\n}\n", out.String())
}

func TestStructured(t *testing.T) {
	payload := AuditOutput{RunID: "abc", Version: "1.0.0", ConfigSources: []string{}}

	t.Run("yaml", func(t *testing.T) {
		r, out, _ := newTest(ModeYAML, false)
		require.NoError(t, r.Structured(payload))

		var got map[string]any
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "abc", got["run_id"])
		assert.NotContains(t, got, "unused")
	})

	t.Run("json", func(t *testing.T) {
		r, out, _ := newTest(ModeJSON, false)
		require.NoError(t, r.Structured(payload))

		var got map[string]any
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "1.0.0", got["version"])
	})
}

func TestTable(t *testing.T) {
	r, out, _ := newTest(ModeText, false)
	r.Table([]string{"Rule", "URL"}, [][]string{
		{"color-named", "https://stylelint.io/user-guide/rules/color-named/"},
		{"indentation", "https://stylelint.io/user-guide/rules/indentation/"},
	})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Rule")
	assert.Contains(t, lines[1], "color-named")
	assert.Contains(t, lines[2], "indentation")
	// Columns line up.
	assert.Equal(t, strings.Index(lines[1], "https://"), strings.Index(lines[2], "https://"))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Clamped", FormatHeader(0, "Clamped"))
	assert.Equal(t, "- **Config:** .stylelintrc", FormatKeyValue("Config", ".stylelintrc"))
	assert.Equal(t, "`a`", FormatCode("a"))
	assert.Equal(t, "[a](u)", FormatLink("a", "u"))
	assert.Equal(t, "a", FormatLink("a", ""))
}

func TestStatusLine(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.StatusLine("color-named", "success", "not deprecated")
	r.StatusLine("indentation", "failed", "")

	assert.Equal(t, "- [x] color-named (not deprecated)\n- [ ] indentation\n", out.String())
}
