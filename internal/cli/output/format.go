package output

import (
	"fmt"
	"strings"
)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item with a bold key.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}

// FormatCode wraps s in backticks.
func FormatCode(s string) string {
	return "`" + s + "`"
}

// FormatLink returns a markdown link, or the bare text when url is empty.
func FormatLink(text, url string) string {
	if url == "" {
		return text
	}
	return fmt.Sprintf("[%s](%s)", text, url)
}

// StatusLine writes a status marker followed by a name and optional detail.
// Status is "success" or "failed".
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		mark := "[x]"
		if status != "success" {
			mark = "[ ]"
		}
		line := fmt.Sprintf("- %s %s", mark, name)
		if detail != "" {
			line += " (" + detail + ")"
		}
		r.Println(line)
		return
	}

	marker := r.styles.StatusSuccess.String()
	if status != "success" {
		marker = r.styles.StatusFailed.String()
	}
	line := fmt.Sprintf("  %s %s", marker, name)
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}
