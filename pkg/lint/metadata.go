package lint

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/findrules/pkg/core"
)

// DefaultDocsBaseURL is the hosted stylelint rule documentation.
const DefaultDocsBaseURL = "https://stylelint.io/user-guide/rules"

// DocsBaseURL can be overridden via config for mirrors or forks of the library.
var DocsBaseURL = DefaultDocsBaseURL

// BuildDocURL constructs a documentation URL for a rule.
func BuildDocURL(rule core.RuleName) string {
	return fmt.Sprintf("%s/%s/", DocsBaseURL, rule)
}

// SetDocsBaseURL overrides the default documentation base URL.
func SetDocsBaseURL(url string) {
	DocsBaseURL = strings.TrimSuffix(url, "/")
}

// ResetDocsBaseURL resets to the default documentation URL.
func ResetDocsBaseURL() {
	DocsBaseURL = DefaultDocsBaseURL
}
