package catalog

import (
	"regexp"
	"strings"
)

var (
	tagPattern  = regexp.MustCompile(`<[^>]*>`)
	nbspPattern = regexp.MustCompile(`&nbsp;`)
)

// StripMarkup converts rich HTML content into comparable plain text by
// removing tags and non-breaking spaces. Both catalog descriptions are
// normalized through this before comparison so formatting differences
// between the two stores never register as content drift.
func StripMarkup(html string) string {
	if html == "" {
		return ""
	}
	text := tagPattern.ReplaceAllString(html, "")
	text = nbspPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
