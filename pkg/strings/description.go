package strings

import (
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
)

// DescriptionMaxLen is the display width of description columns in tables.
const DescriptionMaxLen = 60

// minSnipLen leaves room for one character plus the "..." indicator.
const minSnipLen = 4

// Description flattens s onto a single line and snips it to maxLen display
// columns, ending in "..." when cut. A maxLen of zero or less only flattens.
func Description(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 0 {
		return s
	}
	if maxLen < minSnipLen {
		maxLen = minSnipLen
	}
	return text.Snip(s, maxLen, "...")
}
