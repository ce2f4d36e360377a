package enrich

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sells-group/prospect-cli/internal/search"
)

var stripPolicy = bluemonday.StrictPolicy()

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// plainText strips markup from a search snippet and collapses whitespace.
func plainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(stripPolicy.Sanitize(s))), " ")
}

// BuildContext concatenates result titles and snippets in order. Entries are
// appended whole until the next one would exceed maxChars.
func BuildContext(results []search.Result, maxChars int) string {
	var b strings.Builder
	used := 0
	for _, r := range results {
		title := search.CleanTitle(plainText(r.Title))
		content := plainText(r.Content)
		if title == "" && content == "" {
			continue
		}
		entry := fmt.Sprintf("Source: %s\nTitle: %s\n%s\n\n", r.URL, title, content)
		n := runeLen(entry)
		if used+n > maxChars {
			break
		}
		b.WriteString(entry)
		used += n
	}
	return strings.TrimSpace(b.String())
}
