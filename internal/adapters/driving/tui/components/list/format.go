package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/rostrum/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// SpeechLabel formats a speech as "FRA 2023  Title".
func SpeechLabel(doc *domain.Document) string {
	var parts []string
	if code := doc.MetaString(domain.MetaCountryCode); code != "" {
		parts = append(parts, code)
	}
	if year := doc.Year(); year > 0 {
		parts = append(parts, fmt.Sprint(year))
	}
	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	if len(parts) == 0 {
		return title
	}
	return strings.Join(parts, " ") + "  " + title
}

// Truncate shortens s to at most n runes, ending in "...".
func Truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// RenderHighlight styles the bracketed terms of a search snippet.
func RenderHighlight(s *styles.Styles, snippet string) string {
	var b strings.Builder
	for {
		open := strings.IndexByte(snippet, '[')
		if open < 0 {
			break
		}
		end := strings.IndexByte(snippet[open:], ']')
		if end < 0 {
			break
		}
		end += open
		b.WriteString(s.Muted.Render(snippet[:open]))
		b.WriteString(s.Match.Render(snippet[open+1 : end]))
		snippet = snippet[end+1:]
	}
	b.WriteString(s.Muted.Render(snippet))
	return b.String()
}

// Window returns the visible [start, end) range of a list of n items
// that keeps selected on screen with at most visible rows.
func Window(selected, n, visible int) (start, end int) {
	if visible < 1 {
		visible = 1
	}
	if selected >= visible {
		start = selected - visible + 1
	}
	end = start + visible
	if end > n {
		end = n
	}
	return start, end
}
