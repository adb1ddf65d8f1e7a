// Package quotations finds passages that speeches quote and groups the
// ones repeated across speeches.
package quotations

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/custodia-labs/rostrum/internal/core/domain"
	"github.com/custodia-labs/rostrum/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.QuotationAnalyzer = (*Extractor)(nil)

const (
	// minLength is the shortest normalised quotation kept, in runes.
	minLength = 15

	// DefaultSimilarity is the matching ratio above which two quotations
	// are treated as the same passage.
	DefaultSimilarity = 0.85

	speakerWindow = 300 // bytes searched before a quotation for its speaker
	nearWindow    = 80  // bytes before the cue that still count as the attribution
	trailWindow   = 80
	contextWindow = 150
	dedupPrefix   = 100
)

var (
	// ASCII apostrophes and single curly quotes double as apostrophes in
	// speech transcripts, so only double quotes and guillemets delimit.
	quoted = regexp.MustCompile(`["“«]([^"“”«»]{15,500})["”»]`)

	// leadCue matches an attribution phrase ending right before a quote.
	leadCue = regexp.MustCompile(`(?i)(?:\b(?:once |famously |has |had )?(?:said|wrote|declared|stated|observed|noted|remarked|proclaimed|reminded us|taught us)(?: that)?` +
		`|\bput it` +
		`|\b(?:in the words of|to quote|quoting|according to) [^"“”«».;:]{1,80}` +
		`|\b(?:charter|preamble)[^"“”«».;]{0,80})\s*[,:]?\s*$`)

	// trailCue matches a speaker named right after a quote.
	trailCue = regexp.MustCompile(`^\s*(,?\s*(?:said|wrote)\s+|[-–—]\s*)(\p{Lu}[\p{L}.'-]*(?: \p{Lu}[\p{L}.'-]*){0,3})`)

	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+){1,2}) (?:once )?(?:said|wrote|declared|stated)`),
		regexp.MustCompile(`\b(?:President|Secretary-General|Prime Minister|Pope|Dr\.|Mr\.|Mrs\.|Ms\.) (\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+)?)`),
		regexp.MustCompile(`words of (\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+)?)`),
		regexp.MustCompile(`quoting (\p{Lu}\p{Ll}+(?: \p{Lu}\p{Ll}+)?)`),
	}

	ellipsis = regexp.MustCompile(`\.{2,}|…`)
)

// Option configures the extractor.
type Option func(*Extractor)

// WithSimilarity sets the grouping threshold. Values outside (0, 1] are
// ignored.
func WithSimilarity(ratio float64) Option {
	return func(e *Extractor) {
		if ratio > 0 && ratio <= 1 {
			e.similarity = ratio
		}
	}
}

// Extractor finds attributed quotations in speech text.
type Extractor struct {
	similarity float64
}

// New creates an extractor.
func New(opts ...Option) *Extractor {
	e := &Extractor{similarity: DefaultSimilarity}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the quotations of a document in text order. Passages in
// quotes without an attribution phrase next to them are skipped, as are
// repeats of a passage already found in the same document.
func (e *Extractor) Extract(doc *domain.Document) []domain.Quotation {
	text := doc.Content
	seen := make(map[string]bool)

	var out []domain.Quotation
	for _, m := range quoted.FindAllStringSubmatchIndex(text, -1) {
		body := strings.TrimSpace(text[m[2]:m[3]])
		norm := Normalize(body)
		if utf8.RuneCountInString(norm) < minLength {
			continue
		}

		q, ok := attribute(text, m[0], m[1])
		if !ok {
			continue
		}

		key := prefix(norm, dedupPrefix)
		if seen[key] {
			continue
		}
		seen[key] = true

		q.DocumentID = doc.ID
		q.Text = body
		q.Offset = m[0]
		q.Context = text[runeStart(text, m[0]-contextWindow):runeStart(text, m[1]+contextWindow)]
		q.Year = doc.Year()
		q.CountryCode = doc.MetaString(domain.MetaCountryCode)
		out = append(out, q)
	}
	return out
}

// attribute decides whether the quote at text[start:end] is attributed
// and to whom.
func attribute(text string, start, end int) (domain.Quotation, bool) {
	trail := text[end:runeStart(text, end+trailWindow)]
	if m := trailCue.FindStringSubmatchIndex(trail); m != nil {
		confidence := 0.9
		if strings.ContainsAny(trail[m[2]:m[3]], "-–—") {
			confidence = 0.95
		}
		return domain.Quotation{
			Figure:     canonical(strings.TrimRight(trail[m[4]:m[5]], ".")),
			Direct:     true,
			Confidence: confidence,
		}, true
	}

	lead := text[runeStart(text, start-speakerWindow):start]
	loc := leadCue.FindStringIndex(lead)
	if loc == nil {
		return domain.Quotation{}, false
	}

	if fig := figureIn(lead[runeStart(lead, loc[0]-nearWindow):]); fig != "" {
		return domain.Quotation{Figure: fig, Direct: true, Confidence: 0.95}, true
	}
	if fig := figureIn(lead); fig != "" {
		return domain.Quotation{Figure: fig, Confidence: 0.7}, true
	}
	return domain.Quotation{Confidence: 0.5}, true
}

// figureIn names the figure mentioned closest to the end of s: a famous
// figure when one appears, otherwise a capitalised name next to a
// speaking verb or title.
func figureIn(s string) string {
	if name, ok := famousIn(strings.ToLower(s)); ok {
		return name
	}
	for _, re := range namePatterns {
		if all := re.FindAllStringSubmatch(s, -1); len(all) > 0 {
			return all[len(all)-1][1]
		}
	}
	return ""
}

// famousIn finds the famous figure whose mention ends last in lower,
// preferring the longer key when two end together.
func famousIn(lower string) (string, bool) {
	bestEnd, bestLen := -1, 0
	var best string
	for key, name := range famousFigures {
		idx := lastWord(lower, key)
		if idx < 0 {
			continue
		}
		end := idx + len(key)
		if end > bestEnd || (end == bestEnd && len(key) > bestLen) {
			bestEnd, bestLen, best = end, len(key), name
		}
	}
	return best, bestEnd >= 0
}

// lastWord returns the index of the last occurrence of key in s that is
// not part of a longer word, or -1.
func lastWord(s, key string) int {
	for end := len(s); end > 0; {
		idx := strings.LastIndex(s[:end], key)
		if idx < 0 {
			return -1
		}
		before, _ := utf8.DecodeLastRuneInString(s[:idx])
		after, _ := utf8.DecodeRuneInString(s[idx+len(key):])
		if !unicode.IsLetter(before) && !unicode.IsLetter(after) {
			return idx
		}
		end = idx + len(key) - 1
	}
	return -1
}

// canonical maps a trailing attribution to a famous figure's display name
// when it names one.
func canonical(name string) string {
	if fig, ok := famousIn(strings.ToLower(name)); ok {
		return fig
	}
	return name
}

// Normalize folds a quotation for comparison: lower case, outer
// punctuation trimmed, whitespace collapsed and ellipses unified.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Trim(s, ".,;:!?-–— \t\n")
	s = strings.Join(strings.Fields(s), " ")
	return ellipsis.ReplaceAllString(s, "...")
}

// Source returns the origin of a well-known passage, matching normalised
// text by containment or similarity.
func (e *Extractor) Source(norm string) (source, explanation string) {
	for _, k := range knownQuotes {
		if strings.Contains(norm, k.phrase) || e.similar(runes(norm), runes(k.phrase)) {
			return k.source, k.explanation
		}
	}
	return "", ""
}

// Group clusters quotations whose normalised text is at least the
// similarity threshold alike. Each quotation joins the first group whose
// founding quotation it matches. Only groups with two or more members are
// returned, largest first.
func (e *Extractor) Group(quotes []domain.Quotation) []domain.QuotationGroup {
	norms := make([]string, len(quotes))
	seqs := make([][]string, len(quotes))
	for i := range quotes {
		norms[i] = Normalize(quotes[i].Text)
		seqs[i] = runes(norms[i])
	}

	used := make([]bool, len(quotes))
	var groups []domain.QuotationGroup
	for i := range quotes {
		if used[i] {
			continue
		}
		used[i] = true
		members := []int{i}
		for j := i + 1; j < len(quotes); j++ {
			if !used[j] && e.similar(seqs[i], seqs[j]) {
				used[j] = true
				members = append(members, j)
			}
		}
		if len(members) < 2 {
			continue
		}
		groups = append(groups, e.summarize(quotes, members, norms[i]))
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Count > groups[b].Count })
	return groups
}

func (e *Extractor) summarize(quotes []domain.Quotation, members []int, norm string) domain.QuotationGroup {
	g := domain.QuotationGroup{Count: len(members), Countries: []string{}, DocumentIDs: []string{}}

	texts := make(map[string]int)
	figures := make(map[string]int)
	countries := make(map[string]bool)
	docs := make(map[string]bool)
	for _, i := range members {
		q := quotes[i]
		texts[q.Text]++
		if texts[q.Text] > texts[g.Text] || g.Text == "" {
			g.Text = q.Text
		}
		if q.Figure != "" {
			figures[q.Figure]++
			if figures[q.Figure] > figures[g.Figure] || g.Figure == "" {
				g.Figure = q.Figure
			}
		}
		if q.Year > 0 {
			if g.FirstYear == 0 || q.Year < g.FirstYear {
				g.FirstYear = q.Year
			}
			if q.Year > g.LastYear {
				g.LastYear = q.Year
			}
		}
		if q.CountryCode != "" && !countries[q.CountryCode] {
			countries[q.CountryCode] = true
			g.Countries = append(g.Countries, q.CountryCode)
		}
		if !docs[q.DocumentID] {
			docs[q.DocumentID] = true
			g.DocumentIDs = append(g.DocumentIDs, q.DocumentID)
		}
	}
	sort.Strings(g.Countries)

	g.Source, g.Explanation = e.Source(norm)
	return g
}

func (e *Extractor) similar(a, b []string) bool {
	la, lb := len(a), len(b)
	if la+lb == 0 {
		return true
	}
	if 2*float64(min(la, lb))/float64(la+lb) < e.similarity {
		return false
	}
	m := difflib.NewMatcher(a, b)
	if m.QuickRatio() < e.similarity {
		return false
	}
	return m.Ratio() >= e.similarity
}

// runes splits s into one element per character for sequence matching.
func runes(s string) []string {
	return strings.Split(s, "")
}

func prefix(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// runeStart clamps i into s and moves it forward to a rune boundary.
func runeStart(s string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(s) {
		return len(s)
	}
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return i
}
