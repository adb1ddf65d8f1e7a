package input

import (
	"strconv"
	"strings"

	"github.com/custodia-labs/rostrum/internal/core/domain"
)

// ParseQuery splits filter tokens out of a query line. Recognised tokens
// are country:FRA[,DEU], year:1990 and year:1990-1999. Everything else
// is kept as the search text.
func ParseQuery(line string) (string, domain.SearchOptions) {
	var (
		opts  domain.SearchOptions
		terms []string
	)
	for _, tok := range strings.Fields(line) {
		key, val, ok := strings.Cut(tok, ":")
		if !ok || val == "" {
			terms = append(terms, tok)
			continue
		}
		switch strings.ToLower(key) {
		case "country":
			for _, c := range strings.Split(val, ",") {
				if c = strings.TrimSpace(c); c != "" {
					opts.CountryCodes = append(opts.CountryCodes, strings.ToUpper(c))
				}
			}
		case "year":
			from, to, ranged := strings.Cut(val, "-")
			f, err := strconv.Atoi(from)
			if err != nil {
				terms = append(terms, tok)
				continue
			}
			opts.YearFrom, opts.YearTo = f, f
			if ranged {
				if t, err := strconv.Atoi(to); err == nil {
					opts.YearTo = t
				} else {
					opts.YearTo = 0
				}
			}
		default:
			terms = append(terms, tok)
		}
	}
	return strings.Join(terms, " "), opts
}
