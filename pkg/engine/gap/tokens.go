package gap

import (
	"regexp"
	"strconv"
	"strings"
)

// matcher finds whole-word tokens; a trailing * turns a token into a stem
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(tokens []string) matcher {
	alts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		tok = strings.TrimSpace(strings.ToLower(tok))
		if tok == "" {
			continue
		}
		if stem, ok := strings.CutSuffix(tok, "*"); ok {
			alts = append(alts, phrase(stem)+`\w*`)
			continue
		}
		alts = append(alts, phrase(tok)+`\b`)
	}
	if len(alts) == 0 {
		return matcher{}
	}
	return matcher{re: regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)`)}
}

// phrase quotes a token and lets inner spaces match any whitespace run
func phrase(tok string) string {
	words := strings.Fields(tok)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `\s+`)
}

func (m matcher) match(text string) bool {
	return m.re != nil && m.re.MatchString(text)
}

var (
	digitPattern  = regexp.MustCompile(`\d`)
	numberPattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
)

// numbers extracts numeric literals in order, ignoring thousands separators
func numbers(text string) []float64 {
	var out []float64
	for _, m := range numberPattern.FindAllString(text, -1) {
		n, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}
