// Package sanitize normalises company names and Japanese postal addresses
// into search query fragments.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// CompanyName folds full-width ASCII letters and digits to half-width and
// replaces the ideographic space with an ASCII space. Everything else,
// including kana and full-width punctuation, is left untouched.
func CompanyName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r == '　':
			b.WriteRune(' ')
		case isFullWidthAlnum(r):
			b.WriteString(width.Narrow.String(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isFullWidthAlnum(r rune) bool {
	return (r >= 'Ａ' && r <= 'Ｚ') || (r >= 'ａ' && r <= 'ｚ') || (r >= '０' && r <= '９')
}

var (
	quoteChars   = regexp.MustCompile(`["'“”‘’「」『』【】]`)
	chomePattern = regexp.MustCompile(`([0-9]+)丁目`)
	banPattern   = regexp.MustCompile(`([0-9]+)番地?`)
	goPattern    = regexp.MustCompile(`([0-9]+)号`)
	spaceRun     = regexp.MustCompile(`\s+`)
	spacedDash   = regexp.MustCompile(`\s*-\s*`)
	dashRun      = regexp.MustCompile(`-+`)
)

// Address applies NFKC, drops quotes and brackets, rewrites block numbers
// (丁目, 番地, 番, 号) as hyphenated digits and collapses whitespace, so
// "東京都千代田区丸の内１丁目２番３号" becomes "東京都千代田区丸の内1-2-3".
func Address(address string) string {
	s := norm.NFKC.String(address)
	s = quoteChars.ReplaceAllString(s, " ")
	s = chomePattern.ReplaceAllString(s, "$1-")
	s = banPattern.ReplaceAllString(s, "$1-")
	s = goPattern.ReplaceAllString(s, "$1-")
	s = spaceRun.ReplaceAllString(s, " ")
	s = spacedDash.ReplaceAllString(s, "-")
	s = dashRun.ReplaceAllString(s, "-")
	s = strings.TrimSuffix(s, "-")
	return strings.TrimSpace(s)
}

// NameKey lowercases name and keeps only ASCII letters and digits. It is
// the form matched against candidate URLs by the heuristic scorer.
func NameKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
