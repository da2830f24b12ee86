// Package normalizer canonicalizes merchant names and addresses for comparison.
package normalizer

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

// Normalize lowercases, strips diacritics, drops every character outside
// [a-z0-9] and whitespace, then collapses whitespace runs to a single space.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	decomposed := StripDiacritics(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeAll joins parts with a space and normalizes the result, so empty
// parts leave no trace.
func NormalizeAll(parts ...string) string {
	return Normalize(strings.Join(parts, " "))
}

type abbreviationRule struct {
	re   *regexp.Regexp
	full string
}

var (
	abbreviationsOnce sync.Once
	abbreviationRules []abbreviationRule
	abbreviationsErr  error
)

func loadAbbreviationRules() ([]abbreviationRule, error) {
	abbreviationsOnce.Do(func() {
		cfg, err := LoadRulesConfig()
		if err != nil {
			abbreviationsErr = err
			return
		}
		for _, a := range cfg.Abbreviations {
			abbreviationRules = append(abbreviationRules, abbreviationRule{
				re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(a.Abbr) + `\.?\s`),
				full: a.Full + " ",
			})
		}
	})
	return abbreviationRules, abbreviationsErr
}

// ExpandAbbreviations lowercases text and rewrites every table abbreviation
// (optionally dotted, followed by whitespace) to its full form, in table order.
// "Av. Brasil" becomes "avenida brasil".
func ExpandAbbreviations(text string) string {
	out := strings.ToLower(text)

	rules, err := loadAbbreviationRules()
	if err != nil {
		return out
	}
	for _, rule := range rules {
		out = rule.re.ReplaceAllLiteralString(out, rule.full)
	}
	return out
}

// Abbreviations returns the expansion table in application order.
func Abbreviations() []Abbreviation {
	cfg, err := LoadRulesConfig()
	if err != nil {
		return nil
	}
	return cfg.Abbreviations
}
