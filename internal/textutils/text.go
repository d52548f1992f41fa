// Package textutils provides text normalisation helpers shared by the field
// extractors.
package textutils

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// CorporateSuffixes are trailing tokens dropped from merchant names.
var CorporateSuffixes = []string{"Pvt", "Ltd", "Inc", "Corp", "LLC"}

// CollapseSpaces trims s and replaces every whitespace run with one space.
func CollapseSpaces(s string) string {
	return whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
}

// TitleCase upper-cases the first letter of each space-separated word and
// lower-cases the rest.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// StripCorporateSuffix removes one trailing CorporateSuffixes token. A name
// made of the suffix alone is returned unchanged.
func StripCorporateSuffix(name string) string {
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return name
	}
	last := name[idx+1:]
	for _, suffix := range CorporateSuffixes {
		if strings.EqualFold(last, suffix) {
			return strings.TrimSpace(name[:idx])
		}
	}
	return name
}

// CleanMerchantName turns a raw capture such as "AMAZON  INDIA PVT" into
// "Amazon India".
func CleanMerchantName(raw string) string {
	return StripCorporateSuffix(TitleCase(CollapseSpaces(raw)))
}

// FirstKeyword returns the first of keywords contained in text, compared
// case-insensitively. Keywords are expected in lower case.
func FirstKeyword(text string, keywords []string) (string, bool) {
	lower := strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(lower, k) {
			return k, true
		}
	}
	return "", false
}
