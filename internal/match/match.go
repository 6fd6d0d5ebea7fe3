// Package match implements the keyword matching shared by the gate,
// the scorer and the digest tag inference.
package match

import (
	"regexp"
	"strings"
)

// ContainsAny reports whether text matches at least one keyword,
// case-insensitively. Phrases (keywords with spaces) use substring match.
// Short tokens (<=3 runes) require a whole-word hit so that "ar" cannot
// match inside "market". Longer single words use plain substring match.
func ContainsAny(text string, keywords []string) bool {
	text = strings.ToLower(text)

	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}

		if strings.Contains(k, " ") {
			if strings.Contains(text, k) {
				return true
			}
			continue
		}

		if len([]rune(k)) <= 3 {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
			if re.MatchString(text) {
				return true
			}
			continue
		}

		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// FirstMatch returns the first keyword that matches text, using the same
// rules as ContainsAny, and whether any matched at all.
func FirstMatch(text string, keywords []string) (string, bool) {
	for _, k := range keywords {
		if ContainsAny(text, []string{k}) {
			return k, true
		}
	}
	return "", false
}
