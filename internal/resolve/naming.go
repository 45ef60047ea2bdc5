package resolve

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SnakeCase converts a PascalCase member name to snake_case:
// "EmberPepper" -> "ember_pepper". Every capital starts a new word, so
// acronyms split per letter: "HPBoost" -> "h_p_boost".
func SnakeCase(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	first, size := utf8.DecodeRuneInString(s)
	b.WriteRune(unicode.ToLower(first))
	for _, r := range s[size:] {
		if unicode.IsUpper(r) {
			b.WriteByte('_')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var romanNumeral = regexp.MustCompile(`(?i)^i+$`)

// Label turns a snake_case identifier segment into a display label:
// "iron_gear_ii" -> "Iron Gear II".
func Label(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		switch {
		case romanNumeral.MatchString(w):
			words[i] = strings.ToUpper(w)
		case w != "":
			r, size := utf8.DecodeRuneInString(w)
			words[i] = string(unicode.ToUpper(r)) + w[size:]
		}
	}
	return strings.Join(words, " ")
}
