package ttparse

import "strings"

// substituteHyphens implements spec.md §4.11's plain-text hyphen
// substitution: a run of exactly two hyphens becomes an en dash, a run
// of exactly three becomes an em dash, any other run (one, or four or
// more) passes through unchanged. This only ever sees the contents of
// a single OtherText token, so it can never merge across an escaped
// hyphen or a scope boundary — those are already split into their own
// tokens before this runs.
func substituteHyphens(s string) string {
	if !strings.ContainsRune(s, '-') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] != '-' {
			j := i
			for j < len(s) && s[j] != '-' {
				j++
			}
			b.WriteString(s[i:j])
			i = j
			continue
		}
		j := i
		for j < len(s) && s[j] == '-' {
			j++
		}
		switch j - i {
		case 2:
			b.WriteString("–")
		case 3:
			b.WriteString("—")
		default:
			b.WriteString(s[i:j])
		}
		i = j
	}
	return b.String()
}
