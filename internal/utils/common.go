package utils

import "strings"

// SplitAndTrim splits s by sep, trims whitespace from each part and drops
// the parts left empty.
func SplitAndTrim(s, sep string) []string {
	out := make([]string, 0, strings.Count(s, sep)+1)
	for part := range strings.SplitSeq(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
