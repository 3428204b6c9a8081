package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Sanitize strips markup from user text (notes, names, saved tips) and trims it. Text is stored plain,
// so the entities bluemonday emits are decoded; decoding repeats until no markup is left.
func Sanitize(input string) string {
	out := input
	for i := 0; i < 4; i++ {
		next := html.UnescapeString(sanitizer.Sanitize(out))
		if next == out {
			break
		}
		out = next
	}
	return strings.TrimSpace(out)
}
