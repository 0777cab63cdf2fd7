package translation

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy strips every tag. Policies are safe for concurrent use once built.
var strictPolicy = bluemonday.StrictPolicy()

// maxSanitizePasses bounds the strip and decode loop for nested entity encoding.
const maxSanitizePasses = 8

// Sanitize neutralises markup in user input and collapses whitespace.
// Tags are removed entirely and entities are decoded so the completion service
// sees readable text. Stripping and decoding repeat until the text is stable,
// so entity-encoded markup is removed rather than revived. Output escaping
// happens later, in Normalize.
func Sanitize(text string) string {
	clean := text
	stable := false
	for range maxSanitizePasses {
		next := html.UnescapeString(strictPolicy.Sanitize(clean))
		if next == clean {
			stable = true
			break
		}
		clean = next
	}
	if !stable {
		// Still decoding into markup: keep the escaped form.
		clean = strictPolicy.Sanitize(clean)
	}
	return strings.Join(strings.Fields(clean), " ")
}
