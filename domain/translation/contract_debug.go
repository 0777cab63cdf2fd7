//go:build debug

package translation

import (
	"fmt"
	"unicode/utf8"
)

// mustBeValid panics when a Request that bypassed NewRequest reaches the
// prompt builder.
func mustBeValid(req Request) {
	n := utf8.RuneCountInString(req.Text())
	if n == 0 || n > MaxTextLength {
		panic(fmt.Sprintf("translation: invalid request text length %d", n))
	}
}
