// Package sanitizer reduces user-supplied markup to plain text.
package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicy *bluemonday.Policy
	initOnce   sync.Once
)

func initPolicy() {
	initOnce.Do(func() {
		// Strips every element. Tag boundaries become spaces so "<b>a</b><i>b</i>"
		// keeps two words.
		textPolicy = bluemonday.StrictPolicy()
		textPolicy.AddSpaceWhenStrippingTag(true)
	})
}

// StripHTML returns the text content of s with all markup removed.
// Entities are decoded and whitespace runs collapse to a single space, so the
// result is suitable as slug source text.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	initPolicy()
	text := html.UnescapeString(textPolicy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}
