package slug

import (
	"cmp"
	"maps"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultSeparator is placed between words unless Separator overrides it.
const DefaultSeparator = "-"

// Letters NFKD leaves intact because they are distinct letters, not base+mark.
var latinFolds = strings.NewReplacer(
	"ß", "s",
	"ł", "l", "Ł", "L",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"ø", "o", "Ø", "O",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"þ", "th", "Þ", "TH",
	"ı", "i",
)

// Option configures Make.
type Option func(*options)

type options struct {
	replacements map[string]string
	separator    string
	stripChars   string
	maxLength    int
	lowercase    bool
}

func defaultOptions() *options {
	return &options{
		separator: DefaultSeparator,
		lowercase: true,
	}
}

// Separator sets the string placed between words.
// Default: "-"
func Separator(sep string) Option {
	return func(o *options) {
		o.separator = sep
	}
}

// Lowercase controls whether letters are lowercased.
// Default: true
func Lowercase(enabled bool) Option {
	return func(o *options) {
		o.lowercase = enabled
	}
}

// MaxLength limits the result to n runes. Zero or negative means unlimited.
func MaxLength(n int) Option {
	return func(o *options) {
		o.maxLength = n
	}
}

// StripChars removes every character of chars from the input before processing.
func StripChars(chars string) Option {
	return func(o *options) {
		o.stripChars = chars
	}
}

// CustomReplace applies literal replacements to the input before processing.
func CustomReplace(replacements map[string]string) Option {
	return func(o *options) {
		o.replacements = replacements
	}
}

// Make converts s into a slug.
func Make(s string, opts ...Option) string {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	if o.stripChars != "" {
		s = strings.Map(func(r rune) rune {
			if strings.ContainsRune(o.stripChars, r) {
				return -1
			}
			return r
		}, s)
	}
	if len(o.replacements) > 0 {
		s = replacer(o.replacements).Replace(s)
	}
	s = fold(s)

	var b strings.Builder
	b.Grow(len(s))

	pending := false
	for _, r := range s {
		if !isASCIIAlnum(r) {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteString(o.separator)
		}
		pending = false
		if o.lowercase && r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}

	out := b.String()
	if o.maxLength > 0 {
		out = truncate(out, o.maxLength, o.separator)
	}
	return out
}

// IsValid reports whether s is a non-empty slug already in default canonical form.
func IsValid(s string) bool {
	return s != "" && Make(s) == s
}

// fold maps Latin letters with diacritics to their ASCII base letters.
// Compatibility forms (ligatures, roman numerals, superscripts) are expanded too.
// Transformers returned by transform.Chain keep state, so one is built per call.
func fold(s string) string {
	s = latinFolds.Replace(s)
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func replacer(replacements map[string]string) *strings.Replacer {
	keys := slices.SortedFunc(maps.Keys(replacements), func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		if k == "" {
			continue
		}
		pairs = append(pairs, k, replacements[k])
	}
	return strings.NewReplacer(pairs...)
}

func truncate(s string, n int, sep string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	s = string(r[:n])
	if sep != "" {
		s = strings.TrimRight(s, sep)
	}
	return s
}

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
