// Package slug converts arbitrary text into URL-safe slugs.
//
// Make is the canonical transform used everywhere a string is compared to or
// combined into a slug: Latin diacritics are folded to ASCII, letters are
// lowercased, every run of characters that is not an ASCII letter or digit
// collapses into a single separator, and separators never lead or trail.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/sluggable/pkg/slug"
//
//	s := slug.Make("Hello, World!")
//	// Output: "hello-world"
//
//	s = slug.Make("Café & Restaurant")
//	// Output: "cafe-restaurant"
//
// # Configuration Options
//
// Separator sets the string placed between words:
//
//	slug.Make("Product Name", slug.Separator("_"))
//	// Output: "product_name"
//
// Lowercase controls case conversion:
//
//	slug.Make("Product Name", slug.Lowercase(false))
//	// Output: "Product-Name"
//
// MaxLength limits the slug length in runes and drops a dangling separator:
//
//	slug.Make("This is a very long title", slug.MaxLength(15))
//	// Output: "this-is-a-very"
//
// StripChars removes characters before processing, so they never split words:
//
//	slug.Make("Remove (these) [chars]", slug.StripChars("()[]"))
//	// Output: "remove-these-chars"
//
// CustomReplace applies literal replacements before slugification. Longer
// keys win over shorter ones that match at the same position:
//
//	slug.Make("Fish & Chips @ Home", slug.CustomReplace(map[string]string{"&": "and", "@": "at"}))
//	// Output: "fish-and-chips-at-home"
//
// # Unicode Support
//
// Input is put through compatibility decomposition (NFKD) and combining marks
// are dropped, so ligatures, roman numerals and superscripts become plain
// letters and digits. Letters that have no decomposition (ß, ł, ø, æ and
// friends) are mapped through a small table:
//
//	slug.Make("München straße") // "munchen-strase"
//	slug.Make("Zażółć gęślą")   // "zazolc-gesla"
//	slug.Make("Ǆemal ﬁle Ⅻ")    // "dzemal-file-xii"
//	slug.Make("Test™Case")      // "testtmcase"
//
// Symbols such as "&" and "@" are not spelled out; use CustomReplace for that.
//
// Characters from other scripts (Cyrillic, CJK, emoji) act as separators.
package slug
