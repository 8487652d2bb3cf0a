package fulltext

import "strings"

// queryOperators are treated as operators by most text-search grammars
// and must be escaped.
const queryOperators = ":/!&|="

// RewriteQueryText turns a raw full-text search phrase into
// index-engine-safe syntax, emulating the legacy query parser's
// escaping rules. Uppercase AND/NOT are lowered because many grammars
// treat them as boolean keywords while the store's full-text semantics
// treat them as ordinary words; the replacement is a plain substring
// replace, so a word like "brANDish" is lowered too.
//
// The rewrite is deterministic but not idempotent: running it on
// already-escaped text double-escapes. Callers rewrite exactly once,
// on raw user input.
func RewriteQueryText(textsearch string) string {
	textsearch = strings.ReplaceAll(textsearch, "AND", "and")
	textsearch = strings.ReplaceAll(textsearch, "NOT", "not")

	var rewritten strings.Builder
	escaped := false
	for _, c := range textsearch {
		switch {
		case c == '\\':
			if escaped {
				rewritten.WriteString(`\\`)
				escaped = false
			} else {
				escaped = true
			}
		case c == '\'':
			// quotes need no escaping here; a pending escape is dropped
			if escaped {
				escaped = false
			}
			rewritten.WriteRune(c)
		case strings.ContainsRune(queryOperators, c):
			rewritten.WriteRune('\\')
			rewritten.WriteRune(c)
		default:
			if escaped {
				rewritten.WriteRune('\\')
				escaped = false
			}
			rewritten.WriteRune(c)
		}
	}
	return rewritten.String()
}
