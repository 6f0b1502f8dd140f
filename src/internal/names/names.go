// Package names holds helpers for author strings as stored in the catalog.
package names

import (
	"strings"
)

// LastToken returns the final whitespace-separated token of an author string,
// or "" when there is none. For "Jane Austen, Mark Twain" this is "Twain".
func LastToken(author string) string {
	parts := strings.Fields(author)
	if len(parts) == 0 {
		return ""
	}
	return parts[len(parts)-1]
}

// CollationKey is the lower-cased last token, used as the primary sort key.
func CollationKey(author string) string {
	return strings.ToLower(LastToken(author))
}

// Join trims each value, drops empties, and joins the rest with ", ".
func Join(vals []string) string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, ", ")
}
