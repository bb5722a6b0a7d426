// Package sources contains the built-in source adapters the screening
// executor fans out to: watchlist lookups, chain intelligence, payment
// dispute history, and adverse media search.
//
// Every adapter normalizes its upstream response into a signal.Finding; none
// of them score or rank — that is the scorer's job.
package sources

import "strings"

// ListEntry is one row of a watchlist (sanctions or PEP). Entries are data,
// typically loaded from a list provider feed; the built-in defaults exist so
// development mode has something to match against.
type ListEntry struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Country  string   `json:"country,omitempty"`
	Programs []string `json:"programs,omitempty"`
	Ref      string   `json:"ref,omitempty"`
}

// normalizeName lowercases, strips punctuation, and collapses whitespace so
// "Al-Rashid  Trading, LLC" and "al rashid trading llc" compare equal.
func normalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// matchList returns the first entry whose name or alias matches the
// normalized query, plus the exact string that matched.
func matchList(entries []ListEntry, query string) (*ListEntry, string) {
	q := normalizeName(query)
	if q == "" {
		return nil, ""
	}
	for i := range entries {
		if normalizeName(entries[i].Name) == q {
			return &entries[i], entries[i].Name
		}
		for _, alias := range entries[i].Aliases {
			if normalizeName(alias) == q {
				return &entries[i], alias
			}
		}
	}
	return nil, ""
}
