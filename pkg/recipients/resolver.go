// Package recipients resolves a campaign's recipient set from a CSV blob
// and a manual address list.
package recipients

import (
	"regexp"
	"strings"
)

// addressPattern is a pragmatic syntax check: local part, @, dotted domain,
// TLD of at least two letters. Matching is case-insensitive; addresses are
// normalized to lower case before comparison so the predicate and the dedup
// set agree on what counts as the same recipient.
var addressPattern = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)

// Valid reports whether addr passes the address syntax predicate after
// trimming surrounding whitespace.
func Valid(addr string) bool {
	return addressPattern.MatchString(strings.TrimSpace(addr))
}

// Resolve returns the deduplicated union of addresses from csvBlob (one
// address per line) and manual. Entries are trimmed, validated against the
// syntax predicate and lowercased; invalid entries are dropped silently.
// The result preserves first-seen order. An empty result means the campaign
// has nobody to send to and the caller must not dispatch.
func Resolve(csvBlob string, manual []string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(raw string) {
		addr := strings.ToLower(strings.TrimSpace(raw))
		if addr == "" || !addressPattern.MatchString(addr) {
			return
		}
		if _, dup := seen[addr]; dup {
			return
		}
		seen[addr] = struct{}{}
		out = append(out, addr)
	}

	if csvBlob != "" {
		for _, line := range strings.Split(csvBlob, "\n") {
			add(strings.TrimSuffix(line, "\r"))
		}
	}
	for _, m := range manual {
		add(m)
	}

	return out
}
