package recipients_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/mailcast/pkg/recipients"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		csv      string
		manual   []string
		expected []string
	}{
		{
			name:     "union of csv and manual",
			csv:      "a@b.com\nBAD\n",
			manual:   []string{"a@b.com", "c@d.org"},
			expected: []string{"a@b.com", "c@d.org"},
		},
		{
			name:     "csv only",
			csv:      "one@example.com\ntwo@example.com\n",
			expected: []string{"one@example.com", "two@example.com"},
		},
		{
			name:     "manual only with malformed entry",
			manual:   []string{"good@example.com", "not-an-email", "also.good@example.co.uk"},
			expected: []string{"good@example.com", "also.good@example.co.uk"},
		},
		{
			name:     "whitespace trimmed",
			csv:      "  padded@example.com  \r\n",
			manual:   []string{"\ttabbed@example.com "},
			expected: []string{"padded@example.com", "tabbed@example.com"},
		},
		{
			name:     "case-insensitive dedup",
			csv:      "User@Example.COM\n",
			manual:   []string{"user@example.com"},
			expected: []string{"user@example.com"},
		},
		{
			name:     "domain must have a dot",
			manual:   []string{"a@localhost", "a@host.io"},
			expected: []string{"a@host.io"},
		},
		{
			name:     "tld must be at least two letters",
			manual:   []string{"a@b.c", "a@b.co"},
			expected: []string{"a@b.co"},
		},
		{
			name:     "empty inputs",
			expected: nil,
		},
		{
			name:     "blank lines skipped",
			csv:      "\n\n  \nreal@example.com\n",
			expected: []string{"real@example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, recipients.Resolve(tt.csv, tt.manual))
		})
	}
}

func TestResolve_NoDuplicatesNoInvalid(t *testing.T) {
	t.Parallel()

	got := recipients.Resolve(
		"a@b.com\na@b.com\nA@B.COM\ngarbage\n@nolocal.com\nnodomain@\n",
		[]string{"a@b.com", "x@y.dev", "x@y.dev"},
	)

	seen := make(map[string]int)
	for _, addr := range got {
		seen[addr]++
		assert.True(t, recipients.Valid(addr), "resolved address %q fails the predicate", addr)
	}
	for addr, n := range seen {
		assert.Equal(t, 1, n, "address %q appears %d times", addr, n)
	}
	assert.ElementsMatch(t, []string{"a@b.com", "x@y.dev"}, got)
}

func TestValid(t *testing.T) {
	t.Parallel()

	assert.True(t, recipients.Valid("user@example.com"))
	assert.True(t, recipients.Valid("User.Name+tag@sub.example.org"))
	assert.True(t, recipients.Valid("  spaced@example.com  "))
	assert.False(t, recipients.Valid("no-at-sign"))
	assert.False(t, recipients.Valid("two@@example.com"))
	assert.False(t, recipients.Valid("a@b"))
	assert.False(t, recipients.Valid(""))
}
