package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcast/pkg/sanitizer"
)

func TestSanitize_ScriptNeverSurvives(t *testing.T) {
	t.Parallel()

	s := sanitizer.New()

	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "plain script tag",
			input: `<p>Hello</p><script>alert('xss')</script>`,
		},
		{
			name:  "script with attributes",
			input: `<script src="https://evil.com/x.js" defer></script>`,
		},
		{
			name:  "uppercase script",
			input: `<SCRIPT>alert(1)</SCRIPT>`,
		},
		{
			name:  "script nested in allowed tag",
			input: `<td align="left"><script>steal()</script></td>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := s.Sanitize(tt.input)
			assert.NotContains(t, out, "<script")
			assert.NotContains(t, out, "<SCRIPT")
			// The attempt stays visible as inert text rather than vanishing.
			assert.Contains(t, out, "&lt;")
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	t.Parallel()

	s := sanitizer.New()

	inputs := []string{
		`<p>Hello <strong>world</strong></p>`,
		`<script>alert('x')</script>`,
		`<div><p>wrapped</p></div>`,
		`<a href="https://example.com" onclick="x()">link</a>`,
		`<img src="cid:abc" alt="pic">`,
		`text with <unknown attr="1"> markers & entities &lt;kept&gt;`,
		`<table><tr><td align="right">cell</td></tr></table>`,
		``,
	}

	for _, in := range inputs {
		once := s.Sanitize(in)
		twice := s.Sanitize(once)
		require.Equal(t, once, twice, "input %q", in)
	}
}

func TestSanitize_AllowList(t *testing.T) {
	t.Parallel()

	s := sanitizer.New()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:     "allowed formatting passes",
			input:    `<p>Hi <strong>there</strong> <em>friend</em></p>`,
			contains: []string{"<p>", "<strong>there</strong>", "<em>friend</em>"},
		},
		{
			name:        "event handlers stripped from allowed tags",
			input:       `<img src="https://example.com/a.png" onerror="alert(1)">`,
			contains:    []string{`src="https://example.com/a.png"`},
			notContains: []string{"onerror"},
		},
		{
			name:        "javascript href removed",
			input:       `<a href="javascript:alert(1)">click</a>`,
			notContains: []string{"javascript:"},
		},
		{
			name:     "cid image reference kept",
			input:    `<img src="cid:image-1234">`,
			contains: []string{`src="cid:image-1234"`},
		},
		{
			name:     "mailto link kept",
			input:    `<a href="mailto:a@b.com">mail</a>`,
			contains: []string{`href="mailto:a@b.com"`},
		},
		{
			name:     "relative link kept",
			input:    `<a href="#section">jump</a>`,
			contains: []string{`href="#section"`},
		},
		{
			name:        "disallowed div escaped not dropped",
			input:       `<div>content</div>`,
			contains:    []string{"&lt;div&gt;", "content"},
			notContains: []string{"<div>"},
		},
		{
			name:        "iframe escaped",
			input:       `<iframe src="https://evil.com"></iframe>`,
			notContains: []string{"<iframe"},
		},
		{
			name:     "table alignment kept",
			input:    `<td align="center">x</td>`,
			contains: []string{`align="center"`},
		},
		{
			name:        "style filtered to allowed properties",
			input:       `<span style="color: red; position: fixed">x</span>`,
			contains:    []string{"color"},
			notContains: []string{"position"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := s.Sanitize(tt.input)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, nc := range tt.notContains {
				assert.NotContains(t, out, nc)
			}
		})
	}
}

func TestSanitize_CustomConfig(t *testing.T) {
	t.Parallel()

	s := sanitizer.NewWithConfig(sanitizer.Config{
		Tags: []string{"p", "b"},
	})

	out := s.Sanitize(`<p>keep</p><strong>escape me</strong>`)
	assert.Contains(t, out, "<p>keep</p>")
	assert.NotContains(t, out, "<strong>")
	assert.Contains(t, out, "escape me")
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	s := sanitizer.New()

	assert.Equal(t, "Hello", s.StripTags(`<b>Hello</b>`))
	assert.Equal(t, "plain subject", s.StripTags("plain subject"))
	assert.NotContains(t, s.StripTags(`<script>x</script>subject`), "<script>")
}
