package tracker_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcast/pkg/htmldoc"
	"github.com/dmitrymomot/mailcast/pkg/tracker"
)

func mustParse(t *testing.T, s string) htmldoc.Document {
	t.Helper()
	doc, err := htmldoc.Parse(s)
	require.NoError(t, err)
	return doc
}

func mustRender(t *testing.T, doc htmldoc.Document) string {
	t.Helper()
	out, err := doc.Render()
	require.NoError(t, err)
	return out
}

func TestRewriteLinks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		in          string
		contains    []string
		notContains []string
	}{
		{
			name:        "absolute http link rewritten",
			in:          `<a href="http://example.com">x</a>`,
			contains:    []string{`href="http://host/track/click/ID?url=http%3A%2F%2Fexample.com"`},
			notContains: []string{`href="http://example.com"`},
		},
		{
			name:     "https link rewritten",
			in:       `<a href="https://example.com/page?a=1&b=2">x</a>`,
			contains: []string{"track/click/ID?url=https%3A%2F%2Fexample.com%2Fpage%3Fa%3D1%26b%3D2"},
		},
		{
			name:     "relative href untouched",
			in:       `<a href="#section">jump</a>`,
			contains: []string{`href="#section"`},
		},
		{
			name:     "mailto untouched",
			in:       `<a href="mailto:a@b.com">mail</a>`,
			contains: []string{`href="mailto:a@b.com"`},
		},
		{
			name:     "anchor without href untouched",
			in:       `<a name="top">top</a>`,
			contains: []string{`<a name="top">top</a>`},
		},
		{
			name: "multiple links each rewritten",
			in:   `<a href="http://one.test">1</a><a href="http://two.test">2</a>`,
			contains: []string{
				"track/click/ID?url=http%3A%2F%2Fone.test",
				"track/click/ID?url=http%3A%2F%2Ftwo.test",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := mustRender(t, tracker.RewriteLinks(mustParse(t, tt.in), "http://host/", "ID"))
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
			for _, nc := range tt.notContains {
				assert.NotContains(t, out, nc)
			}
		})
	}
}

func TestInjectPixel(t *testing.T) {
	t.Parallel()

	out := mustRender(t, tracker.InjectPixel(mustParse(t, `<p>Hi</p>`), "http://host/", "ID"))

	assert.Contains(t, out, `src="http://host/track/open/ID"`)
	assert.Contains(t, out, `width="1"`)
	assert.Contains(t, out, `height="1"`)
	assert.Contains(t, out, `alt=""`)
	// Pixel comes after the content.
	assert.Less(t, strings.Index(out, "<p>Hi</p>"), strings.Index(out, "track/open/ID"))
}

func TestInjectPixelEmptyDocument(t *testing.T) {
	t.Parallel()

	out := mustRender(t, tracker.InjectPixel(mustParse(t, ``), "http://host/", "ID"))
	assert.Contains(t, out, "track/open/ID")
}

func TestTransformsLeaveOriginalUntouched(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, `<a href="http://example.com">x</a>`)
	before := mustRender(t, doc)

	personalize := func(id string) string {
		return mustRender(t, tracker.InjectPixel(tracker.RewriteLinks(doc, "http://host/", id), "http://host/", id))
	}
	first := personalize("alfa")
	second := personalize("bravo")

	assert.Equal(t, before, mustRender(t, doc))
	assert.Contains(t, first, "track/click/alfa")
	assert.Contains(t, first, "track/open/alfa")
	assert.Contains(t, second, "track/click/bravo")
	assert.NotContains(t, second, "alfa")
}
