package htmldoc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/dmitrymomot/mailcast/pkg/htmldoc"
)

func TestParseRenderRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		contains []string
	}{
		{
			name:     "simple paragraph",
			in:       `<p>Hello <strong>world</strong></p>`,
			contains: []string{"<p>", "<strong>world</strong>", "Hello"},
		},
		{
			name:     "link and image",
			in:       `<a href="https://example.com">x</a><img src="cid:1"/>`,
			contains: []string{`href="https://example.com"`, `src="cid:1"`},
		},
		{
			name:     "bare text",
			in:       `just text`,
			contains: []string{"just text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := htmldoc.Parse(tt.in)
			require.NoError(t, err)

			out, err := doc.Render()
			require.NoError(t, err)
			for _, c := range tt.contains {
				assert.Contains(t, out, c)
			}
		})
	}
}

func TestTransformDoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	doc, err := htmldoc.Parse(`<a href="https://example.com">x</a>`)
	require.NoError(t, err)

	before, err := doc.Render()
	require.NoError(t, err)

	mutated := doc.Transform(func(root *html.Node) {
		for _, a := range htmldoc.FindAll(root, "a") {
			htmldoc.SetAttr(a, "href", "https://other.example")
		}
	})

	after, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, before, after, "original document changed by transform")

	out, err := mutated.Render()
	require.NoError(t, err)
	assert.Contains(t, out, "https://other.example")
}

func TestFindAllDocumentOrder(t *testing.T) {
	t.Parallel()

	doc, err := htmldoc.Parse(`<p><img src="a"></p><img src="b"><div><img src="c"></div>`)
	require.NoError(t, err)

	var order []string
	doc.Transform(func(root *html.Node) {
		for _, img := range htmldoc.FindAll(root, "img") {
			src, ok := htmldoc.Attr(img, "src")
			if ok {
				order = append(order, src)
			}
		}
	})

	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSetAttrReplacesExisting(t *testing.T) {
	t.Parallel()

	doc, err := htmldoc.Parse(`<img src="old" alt="pic">`)
	require.NoError(t, err)

	out, err := doc.Transform(func(root *html.Node) {
		for _, img := range htmldoc.FindAll(root, "img") {
			htmldoc.SetAttr(img, "src", "cid:new")
		}
	}).Render()
	require.NoError(t, err)

	assert.Contains(t, out, `src="cid:new"`)
	assert.NotContains(t, out, `src="old"`)
	assert.Contains(t, out, `alt="pic"`)
}

func TestZeroValueDocument(t *testing.T) {
	t.Parallel()

	var doc htmldoc.Document
	out, err := doc.Render()
	require.NoError(t, err)
	assert.Empty(t, out)
}
