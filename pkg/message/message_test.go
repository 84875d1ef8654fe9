package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/message"
)

func TestCompose(t *testing.T) {
	t.Parallel()

	c := message.NewComposer("sender@example.com", nil)

	msg, err := c.Compose(message.ComposeParams{
		To:      "rcpt@example.com",
		Subject: "Hello",
		CC:      "cc1@example.com, cc2@example.com",
		BCC:     "bcc@example.com",
		HTML:    "<p>Hi</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "sender@example.com", msg.From)
	assert.Equal(t, "rcpt@example.com", msg.To)
	assert.Equal(t, "Hello", msg.Subject)
	assert.Equal(t, []string{"cc1@example.com", "cc2@example.com"}, msg.CC)
	assert.Equal(t, []string{"bcc@example.com"}, msg.BCC)
}

func TestCompose_Validation(t *testing.T) {
	t.Parallel()

	c := message.NewComposer("sender@example.com", nil)

	_, err := c.Compose(message.ComposeParams{Subject: "s", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, message.ErrNoRecipient)

	_, err = c.Compose(message.ComposeParams{To: "a@b.com", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, message.ErrNoSubject)

	// A subject that is nothing but markup scrubs down to empty.
	_, err = c.Compose(message.ComposeParams{To: "a@b.com", Subject: "<script></script>", HTML: "<p>x</p>"})
	require.ErrorIs(t, err, message.ErrNoSubject)

	_, err = c.Compose(message.ComposeParams{To: "a@b.com", Subject: "s"})
	require.ErrorIs(t, err, message.ErrNoContent)
}

func TestCleanSubject(t *testing.T) {
	t.Parallel()

	c := message.NewComposer("sender@example.com", nil)

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "plain passes through", in: "Monthly update", expected: "Monthly update"},
		{name: "crlf header injection collapsed", in: "Hi\r\nBcc: evil@x.com", expected: "Hi Bcc: evil@x.com"},
		{name: "html stripped", in: "<b>Big</b> news", expected: "Big news"},
		{name: "surrounding whitespace trimmed", in: "  padded  ", expected: "padded"},
		{name: "multiple newlines collapse to single spaces", in: "a\n\n\nb", expected: "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, c.CleanSubject(tt.in))
		})
	}
}

func TestPartsSplit(t *testing.T) {
	t.Parallel()

	c := message.NewComposer("sender@example.com", nil)

	msg, err := c.Compose(message.ComposeParams{
		To:      "rcpt@example.com",
		Subject: "s",
		HTML:    "<p>x</p>",
		Parts: []attachment.Part{
			{Filename: "a.png", ContentID: "cid-a", Inline: true},
			{Filename: "doc.pdf"},
			{Filename: "b.jpg", ContentID: "cid-b", Inline: true},
		},
	})
	require.NoError(t, err)

	inline := msg.InlineParts()
	require.Len(t, inline, 2)
	assert.Equal(t, "a.png", inline[0].Filename)
	assert.Equal(t, "b.jpg", inline[1].Filename)

	regular := msg.AttachmentParts()
	require.Len(t, regular, 1)
	assert.Equal(t, "doc.pdf", regular[0].Filename)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	t.Run("frontmatter subject extracted", func(t *testing.T) {
		t.Parallel()

		body, err := message.RenderMarkdown("---\nSubject: March newsletter\n---\nHello **world**!\n")
		require.NoError(t, err)
		assert.Equal(t, "March newsletter", body.Subject)
		assert.Contains(t, body.HTML, "<strong>world</strong>")
	})

	t.Run("no frontmatter", func(t *testing.T) {
		t.Parallel()

		body, err := message.RenderMarkdown("# Title\n\nParagraph.")
		require.NoError(t, err)
		assert.Empty(t, body.Subject)
		assert.Contains(t, body.HTML, "<h1>Title</h1>")
		assert.Contains(t, body.HTML, "<p>Paragraph.</p>")
	})

	t.Run("unclosed frontmatter rejected", func(t *testing.T) {
		t.Parallel()

		_, err := message.RenderMarkdown("---\nSubject: x\nno closing")
		require.ErrorIs(t, err, message.ErrInvalidFrontmatter)
	})

	t.Run("bad yaml rejected", func(t *testing.T) {
		t.Parallel()

		_, err := message.RenderMarkdown("---\n: : :\n---\nbody")
		require.ErrorIs(t, err, message.ErrInvalidFrontmatter)
	})
}
