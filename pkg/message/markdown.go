package message

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"
)

// Body is a campaign body resolved to HTML, with metadata pulled from the
// source's frontmatter when present.
type Body struct {
	Subject string // from frontmatter; empty when none declared
	HTML    string
}

// RenderMarkdown converts a Markdown campaign body to HTML. The source may
// open with a YAML frontmatter block declaring the subject:
//
//	---
//	Subject: March newsletter
//	---
//	Hello **world**!
//
// The returned HTML is untrusted input like any other body and goes through
// the sanitize/personalize pipeline afterwards.
func RenderMarkdown(src string) (Body, error) {
	meta, body, err := splitFrontmatter(src)
	if err != nil {
		return Body{}, err
	}

	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(body), &buf); err != nil {
		return Body{}, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	subject, _ := meta["Subject"].(string)
	return Body{Subject: subject, HTML: buf.String()}, nil
}

// splitFrontmatter separates an optional leading "---" YAML block from the
// markdown body. Absent frontmatter yields empty metadata and the full input
// as body.
func splitFrontmatter(src string) (map[string]any, string, error) {
	const delimiter = "---"

	if !strings.HasPrefix(src, delimiter) {
		return map[string]any{}, src, nil
	}

	rest := strings.TrimLeft(strings.TrimPrefix(src, delimiter), "\r\n")
	if rest == "" {
		return nil, "", fmt.Errorf("%w: no content after opening delimiter", ErrInvalidFrontmatter)
	}

	end := strings.Index(rest, delimiter)
	if end == -1 {
		return nil, "", fmt.Errorf("%w: closing delimiter not found", ErrInvalidFrontmatter)
	}

	front := rest[:end]
	body := strings.TrimPrefix(rest[end+len(delimiter):], "\r\n")
	body = strings.TrimPrefix(body, "\n")

	meta := map[string]any{}
	if strings.TrimSpace(front) != "" {
		if err := yaml.Unmarshal([]byte(front), &meta); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidFrontmatter, err)
		}
	}
	return meta, body, nil
}
