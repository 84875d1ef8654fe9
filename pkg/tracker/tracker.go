// Package tracker personalizes a campaign body for one recipient: outbound
// links are rewritten through the click-tracking redirect and an open-tracking
// pixel is appended. Both operations are pure tree transforms; the caller's
// document is never modified.
package tracker

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dmitrymomot/mailcast/pkg/htmldoc"
)

// RewriteLinks replaces every absolute http(s) anchor href with a tracked
// redirect: {base}track/click/{trackingID}?url={escaped original}.
// Relative hrefs and non-http schemes (mailto, cid, fragment anchors) are
// left untouched so intra-document navigation keeps working.
func RewriteLinks(doc htmldoc.Document, baseURL, trackingID string) htmldoc.Document {
	return doc.Transform(func(root *html.Node) {
		for _, a := range htmldoc.FindAll(root, "a") {
			href, ok := htmldoc.Attr(a, "href")
			if !ok || !strings.HasPrefix(href, "http") {
				continue
			}
			tracked := baseURL + "track/click/" + trackingID + "?url=" + url.QueryEscape(href)
			htmldoc.SetAttr(a, "href", tracked)
		}
	})
}

// InjectPixel appends a 1x1 open-tracking image pointing at
// {base}track/open/{trackingID}. The pixel goes at the end of the body when
// the tree carries one, otherwise at the end of the document.
func InjectPixel(doc htmldoc.Document, baseURL, trackingID string) htmldoc.Document {
	return doc.Transform(func(root *html.Node) {
		pixel := &html.Node{
			Type:     html.ElementNode,
			Data:     "img",
			DataAtom: atom.Img,
			Attr: []html.Attribute{
				{Key: "src", Val: baseURL + "track/open/" + trackingID},
				{Key: "width", Val: "1"},
				{Key: "height", Val: "1"},
				{Key: "alt", Val: ""},
			},
		}

		target := root
		if bodies := htmldoc.FindAll(root, "body"); len(bodies) > 0 {
			target = bodies[0]
		}
		target.AppendChild(pixel)
	})
}
