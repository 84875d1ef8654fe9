package transport

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/textproto"
	"strings"
	"time"

	"github.com/dmitrymomot/mailcast/pkg/attachment"
	"github.com/dmitrymomot/mailcast/pkg/message"
)

// WriteMessage serializes msg as an RFC 5322 message with MIME multipart
// structure: multipart/mixed at the top level carrying a multipart/related
// body (HTML plus inline cid-referenced images) and the regular attachment
// parts. Messages without parts are written as a bare text/html body.
// Bcc recipients are intentionally absent from the headers; they belong to
// the envelope only.
func WriteMessage(w io.Writer, msg *message.Message) error {
	if err := writeHeader(w, "From", msg.From); err != nil {
		return err
	}
	if err := writeHeader(w, "To", msg.To); err != nil {
		return err
	}
	if len(msg.CC) > 0 {
		if err := writeHeader(w, "Cc", strings.Join(msg.CC, ", ")); err != nil {
			return err
		}
	}
	if err := writeHeader(w, "Subject", mime.QEncoding.Encode("utf-8", msg.Subject)); err != nil {
		return err
	}
	if err := writeHeader(w, "Date", time.Now().UTC().Format(time.RFC1123Z)); err != nil {
		return err
	}
	if err := writeHeader(w, "MIME-Version", "1.0"); err != nil {
		return err
	}

	inline := msg.InlineParts()
	attached := msg.AttachmentParts()

	if len(inline) == 0 && len(attached) == 0 {
		if err := writeHeader(w, "Content-Type", `text/html; charset="utf-8"`); err != nil {
			return err
		}
		if err := writeHeader(w, "Content-Transfer-Encoding", "quoted-printable"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return err
		}
		return writeQuotedPrintable(w, msg.HTML)
	}

	mixed := multipart.NewWriter(w)
	if err := writeHeader(w, "Content-Type", `multipart/mixed; boundary="`+mixed.Boundary()+`"`); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\r\n"); err != nil {
		return err
	}

	if err := writeRelated(mixed, msg.HTML, inline); err != nil {
		return err
	}
	for _, part := range attached {
		if err := writeAttachment(mixed, part); err != nil {
			return err
		}
	}
	return mixed.Close()
}

// writeRelated emits the multipart/related body: the HTML first, then each
// inline image addressable via its Content-ID.
func writeRelated(mixed *multipart.Writer, html string, inline []attachment.Part) error {
	// The related body is buffered because its boundary must appear in the
	// enclosing part's header before any of its bytes are written.
	var body bytes.Buffer
	related := multipart.NewWriter(&body)

	htmlPart, err := related.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {`text/html; charset="utf-8"`},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return err
	}
	if err := writeQuotedPrintable(htmlPart, html); err != nil {
		return err
	}

	for _, part := range inline {
		ih := textproto.MIMEHeader{
			"Content-Type":              {part.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Id":                {"<" + part.ContentID + ">"},
			"Content-Disposition":       {fmt.Sprintf(`inline; filename="%s"`, part.Filename)},
		}
		ipw, err := related.CreatePart(ih)
		if err != nil {
			return err
		}
		if err := writeBase64(ipw, part.Content); err != nil {
			return err
		}
	}
	if err := related.Close(); err != nil {
		return err
	}

	pw, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`multipart/related; boundary="` + related.Boundary() + `"`},
	})
	if err != nil {
		return err
	}
	_, err = pw.Write(body.Bytes())
	return err
}

func writeAttachment(mixed *multipart.Writer, part attachment.Part) error {
	header := textproto.MIMEHeader{
		"Content-Type":              {part.ContentType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf(`attachment; filename="%s"`, part.Filename)},
	}
	pw, err := mixed.CreatePart(header)
	if err != nil {
		return err
	}
	return writeBase64(pw, part.Content)
}

func writeHeader(w io.Writer, key, value string) error {
	_, err := fmt.Fprintf(w, "%s: %s\r\n", key, value)
	return err
}

func writeQuotedPrintable(w io.Writer, body string) error {
	qp := quotedprintable.NewWriter(w)
	if _, err := io.WriteString(qp, body); err != nil {
		return err
	}
	return qp.Close()
}

// writeBase64 emits base64 content wrapped at 76 columns per RFC 2045.
func writeBase64(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(len(encoded), 76)
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}
