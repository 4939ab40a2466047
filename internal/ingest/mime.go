package ingest

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
)

// messageBody holds the extracted textual parts of a message
type messageBody struct {
	Plain string
	HTML  string
}

// extractBody pulls the text/plain and text/html content out of a
// message. For multipart messages it walks the parts, recursing into
// nested multiparts; for everything else the raw body is treated as
// plain text.
func extractBody(msg *mail.Message) (messageBody, error) {
	contentType := msg.Header.Get("Content-Type")
	encoding := msg.Header.Get("Content-Transfer-Encoding")

	if !strings.Contains(strings.ToLower(contentType), "multipart/") {
		bodyBytes, err := io.ReadAll(decodeTransfer(msg.Body, encoding))
		if err != nil {
			return messageBody{}, err
		}
		if strings.Contains(strings.ToLower(contentType), "text/html") {
			return messageBody{HTML: string(bodyBytes)}, nil
		}
		return messageBody{Plain: string(bodyBytes)}, nil
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		// Unparseable Content-Type, fall back to the raw body
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return messageBody{}, err
		}
		return messageBody{Plain: string(bodyBytes)}, nil
	}

	boundary, ok := params["boundary"]
	if !ok {
		bodyBytes, err := io.ReadAll(msg.Body)
		if err != nil {
			return messageBody{}, err
		}
		return messageBody{Plain: string(bodyBytes)}, nil
	}

	var body messageBody
	collectParts(multipart.NewReader(msg.Body, boundary), &body)
	return body, nil
}

// collectParts appends the text parts found under a multipart reader
func collectParts(mr *multipart.Reader, body *messageBody) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			// EOF or a malformed part; keep whatever was collected
			return
		}

		partType := strings.ToLower(part.Header.Get("Content-Type"))
		encoding := part.Header.Get("Content-Transfer-Encoding")

		switch {
		case strings.Contains(partType, "multipart/"):
			if _, params, err := mime.ParseMediaType(part.Header.Get("Content-Type")); err == nil {
				if boundary, ok := params["boundary"]; ok {
					collectParts(multipart.NewReader(part, boundary), body)
				}
			}
		case strings.Contains(partType, "text/plain"):
			if partBytes, err := io.ReadAll(decodeTransfer(part, encoding)); err == nil {
				appendText(&body.Plain, string(partBytes))
			}
		case strings.Contains(partType, "text/html"):
			if partBytes, err := io.ReadAll(decodeTransfer(part, encoding)); err == nil {
				appendText(&body.HTML, string(partBytes))
			}
		}
		// Other parts (attachments, images) are skipped
	}
}

// decodeTransfer wraps a reader with the decoder for its
// Content-Transfer-Encoding
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, newBase64Cleaner(r))
	default:
		return r
	}
}

func appendText(dst *string, text string) {
	if *dst != "" {
		*dst += "\n"
	}
	*dst += text
}

// base64Cleaner strips the line breaks mail transports insert into
// base64 bodies so the standard decoder accepts them
type base64Cleaner struct {
	r io.Reader
}

func newBase64Cleaner(r io.Reader) io.Reader {
	buf, err := io.ReadAll(r)
	if err != nil {
		return &base64Cleaner{r: bytes.NewReader(nil)}
	}
	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(string(buf))
	return &base64Cleaner{r: strings.NewReader(cleaned)}
}

func (c *base64Cleaner) Read(p []byte) (int, error) {
	return c.r.Read(p)
}

// decodeHeader decodes RFC 2047 encoded-words in a header value
func decodeHeader(value string) string {
	decoder := &mime.WordDecoder{}
	decoded, err := decoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
