package format

import (
	"bytes"
	"mime"
	"strings"
)

var mimeTypes = map[Format]string{
	PDF:      "application/pdf",
	DOCX:     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	ODT:      "application/vnd.oasis.opendocument.text",
	XLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	PPTX:     "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	HTML:     "text/html",
	Markdown: "text/markdown",
	Text:     "text/plain",
	RTF:      "application/rtf",
	Image:    "image/png",
	DOC:      "application/msword",
	XML:      "application/xml",
	EPUB:     "application/epub+zip",
}

// aliases maps additional MIME types to formats.
var aliases = map[string]Format{
	"application/xhtml+xml": HTML,
	"text/x-markdown":       Markdown,
	"text/rtf":              RTF,
	"text/xml":              XML,
	"text/csv":              Text,
}

// MIMEType returns the canonical media type for the format. Image returns
// image/png; use ImageMIME for the actual subtype.
func (f Format) MIMEType() string {
	if m, ok := mimeTypes[f]; ok {
		return m
	}
	return "application/octet-stream"
}

// FromMIME maps a media type, with or without parameters, to a Format.
func FromMIME(mimeType string) Format {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	if mt == "" {
		return Unknown
	}
	for f, m := range mimeTypes {
		if m == mt {
			return f
		}
	}
	if f, ok := aliases[mt]; ok {
		return f
	}
	if strings.HasPrefix(mt, "image/") {
		return Image
	}
	return Unknown
}

// ImageMIME returns the media type of a recognized image signature, or "".
func ImageMIME(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "image/png"
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "image/jpeg"
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return "image/gif"
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14 && bytes.Equal(data[6:10], []byte{0, 0, 0, 0}):
		return "image/bmp"
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return "image/tiff"
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return "image/webp"
	}
	return ""
}

// Sniff determines the format of data. A recognized MIME hint wins; then
// content signatures; then the name's extension; finally valid UTF-8
// content is treated as plain text.
func Sniff(data []byte, name, hint string) Format {
	if f := FromMIME(hint); f != Unknown {
		return f
	}
	if f, err := DetectFromReader(bytes.NewReader(data), int64(len(data))); err == nil && f != Unknown {
		return f
	}
	if f := Detect(name); f != Unknown {
		return f
	}
	if looksLikeText(data) {
		return Text
	}
	return Unknown
}
