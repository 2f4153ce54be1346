// Package format provides document format detection for annotext.
package format

import (
	"archive/zip"
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Format represents a supported document format.
type Format int

const (
	// Unknown indicates an unrecognized format.
	Unknown Format = iota
	// PDF indicates a PDF document.
	PDF
	// DOCX indicates a Microsoft Word (.docx) document.
	DOCX
	// ODT indicates an OpenDocument Text (.odt) document.
	ODT
	// XLSX indicates a Microsoft Excel (.xlsx) document.
	XLSX
	// PPTX indicates a Microsoft PowerPoint (.pptx) document.
	PPTX
	// HTML indicates an HTML document.
	HTML
	// Markdown indicates a Markdown document.
	Markdown
	// Text indicates plain text.
	Text
	// RTF indicates a Rich Text Format document.
	RTF
	// Image indicates a raster image.
	Image
	// DOC indicates a legacy Microsoft Word (.doc) document.
	DOC
	// XML indicates a generic XML document.
	XML
	// EPUB indicates an EPUB publication.
	EPUB
)

var formatNames = map[Format]string{
	PDF:      "PDF",
	DOCX:     "DOCX",
	ODT:      "ODT",
	XLSX:     "XLSX",
	PPTX:     "PPTX",
	HTML:     "HTML",
	Markdown: "Markdown",
	Text:     "Text",
	RTF:      "RTF",
	Image:    "Image",
	DOC:      "DOC",
	XML:      "XML",
	EPUB:     "EPUB",
}

// String returns the string representation of the format.
func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "Unknown"
}

// Parse returns the format with the given name, ignoring case.
func Parse(name string) Format {
	name = strings.TrimSpace(name)
	for f, s := range formatNames {
		if strings.EqualFold(s, name) {
			return f
		}
	}
	return Unknown
}

// Extension returns the typical file extension for the format.
func (f Format) Extension() string {
	switch f {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	case ODT:
		return ".odt"
	case XLSX:
		return ".xlsx"
	case PPTX:
		return ".pptx"
	case HTML:
		return ".html"
	case Markdown:
		return ".md"
	case Text:
		return ".txt"
	case RTF:
		return ".rtf"
	case Image:
		return ".png"
	case DOC:
		return ".doc"
	case XML:
		return ".xml"
	case EPUB:
		return ".epub"
	default:
		return ""
	}
}

// Detect determines file format from filename extension.
func Detect(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return PDF
	case ".docx":
		return DOCX
	case ".odt":
		return ODT
	case ".xlsx":
		return XLSX
	case ".pptx":
		return PPTX
	case ".html", ".htm", ".xhtml":
		return HTML
	case ".md", ".markdown":
		return Markdown
	case ".txt", ".text", ".log", ".csv":
		return Text
	case ".rtf":
		return RTF
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return Image
	case ".doc":
		return DOC
	case ".xml":
		return XML
	case ".epub":
		return EPUB
	default:
		return Unknown
	}
}

var (
	magicPDF  = []byte("%PDF")
	magicZIP  = []byte("PK\x03\x04")
	magicRTF  = []byte(`{\rtf`)
	magicOLE2 = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// DetectFromMagic checks file magic bytes to determine format.
// Returns Unknown if the format cannot be determined from magic bytes alone;
// ZIP containers need DetectFromReader.
func DetectFromMagic(data []byte) Format {
	if len(data) < 4 {
		return Unknown
	}

	switch {
	case bytes.HasPrefix(data, magicPDF):
		return PDF
	case bytes.HasPrefix(data, magicZIP):
		return Unknown
	case bytes.HasPrefix(data, magicRTF):
		return RTF
	case bytes.HasPrefix(data, magicOLE2):
		return DOC
	case ImageMIME(data) != "":
		return Image
	}

	if detectHTMLMagic(data) {
		return HTML
	}
	if detectXMLMagic(data) {
		return XML
	}

	return Unknown
}

func trimLeadingSpace(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	start := 0
	for start < len(data) && (data[start] == ' ' || data[start] == '\t' || data[start] == '\n' || data[start] == '\r') {
		start++
	}
	return data[start:]
}

// detectHTMLMagic checks if the data looks like HTML content.
func detectHTMLMagic(data []byte) bool {
	data = trimLeadingSpace(data)
	if len(data) == 0 {
		return false
	}

	upper := strings.ToUpper(string(data[:min(512, len(data))]))
	if strings.HasPrefix(upper, "<!DOCTYPE HTML") {
		return true
	}
	if strings.HasPrefix(upper, "<HTML") || strings.HasPrefix(upper, "<HEAD") || strings.HasPrefix(upper, "<BODY") {
		return true
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}

	return false
}

func detectXMLMagic(data []byte) bool {
	return bytes.HasPrefix(trimLeadingSpace(data), []byte("<?xml"))
}

// looksLikeText reports whether data is valid UTF-8 without NUL bytes.
func looksLikeText(data []byte) bool {
	if len(data) == 0 {
		return true
	}
	sample := data[:min(4096, len(data))]
	if bytes.IndexByte(sample, 0) >= 0 {
		return false
	}
	// A multi-byte rune may be cut at the sample boundary.
	for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}
		sample = sample[:len(sample)-1]
	}
	return false
}

// DetectFromReader inspects the content to determine format.
// This is more reliable than extension-based detection and can
// distinguish between different ZIP-based formats (DOCX, XLSX, PPTX, ODT).
func DetectFromReader(r io.ReaderAt, size int64) (Format, error) {
	magic := make([]byte, 512)
	n, err := r.ReadAt(magic, 0)
	if err != nil && err != io.EOF {
		return Unknown, err
	}
	magic = magic[:n]

	if bytes.HasPrefix(magic, magicZIP) {
		return detectZIPFormat(r, size)
	}
	return DetectFromMagic(magic), nil
}

// detectZIPFormat inspects a ZIP archive to determine if it's DOCX, XLSX,
// PPTX, ODT or EPUB.
func detectZIPFormat(r io.ReaderAt, size int64) (Format, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return Unknown, err
	}

	// OpenDocument and EPUB archives carry a mimetype entry
	for _, f := range zr.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err == nil {
				data := make([]byte, 256)
				n, _ := io.ReadFull(rc, data)
				rc.Close()
				switch mt := string(data[:n]); {
				case strings.Contains(mt, "application/vnd.oasis.opendocument.text"):
					return ODT, nil
				case strings.Contains(mt, "application/epub+zip"):
					return EPUB, nil
				}
			}
		}
	}

	for _, f := range zr.File {
		switch {
		case f.Name == "META-INF/container.xml":
			return EPUB, nil
		case strings.HasPrefix(f.Name, "word/"):
			return DOCX, nil
		case strings.HasPrefix(f.Name, "xl/"):
			return XLSX, nil
		case strings.HasPrefix(f.Name, "ppt/"):
			return PPTX, nil
		}
	}

	return Unknown, nil
}
