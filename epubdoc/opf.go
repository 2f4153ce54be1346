package epubdoc

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"net/url"
	"path"
	"strings"
)

type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID         string `xml:"id,attr"`
			Href       string `xml:"href,attr"`
			MediaType  string `xml:"media-type,attr"`
			Properties string `xml:"properties,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		TOC      string `xml:"toc,attr"`
		ItemRefs []struct {
			IDRef  string `xml:"idref,attr"`
			Linear string `xml:"linear,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

type opfMetadata struct {
	Title       []string  `xml:"title"`
	Creator     []string  `xml:"creator"`
	Language    []string  `xml:"language"`
	Identifier  []string  `xml:"identifier"`
	Publisher   []string  `xml:"publisher"`
	Date        []string  `xml:"date"`
	Description []string  `xml:"description"`
	Subject     []string  `xml:"subject"`
	Rights      []string  `xml:"rights"`
	Meta        []opfMeta `xml:"meta"`
}

type opfMeta struct {
	Property string `xml:"property,attr"`
	Name     string `xml:"name,attr"`    // EPUB 2
	Content  string `xml:"content,attr"` // EPUB 2
	Value    string `xml:",chardata"`    // EPUB 3
}

// parseOPF reads the package document at name. Manifest hrefs are resolved
// to archive paths.
func parseOPF(zr *zip.Reader, name string) (*publication, error) {
	f := findFile(zr, name)
	if f == nil {
		return nil, ErrNoOPF
	}
	var opf opfPackage
	if err := decodeFile(f, &opf); err != nil {
		return nil, fmt.Errorf("epub: invalid package document: %w", err)
	}

	base := path.Dir(name)
	pub := &publication{
		Version:  opf.Version,
		Meta:     opf.Metadata,
		Manifest: make(map[string]manifestItem, len(opf.Manifest.Items)),
		TOC:      opf.Spine.TOC,
	}
	for _, it := range opf.Manifest.Items {
		pub.Manifest[it.ID] = manifestItem{
			ID:         it.ID,
			Href:       resolveHref(base, it.Href),
			MediaType:  it.MediaType,
			Properties: strings.Fields(it.Properties),
		}
	}
	for _, ref := range opf.Spine.ItemRefs {
		pub.Spine = append(pub.Spine, spineItem{IDRef: ref.IDRef, Linear: ref.Linear != "no"})
	}
	if len(pub.Spine) == 0 {
		return nil, ErrEmptySpine
	}
	return pub, nil
}

// resolveHref URL-decodes href, drops any fragment and joins it to base.
func resolveHref(base, href string) string {
	href, _, _ = strings.Cut(href, "#")
	if decoded, err := url.PathUnescape(href); err == nil {
		href = decoded
	}
	if base == "." || base == "" {
		return path.Clean(href)
	}
	return path.Join(base, href)
}

// emit passes the Dublin Core fields to emit, first values first.
func (m *opfMetadata) emit(emit func(key, value string)) {
	fields := []struct {
		key    string
		values []string
	}{
		{"dc:title", m.Title},
		{"dc:creator", m.Creator},
		{"dc:language", m.Language},
		{"dc:identifier", m.Identifier},
		{"dc:publisher", m.Publisher},
		{"dc:date", m.Date},
		{"dc:description", m.Description},
		{"dc:subject", m.Subject},
		{"dc:rights", m.Rights},
	}
	for _, f := range fields {
		for _, v := range f.values {
			if v = strings.TrimSpace(v); v != "" {
				emit(f.key, v)
			}
		}
	}
	for _, mt := range m.Meta {
		switch {
		case mt.Property == "dcterms:modified":
			if v := strings.TrimSpace(mt.Value); v != "" {
				emit("dcterms:modified", v)
			}
		case mt.Name == "cover", mt.Name == "":
		default:
			if v := strings.TrimSpace(mt.Content); v != "" {
				emit(mt.Name, v)
			}
		}
	}
}
