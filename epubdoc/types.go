// Package epubdoc turns EPUB publications into markup events.
//
// The package document (OPF) supplies Dublin Core metadata and the spine.
// Each spine item is decoded with htmldoc inside a div with class "chapter";
// the div carries the chapter's table-of-contents label as its title when
// the publication has a nav document or an NCX. Publications with encrypted
// content are rejected with ErrDRMProtected; obfuscated fonts are allowed.
package epubdoc

import "errors"

var (
	ErrDRMProtected   = errors.New("epub: DRM-protected content cannot be processed")
	ErrNoContainer    = errors.New("epub: missing META-INF/container.xml")
	ErrNoRootfile     = errors.New("epub: no rootfile found in container.xml")
	ErrNoOPF          = errors.New("epub: missing package document (OPF)")
	ErrEmptySpine     = errors.New("epub: no content in spine")
	ErrMissingContent = errors.New("epub: referenced content file not found")
)

// manifestItem is a file listed in the OPF manifest.
type manifestItem struct {
	ID         string
	Href       string // resolved archive path
	MediaType  string
	Properties []string
}

func (m manifestItem) has(prop string) bool {
	for _, p := range m.Properties {
		if p == prop {
			return true
		}
	}
	return false
}

// spineItem is a content document in reading order.
type spineItem struct {
	IDRef  string
	Linear bool
}

// publication is the parsed package document.
type publication struct {
	Version  string
	Meta     opfMetadata
	Manifest map[string]manifestItem
	Spine    []spineItem
	TOC      string // manifest ID of the EPUB 2 NCX
}

// tocEntry is one table-of-contents entry.
type tocEntry struct {
	Title    string
	Href     string
	Children []tocEntry
}
