package epubdoc

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"path"
	"strings"

	"golang.org/x/net/html"
)

type ncxDocument struct {
	XMLName   xml.Name      `xml:"ncx"`
	NavPoints []ncxNavPoint `xml:"navMap>navPoint"`
}

type ncxNavPoint struct {
	Label   string `xml:"navLabel>text"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// chapterTitles maps content document paths to their first
// table-of-contents label. The EPUB 3 nav document is preferred over the
// EPUB 2 NCX; a publication with neither yields an empty map.
func chapterTitles(zr *zip.Reader, pub *publication) map[string]string {
	titles := make(map[string]string)
	var entries []tocEntry
	var base string

	for _, it := range pub.Manifest {
		if !it.has("nav") {
			continue
		}
		if data, err := readFile(zr, it.Href); err == nil {
			entries, base = parseNavXHTML(data), path.Dir(it.Href)
		}
		break
	}
	if len(entries) == 0 {
		if it, ok := pub.ncx(); ok {
			if data, err := readFile(zr, it.Href); err == nil {
				entries, base = parseNCX(data), path.Dir(it.Href)
			}
		}
	}
	flatten(entries, base, titles)
	return titles
}

func (p *publication) ncx() (manifestItem, bool) {
	if it, ok := p.Manifest[p.TOC]; ok {
		return it, true
	}
	for _, it := range p.Manifest {
		if it.MediaType == "application/x-dtbncx+xml" {
			return it, true
		}
	}
	return manifestItem{}, false
}

func flatten(entries []tocEntry, base string, titles map[string]string) {
	for _, e := range entries {
		if e.Href != "" && e.Title != "" {
			href := resolveHref(base, e.Href)
			if _, ok := titles[href]; !ok {
				titles[href] = e.Title
			}
		}
		flatten(e.Children, base, titles)
	}
}

// parseNavXHTML reads the entries of the nav element typed "toc".
func parseNavXHTML(content []byte) []tocEntry {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		return nil
	}
	nav := find(doc, func(n *html.Node) bool {
		if n.Data != "nav" {
			return false
		}
		for _, a := range n.Attr {
			if (a.Key == "epub:type" || a.Key == "type") && strings.Contains(a.Val, "toc") {
				return true
			}
		}
		return false
	})
	if nav == nil {
		return nil
	}
	ol := find(nav, func(n *html.Node) bool { return n.Data == "ol" })
	if ol == nil {
		return nil
	}
	return olEntries(ol)
}

func find(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := find(c, match); found != nil {
			return found
		}
	}
	return nil
}

func olEntries(ol *html.Node) []tocEntry {
	var entries []tocEntry
	for li := ol.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		var e tocEntry
		for c := li.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "a":
				e.Title = nodeText(c)
				for _, a := range c.Attr {
					if a.Key == "href" {
						e.Href = a.Val
					}
				}
			case "span":
				if e.Title == "" {
					e.Title = nodeText(c)
				}
			case "ol":
				e.Children = olEntries(c)
			}
		}
		if e.Title != "" || e.Href != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func parseNCX(content []byte) []tocEntry {
	var ncx ncxDocument
	if err := xml.Unmarshal(content, &ncx); err != nil {
		return nil
	}
	return ncxEntries(ncx.NavPoints)
}

func ncxEntries(points []ncxNavPoint) []tocEntry {
	entries := make([]tocEntry, 0, len(points))
	for _, p := range points {
		entries = append(entries, tocEntry{
			Title:    strings.TrimSpace(p.Label),
			Href:     p.Content.Src,
			Children: ncxEntries(p.Children),
		})
	}
	return entries
}
